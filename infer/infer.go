// Package infer implements the three-pass static-analysis pipeline that
// turns a driver-probed StatementDescription into one with sharp output,
// parameter and row-count information: column nullability (columns.go,
// scope.go, wherenotnull.go, nullsafety.go), parameter nullability
// (params.go) and row-count bounds (rowcount.go).
package infer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/parser"
	"github.com/typesql/typesql/statement"
)

// Infer enriches raw — a StatementDescription produced by probing sqlText
// against the live connection — with sharper nullability and row-count
// information derived from the query's own structure and schema.
//
// A query this package cannot parse or analyze is not a hard failure: it
// degrades to raw, unmodified, with a warning logged through log. Only a
// violation of invariant 1 (see FatalError) is returned as an error, since
// that means the analyzer's own output no longer lines up with what was
// probed and callers must not silently emit a corrupt binding.
func Infer(ctx context.Context, schema catalog.SchemaClient, sqlText string, raw statement.Description, log zerolog.Logger) (statement.Description, error) {
	stmt, err := parser.Parse(sqlText)
	if err != nil {
		log.Warn().Err(err).Str("sql", sqlText).Msg("typesql: could not parse statement, falling back to raw probe result")
		return raw, nil
	}

	out := raw.Clone()

	fields, err := getOutputColumns(ctx, schema, nil, stmt)
	if err != nil {
		if IsFatal(err) {
			return statement.Description{}, err
		}
		log.Warn().Err(err).Str("sql", sqlText).Msg("typesql: could not infer output column nullability, falling back to raw probe result")
		return raw, nil
	}
	columns, err := applyColumns(out.Columns, fields)
	if err != nil {
		// applyColumns only ever returns a *FatalError.
		return statement.Description{}, err
	}
	out.Columns = columns

	bindings, err := inferParamBindings(ctx, schema, stmt)
	if err != nil {
		log.Warn().Err(err).Str("sql", sqlText).Msg("typesql: could not infer parameter nullability, keeping raw probe result for parameters")
	} else {
		out.Params = applyParams(out.Params, bindings)
	}

	out.RowCount = inferRowCount(stmt)

	return out, nil
}
