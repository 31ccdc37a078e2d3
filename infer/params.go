package infer

import (
	"context"
	"fmt"

	"github.com/typesql/typesql/ast"
	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/statement"
)

// paramBinding records that the positional parameter at Index (0-based)
// was bound directly against a target column whose database-level
// nullability is Nullable.
type paramBinding struct {
	index    int
	nullable bool
}

// inferParamBindings finds every column-bound parameter site in stmt per
// spec.md §4.3: INSERT VALUES lists and UPDATE SET assignments. SELECT and
// DELETE never bind a parameter against a column, so they contribute no
// bindings and every parameter stays at whatever the driver probe said.
func inferParamBindings(ctx context.Context, schema catalog.SchemaClient, stmt ast.Statement) ([]paramBinding, error) {
	switch s := stmt.(type) {
	case *ast.Insert:
		return insertParamBindings(ctx, schema, s)
	case *ast.Update:
		return updateParamBindings(ctx, schema, s)
	default:
		return nil, nil
	}
}

func insertParamBindings(ctx context.Context, schema catalog.SchemaClient, s *ast.Insert) ([]paramBinding, error) {
	if s.DefaultValues || s.Values == nil {
		// DEFAULT VALUES yields no bindings; INSERT ... SELECT has no bare
		// positional VALUES list to bind against (its params, if any,
		// belong to the SELECT arm and are not column-bound sites).
		return nil, nil
	}

	var schemaArg *string
	if s.Table.Schema != "" {
		schemaArg = &s.Table.Schema
	}
	table, err := schema.GetTable(ctx, schemaArg, s.Table.Name)
	if err != nil {
		return nil, fmt.Errorf("typesql: resolve INSERT target %q: %w", s.Table.Name, err)
	}

	var bindings []paramBinding
	for _, row := range s.Values {
		for j, v := range row {
			if j >= len(s.Columns) {
				continue
			}
			p, ok := v.(*ast.Parameter)
			if !ok {
				continue
			}
			col, ok := table.Column(s.Columns[j])
			if !ok {
				return nil, fmt.Errorf("typesql: unknown column %q in INSERT target %q", s.Columns[j], s.Table.Name)
			}
			bindings = append(bindings, paramBinding{index: p.Index - 1, nullable: col.Nullable})
		}
	}
	return bindings, nil
}

func updateParamBindings(ctx context.Context, schema catalog.SchemaClient, s *ast.Update) ([]paramBinding, error) {
	var schemaArg *string
	if s.Table.Schema != "" {
		schemaArg = &s.Table.Schema
	}
	table, err := schema.GetTable(ctx, schemaArg, s.Table.Name)
	if err != nil {
		return nil, fmt.Errorf("typesql: resolve UPDATE target %q: %w", s.Table.Name, err)
	}

	var bindings []paramBinding
	for _, set := range s.Set {
		p, ok := set.Value.(*ast.Parameter)
		if !ok {
			continue
		}
		col, ok := table.Column(set.Column)
		if !ok {
			return nil, fmt.Errorf("typesql: unknown column %q in UPDATE target %q", set.Column, s.Table.Name)
		}
		bindings = append(bindings, paramBinding{index: p.Index - 1, nullable: col.Nullable})
	}
	return bindings, nil
}

// applyParams merges bindings into raw's probed parameter list. A
// parameter index with one or more bindings is nullable iff any of them
// is (pessimistic union, invariant 3); an index with no binding keeps
// whatever the driver probe reported.
func applyParams(raw []statement.Param, bindings []paramBinding) []statement.Param {
	if len(bindings) == 0 {
		return raw
	}

	merged := make(map[int]bool, len(bindings))
	seen := make(map[int]bool, len(bindings))
	for _, b := range bindings {
		if seen[b.index] {
			merged[b.index] = merged[b.index] || b.nullable
		} else {
			merged[b.index] = b.nullable
			seen[b.index] = true
		}
	}

	out := append([]statement.Param(nil), raw...)
	for idx, nullable := range merged {
		if idx >= 0 && idx < len(out) {
			out[idx].Nullable = nullable
		}
	}
	return out
}
