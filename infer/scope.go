package infer

import (
	"context"
	"fmt"

	"github.com/typesql/typesql/ast"
	"github.com/typesql/typesql/catalog"
)

// resolveCTEs extends outer with the local WITH clause, resolving each
// entry sequentially so that CTE i sees CTEs 0..i-1 plus every outer CTE
// (spec.md §4.2's CTE ordering rule). The first CTE that fails to resolve
// short-circuits the whole WITH clause.
func resolveCTEs(ctx context.Context, schema catalog.SchemaClient, outer []VirtualTable, withs []ast.WithQuery) ([]VirtualTable, error) {
	if len(withs) == 0 {
		return outer, nil
	}
	ctes := append([]VirtualTable(nil), outer...)
	for _, w := range withs {
		fields, err := getOutputColumns(ctx, schema, ctes, w.Query)
		if err != nil {
			return nil, fmt.Errorf("CTE %q: %w", w.Name, err)
		}
		ctes = append(ctes, VirtualTable{Name: w.Name, Columns: fields})
	}
	return ctes, nil
}

func findCTE(ctes []VirtualTable, name string) (VirtualTable, bool) {
	// Later entries shadow earlier ones of the same name, matching how a
	// local CTE would shadow an outer CTE of the same name.
	for i := len(ctes) - 1; i >= 0; i-- {
		if ctes[i].Name == name {
			return ctes[i], true
		}
	}
	return VirtualTable{}, false
}

// getSourceColumnsForTableExpr recursively walks a FROM-clause tree,
// producing the flat list of SourceColumns visible to the enclosing
// SELECT/UPDATE/DELETE, with join nullability already propagated per the
// table in spec.md §4.2.
func getSourceColumnsForTableExpr(ctx context.Context, schema catalog.SchemaClient, ctes []VirtualTable, texpr ast.TableExpression) ([]SourceColumn, error) {
	switch t := texpr.(type) {
	case nil:
		return nil, nil
	case *ast.Table:
		return sourceColumnsForTableRef(ctx, schema, ctes, t.Ref, tableAlias(t.Ref, t.As))
	case *ast.SubQuery:
		fields, err := getOutputColumns(ctx, schema, ctes, t.Query)
		if err != nil {
			return nil, err
		}
		cols := make([]SourceColumn, len(fields))
		for i, f := range fields {
			cols[i] = SourceColumn{TableAlias: t.As, ColumnName: f.Name, Nullability: f.Nullability}
		}
		return cols, nil
	case *ast.CrossJoin:
		left, err := getSourceColumnsForTableExpr(ctx, schema, ctes, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := getSourceColumnsForTableExpr(ctx, schema, ctes, t.Right)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case *ast.QualifiedJoin:
		left, err := getSourceColumnsForTableExpr(ctx, schema, ctes, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := getSourceColumnsForTableExpr(ctx, schema, ctes, t.Right)
		if err != nil {
			return nil, err
		}
		switch t.JoinType {
		case ast.LeftJoin:
			right = forceNullable(right)
		case ast.RightJoin:
			left = forceNullable(left)
		case ast.FullJoin:
			left = forceNullable(left)
			right = forceNullable(right)
		}
		return append(left, right...), nil
	default:
		return nil, fmt.Errorf("typesql: unsupported table expression %T", texpr)
	}
}

func tableAlias(ref ast.TableRef, as string) string {
	if as != "" {
		return as
	}
	return ref.Name
}

func sourceColumnsForTableRef(ctx context.Context, schema catalog.SchemaClient, ctes []VirtualTable, ref ast.TableRef, alias string) ([]SourceColumn, error) {
	if ref.Schema == "" {
		if vt, ok := findCTE(ctes, ref.Name); ok {
			cols := make([]SourceColumn, len(vt.Columns))
			for i, f := range vt.Columns {
				cols[i] = SourceColumn{TableAlias: alias, ColumnName: f.Name, Nullability: f.Nullability}
			}
			return cols, nil
		}
	}

	var schemaArg *string
	if ref.Schema != "" {
		schemaArg = &ref.Schema
	}
	table, err := schema.GetTable(ctx, schemaArg, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("typesql: resolve table %q: %w", ref.Name, err)
	}

	cols := make([]SourceColumn, len(table.Columns))
	for i, c := range table.Columns {
		nullability := Scalar(c.Nullable)
		if c.Type.ArrayElem != nil {
			nullability = Array(c.Nullable, c.Type.ArrayElem.Nullable)
		}
		cols[i] = SourceColumn{
			TableAlias:  alias,
			ColumnName:  c.Name,
			Nullability: nullability,
			Hidden:      c.Hidden,
		}
	}
	return cols, nil
}

// forceNullable marks every column's outer nullability true, leaving
// array element nullability untouched — only the "is this row's value
// for this column absent" bit changes on the outer side of a join.
func forceNullable(cols []SourceColumn) []SourceColumn {
	out := make([]SourceColumn, len(cols))
	for i, c := range cols {
		c.Nullability.Nullable = true
		out[i] = c
	}
	return out
}
