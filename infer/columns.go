package infer

import (
	"context"
	"fmt"

	"github.com/typesql/typesql/ast"
	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/statement"
)

// getOutputColumns computes the VirtualFields a statement produces, in
// top-level output order, dispatching by statement kind per spec.md §4.2.
func getOutputColumns(ctx context.Context, schema catalog.SchemaClient, outerCTEs []VirtualTable, stmt ast.Statement) ([]VirtualField, error) {
	switch s := stmt.(type) {
	case *ast.Select:
		return getSelectOutputColumns(ctx, schema, outerCTEs, s)
	case *ast.Insert:
		return getInsertOutputColumns(ctx, schema, outerCTEs, s)
	case *ast.Update:
		return getUpdateOutputColumns(ctx, schema, outerCTEs, s)
	case *ast.Delete:
		return getDeleteOutputColumns(ctx, schema, outerCTEs, s)
	default:
		return nil, fmt.Errorf("typesql: unsupported statement %T", stmt)
	}
}

func getSelectOutputColumns(ctx context.Context, schema catalog.SchemaClient, outerCTEs []VirtualTable, s *ast.Select) ([]VirtualField, error) {
	if s.SetOp != nil {
		left, err := getOutputColumns(ctx, schema, outerCTEs, s.SetOp.Left)
		if err != nil {
			return nil, err
		}
		right, err := getOutputColumns(ctx, schema, outerCTEs, s.SetOp.Right)
		if err != nil {
			return nil, err
		}
		if len(left) != len(right) {
			return nil, fmt.Errorf("typesql: set operation arms have %d and %d columns", len(left), len(right))
		}
		combined := make([]VirtualField, len(left))
		for i := range left {
			combined[i] = VirtualField{Name: left[i].Name, Nullability: Or(left[i].Nullability, right[i].Nullability)}
		}
		return combined, nil
	}

	ctes, err := resolveCTEs(ctx, schema, outerCTEs, s.With)
	if err != nil {
		return nil, err
	}
	sources, err := getSourceColumnsForTableExpr(ctx, schema, ctes, s.From)
	if err != nil {
		return nil, err
	}
	nonNull := collectNonNullExprs(s.Where)
	sources = refineSourceColumns(sources, nonNull)

	return inferSelectListOutput(ctx, schema, ctes, s.List, sources, nonNull)
}

func getInsertOutputColumns(ctx context.Context, schema catalog.SchemaClient, outerCTEs []VirtualTable, s *ast.Insert) ([]VirtualField, error) {
	if len(s.Returning) == 0 {
		return []VirtualField{}, nil
	}
	ctes, err := resolveCTEs(ctx, schema, outerCTEs, s.With)
	if err != nil {
		return nil, err
	}
	sources, err := sourceColumnsForTableRef(ctx, schema, ctes, s.Table, tableAlias(s.Table, ""))
	if err != nil {
		return nil, err
	}
	return inferSelectListOutput(ctx, schema, ctes, s.Returning, sources, nil)
}

func getUpdateOutputColumns(ctx context.Context, schema catalog.SchemaClient, outerCTEs []VirtualTable, s *ast.Update) ([]VirtualField, error) {
	if len(s.Returning) == 0 {
		return []VirtualField{}, nil
	}
	ctes, err := resolveCTEs(ctx, schema, outerCTEs, s.With)
	if err != nil {
		return nil, err
	}
	target, err := sourceColumnsForTableRef(ctx, schema, ctes, s.Table, tableAlias(s.Table, ""))
	if err != nil {
		return nil, err
	}
	from, err := getSourceColumnsForTableExpr(ctx, schema, ctes, s.From)
	if err != nil {
		return nil, err
	}
	sources := append(target, from...)
	nonNull := collectNonNullExprs(s.Where)
	sources = refineSourceColumns(sources, nonNull)
	return inferSelectListOutput(ctx, schema, ctes, s.Returning, sources, nonNull)
}

func getDeleteOutputColumns(ctx context.Context, schema catalog.SchemaClient, outerCTEs []VirtualTable, s *ast.Delete) ([]VirtualField, error) {
	if len(s.Returning) == 0 {
		return []VirtualField{}, nil
	}
	ctes, err := resolveCTEs(ctx, schema, outerCTEs, s.With)
	if err != nil {
		return nil, err
	}
	sources, err := sourceColumnsForTableRef(ctx, schema, ctes, s.Table, tableAlias(s.Table, ""))
	if err != nil {
		return nil, err
	}
	nonNull := collectNonNullExprs(s.Where)
	sources = refineSourceColumns(sources, nonNull)
	return inferSelectListOutput(ctx, schema, ctes, s.Returning, sources, nonNull)
}

// inferSelectListOutput flattens a SELECT/RETURNING list into VirtualFields
// in order, expanding "*" and "table.*" against sources.
func inferSelectListOutput(ctx context.Context, schema catalog.SchemaClient, ctes []VirtualTable, items []ast.SelectItem, sources []SourceColumn, nonNull []ast.Expr) ([]VirtualField, error) {
	var out []VirtualField
	for _, item := range items {
		switch {
		case item.Star:
			for _, sc := range sources {
				if !sc.Hidden {
					out = append(out, VirtualField{Name: sc.ColumnName, Nullability: sc.Nullability})
				}
			}
		case item.TableStar != "":
			matched := false
			for _, sc := range sources {
				if sc.TableAlias != item.TableStar {
					continue
				}
				matched = true
				if !sc.Hidden {
					out = append(out, VirtualField{Name: sc.ColumnName, Nullability: sc.Nullability})
				}
			}
			if !matched {
				return nil, fmt.Errorf("typesql: unknown table alias %q in %q.*", item.TableStar, item.TableStar)
			}
		default:
			nullability, err := inferExprNullability(ctx, schema, ctes, item.Expr, sources, nonNull)
			if err != nil {
				return nil, err
			}
			out = append(out, VirtualField{Name: selectItemName(item), Nullability: nullability})
		}
	}
	if out == nil {
		out = []VirtualField{}
	}
	return out, nil
}

func selectItemName(item ast.SelectItem) string {
	if item.Alias != "" {
		return item.Alias
	}
	switch e := item.Expr.(type) {
	case *ast.ColumnRef:
		return e.Column
	case *ast.TableColumnRef:
		return e.Column
	default:
		return "?column?"
	}
}

// inferExprNullability computes the nullability of a single scalar
// expression per the dispatch table in spec.md §4.2.3.
func inferExprNullability(ctx context.Context, schema catalog.SchemaClient, ctes []VirtualTable, expr ast.Expr, sources []SourceColumn, nonNull []ast.Expr) (FieldNullability, error) {
	if exprIsNonNull(expr, nonNull) {
		return Scalar(false), nil
	}

	switch e := expr.(type) {
	case *ast.ColumnRef:
		return resolveColumnRef(sources, "", e.Column)
	case *ast.TableColumnRef:
		return resolveColumnRef(sources, e.Table, e.Column)
	case *ast.Constant:
		return Scalar(e.IsNull), nil
	case *ast.Parameter:
		return Scalar(true), nil
	case *ast.UnaryOp:
		operand, err := inferExprNullability(ctx, schema, ctes, e.Operand, sources, nonNull)
		if err != nil {
			return FieldNullability{}, err
		}
		switch unaryCategory(e.Op) {
		case safe:
			return operand, nil
		case neverNull:
			return Scalar(false), nil
		default:
			return Scalar(true), nil
		}
	case *ast.BinaryOp:
		lhs, err := inferExprNullability(ctx, schema, ctes, e.LHS, sources, nonNull)
		if err != nil {
			return FieldNullability{}, err
		}
		rhs, err := inferExprNullability(ctx, schema, ctes, e.RHS, sources, nonNull)
		if err != nil {
			return FieldNullability{}, err
		}
		switch binaryCategory(e.Op) {
		case safe:
			return Scalar(lhs.Nullable || rhs.Nullable), nil
		case neverNull:
			return Scalar(false), nil
		default:
			return Scalar(true), nil
		}
	case *ast.FunctionCall:
		anyNullable := false
		for _, a := range e.Args {
			n, err := inferExprNullability(ctx, schema, ctes, a, sources, nonNull)
			if err != nil {
				return FieldNullability{}, err
			}
			anyNullable = anyNullable || n.Nullable
		}
		switch functionCategory(e.Name) {
		case safe:
			return Scalar(anyNullable), nil
		case neverNull:
			return Scalar(false), nil
		default:
			return Scalar(true), nil
		}
	case *ast.ExistsOp:
		return Scalar(false), nil
	case *ast.InOp:
		return inferExprNullability(ctx, schema, ctes, e.LHS, sources, nonNull)
	case *ast.ArraySubQuery:
		fields, err := getOutputColumns(ctx, schema, ctes, e.Subquery)
		if err != nil {
			return FieldNullability{}, err
		}
		if len(fields) != 1 {
			return FieldNullability{}, fmt.Errorf("typesql: ARRAY(subquery) must produce exactly 1 column, got %d", len(fields))
		}
		return Array(false, fields[0].Nullability.Nullable), nil
	case *ast.TypeCast:
		return inferExprNullability(ctx, schema, ctes, e.LHS, sources, nonNull)
	default:
		return FieldNullability{}, fmt.Errorf("typesql: unsupported expression %T", expr)
	}
}

// resolveColumnRef matches an (optionally table-qualified) column
// reference against sources. An unqualified reference may match more than
// one source column (e.g. the same column name on both sides of a join);
// per invariant 2, the resolver does not assume alias uniqueness and
// conservatively ORs the nullability of every match instead of picking
// one arbitrarily.
func resolveColumnRef(sources []SourceColumn, table, column string) (FieldNullability, error) {
	found := false
	result := Scalar(false)
	for _, sc := range sources {
		if sc.ColumnName != column {
			continue
		}
		if table != "" && sc.TableAlias != table {
			continue
		}
		if found {
			result = Or(result, sc.Nullability)
		} else {
			result = sc.Nullability
			found = true
		}
	}
	if !found {
		if table != "" {
			return FieldNullability{}, fmt.Errorf("typesql: unknown column %q.%q", table, column)
		}
		return FieldNullability{}, fmt.Errorf("typesql: unknown column %q", column)
	}
	return result, nil
}

// applyColumns zips fields onto raw's probed columns by position,
// overwriting nullability (and, for arrays, element nullability) per
// spec.md §4.2 "Applying results back to raw.columns". It is the one
// place invariant 1 (name/count alignment) is enforced.
func applyColumns(raw []statement.Column, fields []VirtualField) ([]statement.Column, error) {
	if len(raw) != len(fields) {
		return nil, &FatalError{fmt.Sprintf(
			"typesql: inferred %d output columns but the driver probe reported %d", len(fields), len(raw))}
	}
	out := make([]statement.Column, len(raw))
	for i, f := range fields {
		if f.Name != raw[i].Name {
			return nil, &FatalError{fmt.Sprintf(
				"typesql: inferred column %d is %q but the driver probe reported %q", i, f.Name, raw[i].Name)}
		}
		col := raw[i]
		if f.Nullability.IsArray {
			col.Nullable = f.Nullability.Nullable
			if col.Type.ArrayElem == nil {
				col.Type.ArrayElem = &catalog.ArrayElemType{}
			}
			col.Type.ArrayElem.Nullable = f.Nullability.ElemNullable
		} else {
			col.Nullable = f.Nullability.Nullable
		}
		out[i] = col
	}
	return out, nil
}
