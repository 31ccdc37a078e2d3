package infer

import "github.com/typesql/typesql/ast"

// collectNonNullExprs flattens a WHERE expression into the list of
// sub-expressions guaranteed non-NULL whenever the row is returned.
//
//   - "A AND B" recurses into both arms.
//   - An IS NOT NULL / NOTNULL unary of E contributes {E}.
//   - A NULL-safe binary operator L ⊕ R contributes {L, R}.
//   - A NULL-safe function call f(a1..an) contributes {a1..an}.
//   - Everything else, including OR and NOT, contributes nothing — OR
//     because either branch might be the row's truth-maker, NOT because
//     it is never descended into.
//
// The result need not be deduplicated; infer/columns.go only ever
// compares structurally, so duplicates are harmless.
func collectNonNullExprs(where ast.Expr) []ast.Expr {
	if where == nil {
		return nil
	}

	switch e := where.(type) {
	case *ast.BinaryOp:
		if e.Op == "AND" {
			return append(collectNonNullExprs(e.LHS), collectNonNullExprs(e.RHS)...)
		}
		if e.Op == "OR" {
			return nil
		}
		if binaryCategory(e.Op) == safe {
			return []ast.Expr{e.LHS, e.RHS}
		}
		return nil
	case *ast.UnaryOp:
		switch e.Op {
		case "IS NOT NULL", "NOTNULL":
			return []ast.Expr{e.Operand}
		default:
			return nil
		}
	case *ast.FunctionCall:
		if functionCategory(e.Name) == safe {
			return append([]ast.Expr(nil), e.Args...)
		}
		return nil
	default:
		return nil
	}
}

// refineSourceColumns forces every SourceColumn whose (tableAlias,
// columnName) syntactically appears in nonNull to Nullable=false.
//
// An unqualified ColumnRef in nonNull matches any source column sharing
// its name, regardless of which table it came from — see the Open
// Question in SPEC_FULL.md/DESIGN.md about this being conservative for
// output non-nullability but aggressive when the same column name exists
// on more than one joined table. This engine implements the documented
// behavior as-is rather than silently tightening it.
func refineSourceColumns(sources []SourceColumn, nonNull []ast.Expr) []SourceColumn {
	if len(nonNull) == 0 {
		return sources
	}
	out := make([]SourceColumn, len(sources))
	copy(out, sources)
	for i, sc := range out {
		for _, ne := range nonNull {
			if nonNullExprMatchesColumn(ne, sc) {
				out[i].Nullability.Nullable = false
				break
			}
		}
	}
	return out
}

func nonNullExprMatchesColumn(expr ast.Expr, sc SourceColumn) bool {
	switch e := expr.(type) {
	case *ast.ColumnRef:
		return e.Column == sc.ColumnName
	case *ast.TableColumnRef:
		return e.Table == sc.TableAlias && e.Column == sc.ColumnName
	default:
		return false
	}
}

// exprIsNonNull reports whether expr structurally equals one of the
// expressions already proven non-NULL by the enclosing WHERE clause.
func exprIsNonNull(expr ast.Expr, nonNull []ast.Expr) bool {
	for _, ne := range nonNull {
		if ast.Equal(expr, ne) {
			return true
		}
	}
	return false
}
