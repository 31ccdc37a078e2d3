package ast

// Equal reports whether a and b are syntactically identical expressions.
// It is deep, kind-tagged structural equality — not semantic equivalence:
// "a + 1" and "1 + a" are not Equal even though they evaluate the same.
// This is exactly what the WHERE-based non-null refinement in
// infer/wherenotnull.go needs: "is this expression the literal one that
// appeared in a WHERE clause already proven non-null".
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *ColumnRef:
		y, ok := b.(*ColumnRef)
		return ok && x.Column == y.Column
	case *TableColumnRef:
		y, ok := b.(*TableColumnRef)
		return ok && x.Table == y.Table && x.Column == y.Column
	case *Constant:
		y, ok := b.(*Constant)
		return ok && x.IsNull == y.IsNull && x.Text == y.Text
	case *Parameter:
		y, ok := b.(*Parameter)
		return ok && x.Index == y.Index
	case *UnaryOp:
		y, ok := b.(*UnaryOp)
		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.Op == y.Op && Equal(x.LHS, y.LHS) && Equal(x.RHS, y.RHS)
	case *FunctionCall:
		y, ok := b.(*FunctionCall)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *ExistsOp:
		_, ok := b.(*ExistsOp)
		// Subqueries are never compared structurally; two EXISTS clauses are
		// only Equal when they are the same node (pointer identity would be
		// needed to say more, so two distinct EXISTS are never Equal).
		return ok && x == b
	case *InOp:
		y, ok := b.(*InOp)
		return ok && Equal(x.LHS, y.LHS) && x.Subquery == y.Subquery
	case *ArraySubQuery:
		y, ok := b.(*ArraySubQuery)
		return ok && x.Subquery == y.Subquery
	case *TypeCast:
		y, ok := b.(*TypeCast)
		return ok && x.TargetType == y.TargetType && Equal(x.LHS, y.LHS)
	default:
		return false
	}
}
