package ast

// Visitor's Visit method is invoked for every Node encountered by Walk. If
// it returns a non-nil Visitor w, Walk visits each child of node with w.
//
// This mirrors go/ast's Visitor, applied to SQL statements and expressions
// instead of Go source.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses node and every descendant reachable from it (CTEs, FROM
// sources, join trees, expression operands, subqueries) in left-to-right,
// depth-first order, invoking v.Visit at each step. It does not skip any
// child: extending the AST with a new Node variant that Walk doesn't yet
// enumerate is a bug, not a silent degrade — unlike WalkSome below.
func Walk(v Visitor, node Node) {
	if node == nil || v == nil {
		return
	}
	v = v.Visit(node)
	if v == nil {
		return
	}

	switch n := node.(type) {
	case *Select:
		for _, w := range n.With {
			Walk(v, w.Query)
		}
		for _, item := range n.List {
			if item.Expr != nil {
				Walk(v, item.Expr)
			}
		}
		if n.From != nil {
			Walk(v, n.From)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		if n.Limit != nil {
			Walk(v, n.Limit)
		}
		if n.SetOp != nil {
			Walk(v, n.SetOp.Left)
			Walk(v, n.SetOp.Right)
		}
	case *Insert:
		for _, w := range n.With {
			Walk(v, w.Query)
		}
		for _, row := range n.Values {
			for _, e := range row {
				Walk(v, e)
			}
		}
		if n.Source != nil {
			Walk(v, n.Source)
		}
		for _, item := range n.Returning {
			if item.Expr != nil {
				Walk(v, item.Expr)
			}
		}
	case *Update:
		for _, w := range n.With {
			Walk(v, w.Query)
		}
		for _, set := range n.Set {
			Walk(v, set.Value)
		}
		if n.From != nil {
			Walk(v, n.From)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		for _, item := range n.Returning {
			if item.Expr != nil {
				Walk(v, item.Expr)
			}
		}
	case *Delete:
		for _, w := range n.With {
			Walk(v, w.Query)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		for _, item := range n.Returning {
			if item.Expr != nil {
				Walk(v, item.Expr)
			}
		}
	case *ColumnRef, *TableColumnRef, *Constant, *Parameter:
		// leaves
	case *UnaryOp:
		Walk(v, n.Operand)
	case *BinaryOp:
		Walk(v, n.LHS)
		Walk(v, n.RHS)
	case *FunctionCall:
		for _, a := range n.Args {
			Walk(v, a)
		}
	case *ExistsOp:
		Walk(v, n.Subquery)
	case *InOp:
		Walk(v, n.LHS)
		Walk(v, n.Subquery)
	case *ArraySubQuery:
		Walk(v, n.Subquery)
	case *TypeCast:
		Walk(v, n.LHS)
	case *Table:
		// leaf
	case *SubQuery:
		Walk(v, n.Query)
	case *CrossJoin:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *QualifiedJoin:
		Walk(v, n.Left)
		Walk(v, n.Right)
		if n.On != nil {
			Walk(v, n.On)
		}
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// WalkSome is a convenience for narrow, best-effort scans over an
// expression tree — e.g. collecting every Parameter node to build the
// positional-parameter list. Unlike Walk, callers are not expected to
// handle every Node kind: fn simply gets called for each node and decides
// whether to keep descending into it. Do not use WalkSome in place of an
// exhaustive type switch where missing a case would produce a wrong
// nullability verdict instead of merely an incomplete scan; see
// infer/columns.go for why that dispatch is hand-written instead.
func WalkSome(node Node, fn func(Node) bool) {
	Walk(inspector(fn), node)
}
