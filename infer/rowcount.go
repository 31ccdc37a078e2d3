package infer

import (
	"github.com/typesql/typesql/ast"
	"github.com/typesql/typesql/statement"
)

// inferRowCount computes the cardinality bound for stmt per spec.md §4.4,
// extended by SPEC_FULL.md's supplement for set operations and
// INSERT ... SELECT. It never errors: an unrecognized shape simply falls
// back to statement.Many, the safest bound.
func inferRowCount(stmt ast.Statement) statement.RowCount {
	switch s := stmt.(type) {
	case *ast.Select:
		return selectRowCount(s)
	case *ast.Insert:
		return insertRowCount(s)
	case *ast.Update:
		return mutationRowCount(len(s.Returning) > 0)
	case *ast.Delete:
		return mutationRowCount(len(s.Returning) > 0)
	default:
		return statement.Many
	}
}

func selectRowCount(s *ast.Select) statement.RowCount {
	// An outermost LIMIT 1 bounds the result to at most one row regardless
	// of what's underneath it, set operation or not — Postgres attaches a
	// top-level LIMIT to the same node that carries SetOp.
	if isLimitOne(s.Limit) {
		return statement.ZeroOrOne
	}
	// Without a LIMIT, a set operation's cardinality depends on both arms
	// and, for INTERSECT/EXCEPT, on runtime overlap; a plain SELECT without
	// LIMIT 1 may return any number of rows. Both report the conservative
	// bound rather than trying to prove anything tighter.
	return statement.Many
}

func isLimitOne(limit ast.Expr) bool {
	c, ok := limit.(*ast.Constant)
	return ok && !c.IsNull && c.Text == "1"
}

func insertRowCount(s *ast.Insert) statement.RowCount {
	hasReturning := len(s.Returning) > 0
	if !hasReturning {
		return statement.Zero
	}
	switch {
	case s.DefaultValues:
		// DEFAULT VALUES always inserts exactly one row.
		return statement.One
	case s.Values != nil:
		if len(s.Values) == 1 {
			return statement.One
		}
		return statement.Many
	default:
		// INSERT ... SELECT: the number of rows inserted tracks the
		// source SELECT, which this engine does not bound further.
		return statement.Many
	}
}

func mutationRowCount(hasReturning bool) statement.RowCount {
	if !hasReturning {
		return statement.Zero
	}
	// UPDATE/DELETE may touch any number of rows matching WHERE; this
	// engine does not attempt to prove a WHERE clause narrows to a single
	// primary key, so RETURNING conservatively reports Many.
	return statement.Many
}
