package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typesql/typesql/ast"
)

func TestWalkVisitsExpressionTree(t *testing.T) {
	p1 := &ast.Parameter{Index: 1}
	p2 := &ast.Parameter{Index: 2}
	and := &ast.BinaryOp{Op: "AND",
		LHS: &ast.BinaryOp{Op: "=", LHS: &ast.ColumnRef{Column: "id"}, RHS: p1},
		RHS: &ast.UnaryOp{Op: "IS NOT NULL", Operand: &ast.TableColumnRef{Table: "p", Column: "age"}},
	}

	var visited []ast.Node
	ast.WalkSome(and, func(n ast.Node) bool {
		visited = append(visited, n)
		return true
	})

	require.Len(t, visited, 6)
	_ = p2
}

func TestWalkSomeCollectsParameters(t *testing.T) {
	expr := &ast.FunctionCall{
		Name: "coalesce",
		Args: []ast.Expr{&ast.Parameter{Index: 1}, &ast.Parameter{Index: 2}},
	}

	var params []int
	ast.WalkSome(expr, func(n ast.Node) bool {
		if p, ok := n.(*ast.Parameter); ok {
			params = append(params, p.Index)
		}
		return true
	})

	require.Equal(t, []int{1, 2}, params)
}

func TestEqualStructuralEquality(t *testing.T) {
	a := &ast.BinaryOp{Op: "=", LHS: &ast.ColumnRef{Column: "id"}, RHS: &ast.Parameter{Index: 1}}
	b := &ast.BinaryOp{Op: "=", LHS: &ast.ColumnRef{Column: "id"}, RHS: &ast.Parameter{Index: 1}}
	c := &ast.BinaryOp{Op: "=", LHS: &ast.ColumnRef{Column: "id"}, RHS: &ast.Parameter{Index: 2}}

	require.True(t, ast.Equal(a, b))
	require.False(t, ast.Equal(a, c))
	require.False(t, ast.Equal(a, nil))
}

func TestEqualUnqualifiedVsQualifiedColumnRef(t *testing.T) {
	bare := &ast.ColumnRef{Column: "age"}
	qualified := &ast.TableColumnRef{Table: "p", Column: "age"}

	require.False(t, ast.Equal(bare, qualified))
}
