package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typesql/typesql/ast"
	"github.com/typesql/typesql/parser"
)

func TestParseSimpleSelect(t *testing.T) {
	stmt, err := parser.Parse(`SELECT id, name FROM person WHERE age IS NOT NULL`)
	require.NoError(t, err)

	sel, ok := stmt.(*ast.Select)
	require.True(t, ok)
	require.Len(t, sel.List, 2)
	require.Equal(t, "id", sel.List[0].Expr.(*ast.ColumnRef).Column)

	table, ok := sel.From.(*ast.Table)
	require.True(t, ok)
	require.Equal(t, "person", table.Ref.Name)

	where, ok := sel.Where.(*ast.UnaryOp)
	require.True(t, ok)
	require.Equal(t, "IS NOT NULL", where.Op)
}

func TestParseSelectStarWithLimit(t *testing.T) {
	stmt, err := parser.Parse(`SELECT * FROM person LIMIT 1`)
	require.NoError(t, err)

	sel := stmt.(*ast.Select)
	require.Len(t, sel.List, 1)
	require.True(t, sel.List[0].Star)

	limit, ok := sel.Limit.(*ast.Constant)
	require.True(t, ok)
	require.Equal(t, "1", limit.Text)
}

func TestParseLeftJoin(t *testing.T) {
	stmt, err := parser.Parse(`SELECT p.id, o.id FROM person p LEFT JOIN orders o ON o.person_id = p.id`)
	require.NoError(t, err)

	sel := stmt.(*ast.Select)
	join, ok := sel.From.(*ast.QualifiedJoin)
	require.True(t, ok)
	require.Equal(t, ast.LeftJoin, join.JoinType)

	left := join.Left.(*ast.Table)
	require.Equal(t, "person", left.Ref.Name)
	require.Equal(t, "p", left.As)
}

func TestParseInsertReturning(t *testing.T) {
	stmt, err := parser.Parse(`INSERT INTO person (name, age) VALUES ($1, $2) RETURNING id`)
	require.NoError(t, err)

	ins := stmt.(*ast.Insert)
	require.Equal(t, "person", ins.Table.Name)
	require.Equal(t, []string{"name", "age"}, ins.Columns)
	require.Len(t, ins.Values, 1)
	require.Equal(t, 1, ins.Values[0][0].(*ast.Parameter).Index)
	require.Equal(t, 2, ins.Values[0][1].(*ast.Parameter).Index)
	require.Len(t, ins.Returning, 1)
}

func TestParseInsertDefaultValues(t *testing.T) {
	stmt, err := parser.Parse(`INSERT INTO person DEFAULT VALUES`)
	require.NoError(t, err)

	ins := stmt.(*ast.Insert)
	require.True(t, ins.DefaultValues)
	require.Nil(t, ins.Values)
}

func TestParseUpdateWithWhere(t *testing.T) {
	stmt, err := parser.Parse(`UPDATE person SET name = $1 WHERE id = $2`)
	require.NoError(t, err)

	upd := stmt.(*ast.Update)
	require.Len(t, upd.Set, 1)
	require.Equal(t, "name", upd.Set[0].Column)
	require.Equal(t, 1, upd.Set[0].Value.(*ast.Parameter).Index)

	where := upd.Where.(*ast.BinaryOp)
	require.Equal(t, "id", where.LHS.(*ast.ColumnRef).Column)
	require.Equal(t, 2, where.RHS.(*ast.Parameter).Index)
}

func TestParseDeleteReturning(t *testing.T) {
	stmt, err := parser.Parse(`DELETE FROM person WHERE id = $1 RETURNING id, name`)
	require.NoError(t, err)

	del := stmt.(*ast.Delete)
	require.Equal(t, "person", del.Table.Name)
	require.Len(t, del.Returning, 2)
}

func TestParseCTE(t *testing.T) {
	stmt, err := parser.Parse(`WITH adults AS (SELECT id FROM person WHERE age > 18) SELECT id FROM adults`)
	require.NoError(t, err)

	sel := stmt.(*ast.Select)
	require.Len(t, sel.With, 1)
	require.Equal(t, "adults", sel.With[0].Name)
}

func TestParseSetOperation(t *testing.T) {
	stmt, err := parser.Parse(`SELECT id FROM person UNION SELECT id FROM archived_person`)
	require.NoError(t, err)

	sel := stmt.(*ast.Select)
	require.NotNil(t, sel.SetOp)
	require.Equal(t, ast.Union, sel.SetOp.Kind)
}

func TestParseSetOperationWithOutermostLimit(t *testing.T) {
	stmt, err := parser.Parse(`SELECT id FROM person UNION SELECT id FROM archived_person LIMIT 1`)
	require.NoError(t, err)

	sel := stmt.(*ast.Select)
	require.NotNil(t, sel.SetOp)

	limit, ok := sel.Limit.(*ast.Constant)
	require.True(t, ok)
	require.Equal(t, "1", limit.Text)
}

func TestParseInvalidSQLErrors(t *testing.T) {
	_, err := parser.Parse(`SELEKT * FROM person`)
	require.Error(t, err)
}

func TestParseMultipleStatementsErrors(t *testing.T) {
	_, err := parser.Parse(`SELECT 1; SELECT 2`)
	require.Error(t, err)
}
