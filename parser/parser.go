// Package parser turns SQL text into this module's ast.Statement, using
// PostgreSQL's own grammar via pg_query_go rather than hand-rolling a SQL
// grammar. Only the subset of constructs package infer understands is
// converted; anything else surfaces as an error so the caller can degrade
// gracefully instead of analyzing a partial tree.
package parser

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v5"

	"github.com/typesql/typesql/ast"
)

// Parse parses a single SQL statement and converts it to this module's ast.
func Parse(sql string) (ast.Statement, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("typesql: parse: %w", err)
	}
	if len(result.Stmts) != 1 {
		return nil, fmt.Errorf("typesql: expected exactly one statement, got %d", len(result.Stmts))
	}
	return convertStatement(result.Stmts[0].Stmt)
}

func convertStatement(node *pg_query.Node) (ast.Statement, error) {
	switch {
	case node.GetSelectStmt() != nil:
		return convertSelect(node.GetSelectStmt())
	case node.GetInsertStmt() != nil:
		return convertInsert(node.GetInsertStmt())
	case node.GetUpdateStmt() != nil:
		return convertUpdate(node.GetUpdateStmt())
	case node.GetDeleteStmt() != nil:
		return convertDelete(node.GetDeleteStmt())
	default:
		return nil, fmt.Errorf("typesql: unsupported statement type %T", node.GetNode())
	}
}

func convertWithClause(wc *pg_query.WithClause) ([]ast.WithQuery, error) {
	if wc == nil {
		return nil, nil
	}
	out := make([]ast.WithQuery, 0, len(wc.Ctes))
	for _, c := range wc.Ctes {
		cte := c.GetCommonTableExpr()
		if cte == nil {
			return nil, fmt.Errorf("typesql: unsupported WITH entry")
		}
		body := cte.Ctequery.GetSelectStmt()
		if body == nil {
			return nil, fmt.Errorf("typesql: CTE %q must be a SELECT", cte.Ctename)
		}
		q, err := convertSelect(body)
		if err != nil {
			return nil, fmt.Errorf("CTE %q: %w", cte.Ctename, err)
		}
		out = append(out, ast.WithQuery{Name: cte.Ctename, Query: q})
	}
	return out, nil
}

func convertSelect(stmt *pg_query.SelectStmt) (*ast.Select, error) {
	withs, err := convertWithClause(stmt.WithClause)
	if err != nil {
		return nil, err
	}

	var limit ast.Expr
	if stmt.LimitCount != nil {
		limit, err = convertExpr(stmt.LimitCount)
		if err != nil {
			return nil, err
		}
	}

	if stmt.Op != pg_query.SetOperation_SETOP_NONE {
		left, err := convertSelect(stmt.Larg)
		if err != nil {
			return nil, err
		}
		right, err := convertSelect(stmt.Rarg)
		if err != nil {
			return nil, err
		}
		kind, err := setOpKind(stmt.Op)
		if err != nil {
			return nil, err
		}
		return &ast.Select{With: withs, SetOp: &ast.SetOperation{Kind: kind, All: stmt.All, Left: left, Right: right}, Limit: limit}, nil
	}

	list := make([]ast.SelectItem, 0, len(stmt.TargetList))
	for _, t := range stmt.TargetList {
		rt := t.GetResTarget()
		if rt == nil {
			return nil, fmt.Errorf("typesql: unsupported select-list item")
		}
		item, err := convertSelectItem(rt)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}

	from, err := convertFromClause(stmt.FromClause)
	if err != nil {
		return nil, err
	}

	var where ast.Expr
	if stmt.WhereClause != nil {
		where, err = convertExpr(stmt.WhereClause)
		if err != nil {
			return nil, err
		}
	}

	return &ast.Select{With: withs, List: list, From: from, Where: where, Limit: limit}, nil
}

func setOpKind(op pg_query.SetOperation) (ast.SetOpKind, error) {
	switch op {
	case pg_query.SetOperation_SETOP_UNION:
		return ast.Union, nil
	case pg_query.SetOperation_SETOP_INTERSECT:
		return ast.Intersect, nil
	case pg_query.SetOperation_SETOP_EXCEPT:
		return ast.Except, nil
	default:
		return 0, fmt.Errorf("typesql: unsupported set operation %v", op)
	}
}

func convertInsert(stmt *pg_query.InsertStmt) (*ast.Insert, error) {
	withs, err := convertWithClause(stmt.WithClause)
	if err != nil {
		return nil, err
	}

	ins := &ast.Insert{
		With:  withs,
		Table: ast.TableRef{Schema: stmt.Relation.Schemaname, Name: stmt.Relation.Relname},
	}
	for _, c := range stmt.Cols {
		rt := c.GetResTarget()
		if rt == nil {
			return nil, fmt.Errorf("typesql: unsupported INSERT column list entry")
		}
		ins.Columns = append(ins.Columns, rt.Name)
	}

	switch {
	case stmt.SelectStmt == nil:
		ins.DefaultValues = true
	default:
		sel := stmt.SelectStmt.GetSelectStmt()
		if sel == nil {
			return nil, fmt.Errorf("typesql: unsupported INSERT source")
		}
		if len(sel.ValuesLists) > 0 {
			for _, row := range sel.ValuesLists {
				lst := row.GetList()
				if lst == nil {
					return nil, fmt.Errorf("typesql: unsupported VALUES row")
				}
				exprRow := make([]ast.Expr, 0, len(lst.Items))
				for _, item := range lst.Items {
					e, err := convertExpr(item)
					if err != nil {
						return nil, err
					}
					exprRow = append(exprRow, e)
				}
				ins.Values = append(ins.Values, exprRow)
			}
		} else {
			src, err := convertSelect(sel)
			if err != nil {
				return nil, err
			}
			ins.Source = src
		}
	}

	ins.Returning, err = convertReturningList(stmt.ReturningList)
	if err != nil {
		return nil, err
	}
	return ins, nil
}

func convertUpdate(stmt *pg_query.UpdateStmt) (*ast.Update, error) {
	withs, err := convertWithClause(stmt.WithClause)
	if err != nil {
		return nil, err
	}

	upd := &ast.Update{
		With:  withs,
		Table: ast.TableRef{Schema: stmt.Relation.Schemaname, Name: stmt.Relation.Relname},
	}
	for _, t := range stmt.TargetList {
		rt := t.GetResTarget()
		if rt == nil {
			return nil, fmt.Errorf("typesql: unsupported UPDATE SET entry")
		}
		val, err := convertExpr(rt.Val)
		if err != nil {
			return nil, err
		}
		upd.Set = append(upd.Set, ast.SetClause{Column: rt.Name, Value: val})
	}

	upd.From, err = convertFromClause(stmt.FromClause)
	if err != nil {
		return nil, err
	}

	if stmt.WhereClause != nil {
		upd.Where, err = convertExpr(stmt.WhereClause)
		if err != nil {
			return nil, err
		}
	}

	upd.Returning, err = convertReturningList(stmt.ReturningList)
	if err != nil {
		return nil, err
	}
	return upd, nil
}

func convertDelete(stmt *pg_query.DeleteStmt) (*ast.Delete, error) {
	if len(stmt.UsingClause) > 0 {
		return nil, fmt.Errorf("typesql: DELETE ... USING is not supported")
	}
	withs, err := convertWithClause(stmt.WithClause)
	if err != nil {
		return nil, err
	}

	del := &ast.Delete{
		With:  withs,
		Table: ast.TableRef{Schema: stmt.Relation.Schemaname, Name: stmt.Relation.Relname},
	}
	if stmt.WhereClause != nil {
		del.Where, err = convertExpr(stmt.WhereClause)
		if err != nil {
			return nil, err
		}
	}
	del.Returning, err = convertReturningList(stmt.ReturningList)
	if err != nil {
		return nil, err
	}
	return del, nil
}

func convertReturningList(nodes []*pg_query.Node) ([]ast.SelectItem, error) {
	var out []ast.SelectItem
	for _, n := range nodes {
		rt := n.GetResTarget()
		if rt == nil {
			return nil, fmt.Errorf("typesql: unsupported RETURNING item")
		}
		item, err := convertSelectItem(rt)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func convertSelectItem(rt *pg_query.ResTarget) (ast.SelectItem, error) {
	if cr := rt.Val.GetColumnRef(); cr != nil && len(cr.Fields) > 0 {
		last := cr.Fields[len(cr.Fields)-1]
		if last.GetAStar() != nil {
			if len(cr.Fields) == 1 {
				return ast.SelectItem{Star: true}, nil
			}
			t := cr.Fields[0].GetString_()
			if t == nil {
				return ast.SelectItem{}, fmt.Errorf("typesql: unsupported qualified star")
			}
			return ast.SelectItem{TableStar: t.Sval}, nil
		}
	}
	expr, err := convertExpr(rt.Val)
	if err != nil {
		return ast.SelectItem{}, err
	}
	return ast.SelectItem{Expr: expr, Alias: rt.Name}, nil
}

func convertFromClause(nodes []*pg_query.Node) (ast.TableExpression, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	result, err := convertTableExpr(nodes[0])
	if err != nil {
		return nil, err
	}
	for _, n := range nodes[1:] {
		te, err := convertTableExpr(n)
		if err != nil {
			return nil, err
		}
		result = &ast.CrossJoin{Left: result, Right: te}
	}
	return result, nil
}

func convertTableExpr(node *pg_query.Node) (ast.TableExpression, error) {
	switch {
	case node.GetRangeVar() != nil:
		rv := node.GetRangeVar()
		return &ast.Table{Ref: ast.TableRef{Schema: rv.Schemaname, Name: rv.Relname}, As: aliasName(rv.Alias)}, nil
	case node.GetRangeSubselect() != nil:
		rs := node.GetRangeSubselect()
		sub := rs.Subquery.GetSelectStmt()
		if sub == nil {
			return nil, fmt.Errorf("typesql: unsupported subquery in FROM")
		}
		q, err := convertSelect(sub)
		if err != nil {
			return nil, err
		}
		return &ast.SubQuery{Query: q, As: aliasName(rs.Alias)}, nil
	case node.GetJoinExpr() != nil:
		je := node.GetJoinExpr()
		left, err := convertTableExpr(je.Larg)
		if err != nil {
			return nil, err
		}
		right, err := convertTableExpr(je.Rarg)
		if err != nil {
			return nil, err
		}
		if je.Quals == nil {
			return &ast.CrossJoin{Left: left, Right: right}, nil
		}
		on, err := convertExpr(je.Quals)
		if err != nil {
			return nil, err
		}
		jt, err := joinType(je.Jointype)
		if err != nil {
			return nil, err
		}
		return &ast.QualifiedJoin{Left: left, JoinType: jt, Right: right, On: on}, nil
	default:
		return nil, fmt.Errorf("typesql: unsupported FROM item %T", node.GetNode())
	}
}

func joinType(jt pg_query.JoinType) (ast.JoinType, error) {
	switch jt {
	case pg_query.JoinType_JOIN_INNER:
		return ast.InnerJoin, nil
	case pg_query.JoinType_JOIN_LEFT:
		return ast.LeftJoin, nil
	case pg_query.JoinType_JOIN_RIGHT:
		return ast.RightJoin, nil
	case pg_query.JoinType_JOIN_FULL:
		return ast.FullJoin, nil
	default:
		return 0, fmt.Errorf("typesql: unsupported join type %v", jt)
	}
}

func convertExpr(node *pg_query.Node) (ast.Expr, error) {
	if node == nil {
		return nil, fmt.Errorf("typesql: missing expression")
	}
	switch {
	case node.GetColumnRef() != nil:
		return convertColumnRef(node.GetColumnRef())
	case node.GetAConst() != nil:
		return convertConst(node.GetAConst()), nil
	case node.GetParamRef() != nil:
		return &ast.Parameter{Index: int(node.GetParamRef().Number)}, nil
	case node.GetTypeCast() != nil:
		tc := node.GetTypeCast()
		lhs, err := convertExpr(tc.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.TypeCast{LHS: lhs, TargetType: formatTypeName(tc.TypeName)}, nil
	case node.GetAExpr() != nil:
		ae := node.GetAExpr()
		lhs, err := convertExpr(ae.Lexpr)
		if err != nil {
			return nil, err
		}
		rhs, err := convertExpr(ae.Rexpr)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: lastName(ae.Name), LHS: lhs, RHS: rhs}, nil
	case node.GetBoolExpr() != nil:
		return convertBoolExpr(node.GetBoolExpr())
	case node.GetNullTest() != nil:
		nt := node.GetNullTest()
		operand, err := convertExpr(nt.Arg)
		if err != nil {
			return nil, err
		}
		op := "IS NOT NULL"
		if nt.Nulltesttype == pg_query.NullTestType_IS_NULL {
			op = "IS NULL"
		}
		return &ast.UnaryOp{Op: op, Operand: operand}, nil
	case node.GetFuncCall() != nil:
		fc := node.GetFuncCall()
		args := make([]ast.Expr, 0, len(fc.Args))
		for _, a := range fc.Args {
			e, err := convertExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, e)
		}
		return &ast.FunctionCall{Name: lastName(fc.Funcname), Args: args}, nil
	case node.GetSubLink() != nil:
		return convertSubLink(node.GetSubLink())
	default:
		return nil, fmt.Errorf("typesql: unsupported expression %T", node.GetNode())
	}
}

func convertBoolExpr(be *pg_query.BoolExpr) (ast.Expr, error) {
	if be.Boolop == pg_query.BoolExprType_NOT_EXPR {
		operand, err := convertExpr(be.Args[0])
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: "NOT", Operand: operand}, nil
	}

	op := "AND"
	if be.Boolop == pg_query.BoolExprType_OR_EXPR {
		op = "OR"
	}
	args := make([]ast.Expr, 0, len(be.Args))
	for _, a := range be.Args {
		e, err := convertExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	result := args[0]
	for _, a := range args[1:] {
		result = &ast.BinaryOp{Op: op, LHS: result, RHS: a}
	}
	return result, nil
}

func convertColumnRef(cr *pg_query.ColumnRef) (ast.Expr, error) {
	if len(cr.Fields) == 0 {
		return nil, fmt.Errorf("typesql: empty column reference")
	}
	if cr.Fields[len(cr.Fields)-1].GetAStar() != nil {
		return nil, fmt.Errorf("typesql: \"*\" is only valid in a select list, not a scalar expression")
	}
	switch len(cr.Fields) {
	case 1:
		s := cr.Fields[0].GetString_()
		if s == nil {
			return nil, fmt.Errorf("typesql: unsupported column reference")
		}
		return &ast.ColumnRef{Column: s.Sval}, nil
	case 2:
		t := cr.Fields[0].GetString_()
		c := cr.Fields[1].GetString_()
		if t == nil || c == nil {
			return nil, fmt.Errorf("typesql: unsupported column reference")
		}
		return &ast.TableColumnRef{Table: t.Sval, Column: c.Sval}, nil
	default:
		return nil, fmt.Errorf("typesql: schema-qualified column references are not supported")
	}
}

func convertConst(c *pg_query.A_Const) ast.Expr {
	switch {
	case c.Isnull:
		return &ast.Constant{IsNull: true}
	case c.GetIval() != nil:
		return &ast.Constant{Text: fmt.Sprintf("%d", c.GetIval().Ival)}
	case c.GetFval() != nil:
		return &ast.Constant{Text: c.GetFval().Fval}
	case c.GetSval() != nil:
		return &ast.Constant{Text: c.GetSval().Sval}
	case c.GetBoolval() != nil:
		return &ast.Constant{Text: fmt.Sprintf("%t", c.GetBoolval().Boolval)}
	default:
		return &ast.Constant{}
	}
}

func convertSubLink(sl *pg_query.SubLink) (ast.Expr, error) {
	sub := sl.Subselect.GetSelectStmt()
	if sub == nil {
		return nil, fmt.Errorf("typesql: unsupported subquery expression")
	}
	switch sl.SubLinkType {
	case pg_query.SubLinkType_EXISTS_SUBLINK:
		q, err := convertSelect(sub)
		if err != nil {
			return nil, err
		}
		return &ast.ExistsOp{Subquery: q}, nil
	case pg_query.SubLinkType_ARRAY_SUBLINK:
		q, err := convertSelect(sub)
		if err != nil {
			return nil, err
		}
		return &ast.ArraySubQuery{Subquery: q}, nil
	case pg_query.SubLinkType_ANY_SUBLINK:
		lhs, err := convertExpr(sl.Testexpr)
		if err != nil {
			return nil, err
		}
		q, err := convertSelect(sub)
		if err != nil {
			return nil, err
		}
		return &ast.InOp{LHS: lhs, Subquery: q}, nil
	default:
		return nil, fmt.Errorf("typesql: unsupported subquery expression kind %v", sl.SubLinkType)
	}
}

func aliasName(a *pg_query.Alias) string {
	if a == nil {
		return ""
	}
	return a.Aliasname
}

// lastName returns the final component of a (possibly schema-qualified)
// dotted identifier list, e.g. the operator or function name in
// pg_query's Name/Funcname node lists.
func lastName(nodes []*pg_query.Node) string {
	if len(nodes) == 0 {
		return ""
	}
	s := nodes[len(nodes)-1].GetString_()
	if s == nil {
		return ""
	}
	return s.Sval
}

func formatTypeName(tn *pg_query.TypeName) string {
	if tn == nil {
		return ""
	}
	parts := make([]string, 0, len(tn.Names))
	for _, n := range tn.Names {
		if s := n.GetString_(); s != nil {
			parts = append(parts, s.Sval)
		}
	}
	name := strings.Join(parts, ".")
	if len(tn.ArrayBounds) > 0 {
		name += "[]"
	}
	return name
}
