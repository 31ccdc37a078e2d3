package ast

// TableExpression is a FROM-clause source: a bare table, a subquery, or a
// join combining two further TableExpressions.
type TableExpression interface {
	Node
	tableExpression()
}

// TableRef names a table, optionally schema-qualified.
type TableRef struct {
	Schema string // empty means "resolve via search_path / CTE lookup"
	Name   string
}

// Table is a FROM-clause reference to a base table or CTE, with an optional
// alias ("FROM person p").
type Table struct {
	Ref TableRef
	As  string // empty if no alias was given
}

func (*Table) node()            {}
func (*Table) tableExpression() {}

// SubQuery is a derived table, "(SELECT ...) AS alias".
type SubQuery struct {
	Query *Select
	As    string
}

func (*SubQuery) node()            {}
func (*SubQuery) tableExpression() {}

// CrossJoin is "left CROSS JOIN right" (or the comma-join form).
type CrossJoin struct {
	Left  TableExpression
	Right TableExpression
}

func (*CrossJoin) node()            {}
func (*CrossJoin) tableExpression() {}

// JoinType distinguishes the four qualified join kinds.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
)

// QualifiedJoin is "left <joinType> JOIN right ON on".
type QualifiedJoin struct {
	Left     TableExpression
	JoinType JoinType
	Right    TableExpression
	On       Expr
}

func (*QualifiedJoin) node()            {}
func (*QualifiedJoin) tableExpression() {}
