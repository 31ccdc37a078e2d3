// Package statement defines StatementDescription, the record threaded
// through the whole pipeline: the driver probe produces one with
// conservative (nullable-everywhere) defaults, and the inference engine in
// package infer enriches it in place of producing a new shape.
package statement

import "github.com/typesql/typesql/catalog"

// RowCount is the inferred cardinality bound for a statement's result set.
type RowCount int

const (
	// Many means the statement may return any number of rows; this is the
	// conservative default when no sharper rule from infer/rowcount.go
	// applies.
	Many RowCount = iota
	// Zero means the statement never returns rows (no RETURNING clause).
	Zero
	// One means the statement always returns exactly one row.
	One
	// ZeroOrOne means the statement returns at most one row.
	ZeroOrOne
)

func (r RowCount) String() string {
	switch r {
	case Zero:
		return "zero"
	case One:
		return "one"
	case ZeroOrOne:
		return "zeroOrOne"
	default:
		return "many"
	}
}

// Column is one output column of a statement, as reported by the driver
// probe and refined by the column-nullability pass.
type Column struct {
	Name     string
	Type     catalog.ColumnType
	Nullable bool
}

// Param is one positional parameter of a statement, 0-indexed ($1 is
// Params[0]), as reported by the driver probe and refined by the
// parameter-nullability pass.
type Param struct {
	OID      catalog.OID
	Nullable bool
}

// Description is the probed-then-enriched shape of one SQL statement.
type Description struct {
	SQL      string
	Columns  []Column
	Params   []Param
	RowCount RowCount
}

// Clone returns a deep-enough copy of d: every pass in package infer
// produces a new Description rather than mutating the one it was given,
// per the pipeline's immutability contract.
func (d Description) Clone() Description {
	out := d
	out.Columns = append([]Column(nil), d.Columns...)
	out.Params = append([]Param(nil), d.Params...)
	return out
}
