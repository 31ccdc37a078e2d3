// Package catalog models the external schema oracle the inference engine
// consumes: tables and their columns, with database-level NOT NULL status
// and the hidden system columns (oid, ctid, tableoid, ...) that SELECT *
// omits but an explicit reference can still resolve.
package catalog

import "context"

// ColumnType describes a column's PostgreSQL type: a scalar OID, plus,
// for array columns, the element OID and whether array elements may be
// NULL independently of the array column itself.
type ColumnType struct {
	OID       OID
	ArrayElem *ArrayElemType
}

// ArrayElemType carries the per-element nullability of an array column.
// It is a pointer field on ColumnType rather than a flattened pair of
// fields so that "not an array" and "array of non-null elements" remain
// distinguishable without a sentinel OID value.
type ArrayElemType struct {
	OID      OID
	Nullable bool
}

// Column is one column of a Table, as reported by the schema client.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool // database-level NOT NULL status, negated
	Hidden   bool // true for system columns like oid, ctid, tableoid
}

// Table is a schema/name pair and its ordered columns.
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Column looks up a column by name (case-sensitive, matching how SQL
// identifiers were parsed), reporting false if it isn't present.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// SchemaClient is the narrow interface the inference core consumes to
// resolve FROM-clause and INSERT/UPDATE/DELETE target tables. A nil
// schema argument to GetTable means "resolve via the server's
// search_path"; callers never need to pass the default schema name.
//
// Implementations are expected to cache internally — the core calls
// GetTable at least once per table reference it encounters (an INSERT or
// UPDATE target is looked up again by the parameter pass), which for a
// statement joining the same table twice means two calls for one
// physical table.
type SchemaClient interface {
	GetTable(ctx context.Context, schema *string, name string) (Table, error)
}
