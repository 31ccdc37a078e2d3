package infer

// FieldNullability is the analyzer's verdict on whether a column or
// expression result can be NULL. It is a single struct whose IsArray flag
// tags the Array case; build values with Scalar or Array. The type system
// does not force code that reads only Nullable to handle the Array case.
type FieldNullability struct {
	Nullable bool
	// IsArray distinguishes the Array variant. When false, ElemNullable is
	// meaningless and must not be consulted.
	IsArray      bool
	ElemNullable bool
}

// Scalar builds a non-array FieldNullability.
func Scalar(nullable bool) FieldNullability {
	return FieldNullability{Nullable: nullable}
}

// Array builds an array FieldNullability with independent outer and
// element nullability.
func Array(nullable, elemNullable bool) FieldNullability {
	return FieldNullability{Nullable: nullable, IsArray: true, ElemNullable: elemNullable}
}

// Or returns the nullability that results from treating a and b as
// alternatives whose nullability should be pessimistically combined (used
// for set-operation arms and parameter-binding-site unions). Array-ness
// must agree between a and b; callers are expected to have already
// validated column-shape compatibility before calling Or.
func Or(a, b FieldNullability) FieldNullability {
	return FieldNullability{
		Nullable:     a.Nullable || b.Nullable,
		IsArray:      a.IsArray,
		ElemNullable: a.ElemNullable || b.ElemNullable,
	}
}

// VirtualField is one output column of a (sub)query, before it is bound
// back to the driver-probed column list.
type VirtualField struct {
	Name         string
	Nullability  FieldNullability
}

// VirtualTable is a named CTE's result shape, as seen by later CTEs and by
// the outer query's FROM clause.
type VirtualTable struct {
	Name    string
	Columns []VirtualField
}

// SourceColumn is a column visible in the current FROM scope: a physical
// table's column or a subquery/CTE's projected column, carrying whatever
// alias it is reachable under and its nullability as refined by join
// propagation and WHERE-based elimination.
type SourceColumn struct {
	TableAlias  string
	ColumnName  string
	Nullability FieldNullability
	// Hidden marks system columns (oid, ctid, ...) that SELECT * skips but
	// an explicit reference can still resolve.
	Hidden bool
}
