package catalog

// OID is a PostgreSQL object identifier for a type, as returned by
// PREPARE/DESCRIBE and by pg_catalog.pg_type.oid.
type OID uint32

// Scalar OIDs for the built-in types exercised by the inference engine and
// its tests. Values match pg_type.oid exactly (see src/include/catalog/
// pg_type.dat upstream); grounded on the constant table in
// driver/pgdriver/column.go, extended with the additional scalars the
// catalog/emit packages need.
const (
	Bool        OID = 16
	Bytea       OID = 17
	Int8        OID = 20
	Int2        OID = 21
	Int4        OID = 23
	Text        OID = 25
	OIDType     OID = 26
	JSON        OID = 114
	Float4      OID = 700
	Float8      OID = 701
	Varchar     OID = 1043
	Date        OID = 1082
	Timestamp   OID = 1114
	Timestamptz OID = 1184
	Numeric     OID = 1700
	UUID        OID = 2950
	JSONB       OID = 3802
)

// arrayOf maps a scalar OID to the OID of its one-dimensional array type.
// PostgreSQL assigns every built-in scalar type a matching "_type" array
// type at catalog bootstrap; these are the ones the catalog/parser/probe
// packages round-trip.
var arrayOf = map[OID]OID{
	Bool:        1000,
	Bytea:       1001,
	Int8:        1016,
	Int2:        1005,
	Int4:        1007,
	Text:        1009,
	JSON:        199,
	Float4:      1021,
	Float8:      1022,
	Varchar:     1015,
	Date:        1182,
	Timestamp:   1115,
	Timestamptz: 1185,
	Numeric:     1231,
	UUID:        2951,
	JSONB:       3807,
}

var elemOf = invert(arrayOf)

func invert(m map[OID]OID) map[OID]OID {
	out := make(map[OID]OID, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// ArrayOID returns the array-type OID for scalar elem, and true if elem is
// a known scalar with a corresponding array type.
func ArrayOID(elem OID) (OID, bool) {
	v, ok := arrayOf[elem]
	return v, ok
}

// ElementOID returns the scalar element OID for array-type arr, and true
// if arr is a known array type.
func ElementOID(arr OID) (OID, bool) {
	v, ok := elemOf[arr]
	return v, ok
}

// IsArray reports whether oid is one of the known array-type OIDs.
func IsArray(oid OID) bool {
	_, ok := elemOf[oid]
	return ok
}
