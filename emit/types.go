package emit

import "github.com/typesql/typesql/catalog"

// goType decides the Go type a column or parameter is bound to. Non-null
// scalars map to a plain Go type; nullable scalars map to the matching
// pgx/v5 pgtype wrapper, since a bare Go zero value can't distinguish
// "0"/"" from SQL NULL the way pgtype's Valid flag can. Arrays map to a
// slice of the element's non-null Go type regardless of element
// nullability — tracking per-element NULLs would need a slice of pgtype
// wrappers, which this generator does not attempt.
func goType(oid catalog.OID, arrayElem *catalog.ArrayElemType, nullable bool) string {
	if arrayElem != nil {
		return "[]" + scalarGoType(arrayElem.OID, false)
	}
	return scalarGoType(oid, nullable)
}

func scalarGoType(oid catalog.OID, nullable bool) string {
	if nullable {
		if t, ok := nullableGoType[oid]; ok {
			return t
		}
		return "any"
	}
	if t, ok := plainGoType[oid]; ok {
		return t
	}
	return "any"
}

var plainGoType = map[catalog.OID]string{
	catalog.Bool:        "bool",
	catalog.Int2:        "int16",
	catalog.Int4:        "int32",
	catalog.Int8:        "int64",
	catalog.Float4:      "float32",
	catalog.Float8:      "float64",
	catalog.Text:        "string",
	catalog.Varchar:     "string",
	catalog.Bytea:       "[]byte",
	catalog.JSON:        "[]byte",
	catalog.JSONB:       "[]byte",
	catalog.Date:        "time.Time",
	catalog.Timestamp:   "time.Time",
	catalog.Timestamptz: "time.Time",
	catalog.Numeric:     "string",
	catalog.UUID:        "[16]byte",
	catalog.OIDType:     "uint32",
}

var nullableGoType = map[catalog.OID]string{
	catalog.Bool:        "pgtype.Bool",
	catalog.Int2:        "pgtype.Int2",
	catalog.Int4:        "pgtype.Int4",
	catalog.Int8:        "pgtype.Int8",
	catalog.Float4:      "pgtype.Float4",
	catalog.Float8:      "pgtype.Float8",
	catalog.Text:        "pgtype.Text",
	catalog.Varchar:     "pgtype.Text",
	catalog.Bytea:       "[]byte",
	catalog.JSON:        "[]byte",
	catalog.JSONB:       "[]byte",
	catalog.Date:        "pgtype.Date",
	catalog.Timestamp:   "pgtype.Timestamp",
	catalog.Timestamptz: "pgtype.Timestamptz",
	catalog.Numeric:     "pgtype.Numeric",
	catalog.UUID:        "pgtype.UUID",
	catalog.OIDType:     "uint32",
}

// usesPgtype reports whether the Go type name t (as returned by goType or
// scalarGoType) needs the pgtype import.
func usesPgtype(t string) bool {
	return len(t) > 7 && t[:7] == "pgtype."
}
