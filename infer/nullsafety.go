package infer

import "strings"

// category classifies how an operator or function propagates NULL,
// driving both the general expression-nullability dispatch (columns.go) and
// the WHERE-based non-null derivation (wherenotnull.go).
type category int

const (
	// safe: the result is NULL iff some operand is NULL.
	safe category = iota
	// unsafe: the result may be NULL even when every operand is non-NULL
	// (NULLIF, an aggregate over zero rows, ...).
	unsafe
	// alwaysNull: the result is always NULL. No built-in earns this; it
	// exists so a future pathological addition has somewhere to go
	// without inventing a fifth category.
	alwaysNull
	// neverNull: the result is never NULL regardless of its operands
	// (IS NULL, IS NOT NULL, COUNT(*), ...).
	neverNull
)

// binaryOps covers the Postgres operators exercised by this engine's
// tests. Arithmetic and comparison operators are "safe": they only
// produce NULL by propagating a NULL operand (division by zero and
// similar are runtime errors, not NULL results, so "/" belongs here too).
var binaryOps = map[string]category{
	"+": safe, "-": safe, "*": safe, "/": safe, "%": safe,
	"=": safe, "<>": safe, "!=": safe, "<": safe, "<=": safe, ">": safe, ">=": safe,
	"||": safe, "AND": safe, "OR": safe,
	"LIKE": safe, "ILIKE": safe, "~": safe, "~*": safe,
	"IS DISTINCT FROM":     neverNull,
	"IS NOT DISTINCT FROM": neverNull,
}

// unaryOps covers prefix/postfix unary operators.
var unaryOps = map[string]category{
	"NOT":          safe,
	"-":            safe,
	"IS NULL":      neverNull,
	"IS NOT NULL":  neverNull,
	"ISNULL":       neverNull,
	"NOTNULL":      neverNull,
	"IS TRUE":      neverNull,
	"IS FALSE":     neverNull,
	"IS NOT TRUE":  neverNull,
	"IS NOT FALSE": neverNull,
}

// functions covers the built-in scalar/aggregate functions this engine's
// tests exercise. Anything absent defaults to safe (nullable iff any
// argument is nullable), the conservative choice for an unmodeled
// function per the Non-goals around exhaustive SQL coverage.
var functions = map[string]category{
	"coalesce":  safe,
	"lower":     safe,
	"upper":     safe,
	"trim":      safe,
	"btrim":     safe,
	"concat":    safe,
	"substring": safe,
	"length":    safe,
	"greatest":  safe,
	"least":     safe,
	"abs":       safe,
	"round":     safe,

	"nullif": unsafe,
	"sum":    unsafe,
	"avg":    unsafe,
	"min":    unsafe,
	"max":    unsafe,

	"count":             neverNull,
	"now":               neverNull,
	"current_timestamp": neverNull,
	"current_date":      neverNull,
	"random":             neverNull,
}

func binaryCategory(op string) category {
	if c, ok := binaryOps[op]; ok {
		return c
	}
	return safe
}

func unaryCategory(op string) category {
	if c, ok := unaryOps[strings.ToUpper(op)]; ok {
		return c
	}
	return safe
}

func functionCategory(name string) category {
	if c, ok := functions[strings.ToLower(name)]; ok {
		return c
	}
	return safe
}
