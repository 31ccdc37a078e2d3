// Package emit renders a set of analyzed statements into a single Go
// source file: per statement, one typed function, a parameter struct when
// it has two or more parameters and a row struct when it returns rows,
// following the conventions bun's own
// text/template-based generators (dbfixture, fixture, testfixture) use
// for turning data into Go source.
package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	"github.com/typesql/typesql/statement"
)

// Statement is one named, analyzed query to render.
type Statement struct {
	// Name seeds the generated function and struct names; it is typically
	// derived from the source file name. emit converts it with
	// exportedName ("get_person_by_id" -> "GetPersonById").
	Name string
	Desc statement.Description
}

type templateField struct {
	GoName string
	Type   string
}

type templateStatement struct {
	FuncName   string
	ParamsName string
	RowName    string
	SQL        string
	// ParamsStruct holds the parameter fields when there are 2 or more —
	// SPEC_FULL.md skips the wrapper struct for 0 or 1 params, so a lone
	// parameter is instead passed as a direct function argument (see
	// FuncParam/CallArg below).
	ParamsStruct []templateField
	// FuncParam is the extra parameter declaration to splice into the
	// function signature after "db DBTX" — empty for 0 params, a bare
	// "p1 T" for exactly 1, or "params FooParams" for 2+.
	FuncParam string
	// CallArgs are the argument expressions to splice into the generated
	// Query/QueryRow/Exec call, matching FuncParam's shape.
	CallArgs []string
	Columns []templateField
	// allTypes lists every Go type this statement's params/columns use,
	// for import detection only — it is not rendered by the template.
	allTypes []string
	// Exactly one of these describes the function's return shape.
	ReturnsMany      bool
	ReturnsOne       bool
	ReturnsZeroOrOne bool
	ReturnsNone      bool
}

// Generate renders pkg's source for stmts. The result is gofmt'd; a
// template or formatting failure is a bug in this package, not in the
// caller's input, so both are returned as plain errors rather than panics.
func Generate(pkg string, stmts []Statement) ([]byte, error) {
	data := struct {
		Package     string
		NeedsTime   bool
		NeedsPgtype bool
		NeedsErrors bool
		Statements  []templateStatement
	}{Package: pkg}

	for _, s := range stmts {
		ts, err := buildTemplateStatement(s)
		if err != nil {
			return nil, fmt.Errorf("typesql: render %q: %w", s.Name, err)
		}
		data.Statements = append(data.Statements, ts)
		if ts.ReturnsZeroOrOne {
			data.NeedsErrors = true
		}
		for _, typ := range ts.allTypes {
			if typ == "time.Time" {
				data.NeedsTime = true
			}
			if usesPgtype(typ) {
				data.NeedsPgtype = true
			}
		}
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("typesql: execute template: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("typesql: gofmt generated source: %w", err)
	}
	return out, nil
}

func buildTemplateStatement(s Statement) (templateStatement, error) {
	name := exportedName(s.Name)
	if name == "" {
		return templateStatement{}, fmt.Errorf("statement name %q has no exportable identifier", s.Name)
	}

	ts := templateStatement{
		FuncName:   name,
		ParamsName: name + "Params",
		RowName:    name + "Row",
		SQL:        s.Desc.SQL,
	}

	switch len(s.Desc.Params) {
	case 0:
		// No parameter struct, no function argument.
	case 1:
		p := s.Desc.Params[0]
		typ := scalarGoType(p.OID, p.Nullable)
		ts.FuncParam = "p1 " + typ
		ts.CallArgs = []string{"p1"}
		ts.allTypes = append(ts.allTypes, typ)
	default:
		fields := make([]templateField, len(s.Desc.Params))
		for i, p := range s.Desc.Params {
			fields[i] = templateField{
				GoName: fmt.Sprintf("P%d", i+1),
				Type:   scalarGoType(p.OID, p.Nullable),
			}
		}
		ts.ParamsStruct = fields
		ts.FuncParam = "params " + ts.ParamsName
		for _, f := range fields {
			ts.CallArgs = append(ts.CallArgs, "params."+f.GoName)
			ts.allTypes = append(ts.allTypes, f.Type)
		}
	}

	for _, c := range s.Desc.Columns {
		typ := goType(c.Type.OID, c.Type.ArrayElem, c.Nullable)
		ts.Columns = append(ts.Columns, templateField{
			GoName: exportedName(c.Name),
			Type:   typ,
		})
		ts.allTypes = append(ts.allTypes, typ)
	}

	switch s.Desc.RowCount {
	case statement.Many:
		ts.ReturnsMany = true
	case statement.One:
		ts.ReturnsOne = true
	case statement.ZeroOrOne:
		ts.ReturnsZeroOrOne = true
	case statement.Zero:
		ts.ReturnsNone = true
	}
	return ts, nil
}

// exportedName turns a snake_case SQL identifier into an exported Go
// identifier: "person_id" -> "PersonId", "get_by_id" -> "GetByID" is
// intentionally NOT special-cased — this generator does not maintain an
// initialism table the way golint does.
func exportedName(s string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var fileTemplate = template.Must(template.New("typesql").Parse(`// Code generated by typesql. DO NOT EDIT.

package {{.Package}}

import (
	"context"
{{- if .NeedsErrors}}
	"errors"
{{- end}}
{{- if .NeedsTime}}
	"time"
{{- end}}

	"github.com/jackc/pgx/v5"
{{- if .NeedsPgtype}}
	"github.com/jackc/pgx/v5/pgtype"
{{- end}}
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx, so generated
// functions can run inside or outside a transaction.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
}

{{range .Statements}}
{{if .ParamsStruct}}
type {{.ParamsName}} struct {
{{- range .ParamsStruct}}
	{{.GoName}} {{.Type}}
{{- end}}
}
{{end}}
{{if or .ReturnsMany .ReturnsOne .ReturnsZeroOrOne}}
type {{.RowName}} struct {
{{- range .Columns}}
	{{.GoName}} {{.Type}}
{{- end}}
}
{{end}}
const {{.FuncName}}SQL = ` + "`{{.SQL}}`" + `

{{if .ReturnsMany}}
func {{.FuncName}}(ctx context.Context, db DBTX{{if .FuncParam}}, {{.FuncParam}}{{end}}) ([]{{.RowName}}, error) {
	rows, err := db.Query(ctx, {{.FuncName}}SQL{{range .CallArgs}}, {{.}}{{end}})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []{{.RowName}}
	for rows.Next() {
		var row {{.RowName}}
		if err := rows.Scan({{range $i, $c := .Columns}}{{if $i}}, {{end}}&row.{{$c.GoName}}{{end}}); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
{{else if .ReturnsOne}}
func {{.FuncName}}(ctx context.Context, db DBTX{{if .FuncParam}}, {{.FuncParam}}{{end}}) ({{.RowName}}, error) {
	var row {{.RowName}}
	err := db.QueryRow(ctx, {{.FuncName}}SQL{{range .CallArgs}}, {{.}}{{end}}).
		Scan({{range $i, $c := .Columns}}{{if $i}}, {{end}}&row.{{$c.GoName}}{{end}})
	return row, err
}
{{else if .ReturnsZeroOrOne}}
func {{.FuncName}}(ctx context.Context, db DBTX{{if .FuncParam}}, {{.FuncParam}}{{end}}) ({{.RowName}}, bool, error) {
	var row {{.RowName}}
	err := db.QueryRow(ctx, {{.FuncName}}SQL{{range .CallArgs}}, {{.}}{{end}}).
		Scan({{range $i, $c := .Columns}}{{if $i}}, {{end}}&row.{{$c.GoName}}{{end}})
	if errors.Is(err, pgx.ErrNoRows) {
		return {{.RowName}}{}, false, nil
	}
	if err != nil {
		return {{.RowName}}{}, false, err
	}
	return row, true, nil
}
{{else}}
func {{.FuncName}}(ctx context.Context, db DBTX{{if .FuncParam}}, {{.FuncParam}}{{end}}) error {
	_, err := db.Exec(ctx, {{.FuncName}}SQL{{range .CallArgs}}, {{.}}{{end}})
	return err
}
{{end}}
{{end}}
`))
