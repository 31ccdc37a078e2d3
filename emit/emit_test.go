package emit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/emit"
	"github.com/typesql/typesql/statement"
)

func TestGenerateManyRowsFunction(t *testing.T) {
	stmts := []emit.Statement{
		{
			Name: "list_people",
			Desc: statement.Description{
				SQL: "SELECT id, name, age FROM person",
				Columns: []statement.Column{
					{Name: "id", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: false},
					{Name: "name", Type: catalog.ColumnType{OID: catalog.Text}, Nullable: false},
					{Name: "age", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: true},
				},
				RowCount: statement.Many,
			},
		},
	}

	out, err := emit.Generate("queries", stmts)
	require.NoError(t, err)
	src := string(out)

	require.Contains(t, src, "package queries")
	require.Contains(t, src, "type ListPeopleRow struct")
	require.Contains(t, src, "Age  pgtype.Int4")
	require.Contains(t, src, "func ListPeople(ctx context.Context, db DBTX) ([]ListPeopleRow, error)")
	require.Contains(t, src, `"github.com/jackc/pgx/v5/pgtype"`)
}

func TestGenerateOneRowFunctionWithParams(t *testing.T) {
	stmts := []emit.Statement{
		{
			Name: "insert_person",
			Desc: statement.Description{
				SQL: "INSERT INTO person (name, age) VALUES ($1, $2) RETURNING id",
				Columns: []statement.Column{
					{Name: "id", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: false},
				},
				Params: []statement.Param{
					{OID: catalog.Text, Nullable: false},
					{OID: catalog.Int4, Nullable: true},
				},
				RowCount: statement.One,
			},
		},
	}

	out, err := emit.Generate("queries", stmts)
	require.NoError(t, err)
	src := string(out)

	require.Contains(t, src, "type InsertPersonParams struct")
	require.Contains(t, src, "P1 string")
	require.Contains(t, src, "P2 pgtype.Int4")
	require.Contains(t, src, "func InsertPerson(ctx context.Context, db DBTX, params InsertPersonParams) (InsertPersonRow, error)")
}

func TestGenerateZeroOrOneRowFunction(t *testing.T) {
	stmts := []emit.Statement{
		{
			Name: "find_person_by_id",
			Desc: statement.Description{
				SQL: "SELECT id, name FROM person WHERE id = $1 LIMIT 1",
				Columns: []statement.Column{
					{Name: "id", Type: catalog.ColumnType{OID: catalog.Int4}},
					{Name: "name", Type: catalog.ColumnType{OID: catalog.Text}},
				},
				Params:   []statement.Param{{OID: catalog.Int4}},
				RowCount: statement.ZeroOrOne,
			},
		},
	}

	out, err := emit.Generate("queries", stmts)
	require.NoError(t, err)
	src := string(out)

	require.Contains(t, src, "func FindPersonById(ctx context.Context, db DBTX, p1 int32) (FindPersonByIdRow, bool, error)")
	require.Contains(t, src, "pgx.ErrNoRows")
	require.NotContains(t, src, "type FindPersonByIdParams struct")
}

func TestGenerateNoResultFunction(t *testing.T) {
	stmts := []emit.Statement{
		{
			Name: "delete_person",
			Desc: statement.Description{
				SQL:      "DELETE FROM person WHERE id = $1",
				Params:   []statement.Param{{OID: catalog.Int4}},
				RowCount: statement.Zero,
			},
		},
	}

	out, err := emit.Generate("queries", stmts)
	require.NoError(t, err)
	src := string(out)

	require.Contains(t, src, "func DeletePerson(ctx context.Context, db DBTX, p1 int32) error")
	require.NotContains(t, src, "type DeletePersonParams struct")
	require.NotContains(t, src, "type DeletePersonRow struct")
}

func TestGenerateOmitsUnusedImports(t *testing.T) {
	stmts := []emit.Statement{
		{
			Name: "count_people",
			Desc: statement.Description{
				SQL: "SELECT count(*) FROM person",
				Columns: []statement.Column{
					{Name: "count", Type: catalog.ColumnType{OID: catalog.Int8}, Nullable: false},
				},
				RowCount: statement.One,
			},
		},
	}

	out, err := emit.Generate("queries", stmts)
	require.NoError(t, err)
	src := string(out)

	require.False(t, strings.Contains(src, `"time"`))
	require.False(t, strings.Contains(src, "pgtype"))
}

func TestGenerateRejectsUnnameableStatement(t *testing.T) {
	_, err := emit.Generate("queries", []emit.Statement{{Name: "---"}})
	require.Error(t, err)
}
