package infer_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/infer"
	"github.com/typesql/typesql/statement"
)

func testSchema() *catalog.StaticClient {
	person := catalog.Table{
		Name: "person",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: false},
			{Name: "name", Type: catalog.ColumnType{OID: catalog.Varchar}, Nullable: false},
			{Name: "age", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: true},
		},
	}
	orders := catalog.Table{
		Name: "orders",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: false},
			{Name: "person_id", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: false},
		},
	}
	archivedPerson := catalog.Table{
		Name: "archived_person",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: false},
		},
	}
	return catalog.NewStaticClient(nil, person, orders, archivedPerson)
}

// rawColumns builds the conservative, nullable-everywhere shape the driver
// probe would hand to package infer before any refinement.
func rawColumns(names ...string) []statement.Column {
	out := make([]statement.Column, len(names))
	for i, n := range names {
		out[i] = statement.Column{Name: n, Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: true}
	}
	return out
}

func rawParams(n int) []statement.Param {
	out := make([]statement.Param, n)
	for i := range out {
		out[i] = statement.Param{OID: catalog.Int4, Nullable: true}
	}
	return out
}

func TestInferSelectColumnsNonNullByDefault(t *testing.T) {
	sql := `SELECT id, name, age FROM person`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id", "name", "age")}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.False(t, out.Columns[0].Nullable, "id")
	require.False(t, out.Columns[1].Nullable, "name")
	require.True(t, out.Columns[2].Nullable, "age")
}

func TestInferSelectStarExpandsSameAsExplicitList(t *testing.T) {
	sql := `SELECT * FROM person`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id", "name", "age")}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.False(t, out.Columns[0].Nullable)
	require.False(t, out.Columns[1].Nullable)
	require.True(t, out.Columns[2].Nullable)
}

func TestInferWhereIsNotNullRefinesColumn(t *testing.T) {
	sql := `SELECT id, age FROM person WHERE age IS NOT NULL`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id", "age")}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.False(t, out.Columns[1].Nullable, "age should be refined to non-null")
}

func TestInferLimitOneYieldsZeroOrOne(t *testing.T) {
	sql := `SELECT id FROM person LIMIT 1`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id")}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, statement.ZeroOrOne, out.RowCount)
}

func TestInferSetOperationWithOutermostLimitYieldsZeroOrOne(t *testing.T) {
	sql := `SELECT id FROM person UNION SELECT id FROM archived_person LIMIT 1`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id")}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, statement.ZeroOrOne, out.RowCount)
}

func TestInferSetOperationWithoutLimitYieldsMany(t *testing.T) {
	sql := `SELECT id FROM person UNION SELECT id FROM archived_person`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id")}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, statement.Many, out.RowCount)
}

func TestInferLeftJoinForcesRightSideNullable(t *testing.T) {
	sql := `SELECT p.id, o.id FROM person p LEFT JOIN orders o ON o.person_id = p.id`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id", "id")}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.False(t, out.Columns[0].Nullable, "p.id stays non-null")
	require.True(t, out.Columns[1].Nullable, "o.id forced nullable by LEFT JOIN")
}

func TestInferInsertReturningBindsParamsToColumnNullability(t *testing.T) {
	sql := `INSERT INTO person (name, age) VALUES ($1, $2) RETURNING id`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id"), Params: rawParams(2)}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.False(t, out.Columns[0].Nullable, "id")
	require.False(t, out.Params[0].Nullable, "name is NOT NULL")
	require.True(t, out.Params[1].Nullable, "age is nullable")
	require.Equal(t, statement.One, out.RowCount)
}

func TestInferUpdateDoesNotLeakWhereUseIntoParamNullability(t *testing.T) {
	sql := `UPDATE person SET name = $1 WHERE id = $2`
	raw := statement.Description{SQL: sql, Params: rawParams(2)}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.False(t, out.Params[0].Nullable, "name is NOT NULL, bound via SET")
	require.True(t, out.Params[1].Nullable, "id's WHERE use is not a column-bound SET site")
	require.Equal(t, statement.Zero, out.RowCount)
}

func TestInferUnparsableSQLDegradesToRaw(t *testing.T) {
	sql := `SELEKT * FROM person`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id", "name", "age")}

	out, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestInferColumnCountMismatchIsFatal(t *testing.T) {
	sql := `SELECT id, name, age FROM person`
	raw := statement.Description{SQL: sql, Columns: rawColumns("id", "name")}

	_, err := infer.Infer(context.Background(), testSchema(), sql, raw, zerolog.Nop())
	require.Error(t, err)
	require.True(t, infer.IsFatal(err))
}
