package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/config"
	"github.com/typesql/typesql/statement"
)

type fakeProber struct{}

func (fakeProber) Probe(ctx context.Context, sql string) (statement.Description, error) {
	return statement.Description{
		SQL: sql,
		Columns: []statement.Column{
			{Name: "id", Type: catalog.ColumnType{OID: catalog.Int4}, Nullable: true},
			{Name: "name", Type: catalog.ColumnType{OID: catalog.Text}, Nullable: true},
		},
		RowCount: statement.Many,
	}, nil
}

type fakeSchema struct{}

func (fakeSchema) GetTable(ctx context.Context, schema *string, name string) (catalog.Table, error) {
	return catalog.Table{
		Name: name,
		Columns: []catalog.Column{
			{Name: "id", Nullable: false, Type: catalog.ColumnType{OID: catalog.Int4}},
			{Name: "name", Nullable: false, Type: catalog.ColumnType{OID: catalog.Text}},
		},
	}, nil
}

type memWriter struct {
	files map[string][]byte
}

func (w *memWriter) WriteFile(path string, data []byte) error {
	if w.files == nil {
		w.files = make(map[string][]byte)
	}
	w.files[path] = data
	return nil
}

func TestGenerateOnceWritesOneFilePerQuery(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list_person.sql"), []byte("SELECT id, name FROM person"), 0o644))

	w := &memWriter{}
	p := &pipeline{
		cfg: config.Config{
			Queries: []string{filepath.Join(dir, "*.sql")},
			Output:  config.Output{Package: "queries", Dir: dir},
		},
		schema: fakeSchema{},
		prober: fakeProber{},
		writer: w,
		log:    zerolog.Nop(),
	}

	err := p.generateOnce(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, w.files, 1)

	out := w.files[filepath.Join(dir, "list_person_gen.go")]
	require.Contains(t, string(out), "func ListPerson(")
}

func TestGenerateOnceSkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.sql"), []byte("   \n"), 0o644))

	w := &memWriter{}
	p := &pipeline{
		cfg: config.Config{
			Queries: []string{filepath.Join(dir, "*.sql")},
			Output:  config.Output{Package: "queries", Dir: dir},
		},
		schema: fakeSchema{},
		prober: fakeProber{},
		writer: w,
		log:    zerolog.Nop(),
	}

	require.NoError(t, p.generateOnce(context.Background(), 2))
	require.Empty(t, w.files)
}

func TestExpandQueryGlobsDedupesAndFiltersNonSQL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))

	files, err := expandQueryGlobs([]string{
		filepath.Join(dir, "*.sql"),
		filepath.Join(dir, "a.sql"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.sql")}, files)
}
