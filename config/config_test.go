package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typesql/typesql/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "typesql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
dsn: postgres://localhost:5432/app
searchPath: [app, public]
queries:
  - queries/*.sql
output:
  package: queries
  dir: internal/queries
log:
  level: debug
  pretty: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost:5432/app", cfg.DSN)
	require.Equal(t, []string{"app", "public"}, cfg.SearchPath)
	require.Equal(t, []string{"queries/*.sql"}, cfg.Queries)
	require.Equal(t, "queries", cfg.Output.Package)
	require.True(t, cfg.Log.Pretty)
}

func TestLoadMissingDSNErrors(t *testing.T) {
	path := writeConfig(t, `
queries:
  - queries/*.sql
output:
  package: queries
  dir: internal/queries
`)

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load("/does/not/exist.yaml")
	require.Error(t, err)
}
