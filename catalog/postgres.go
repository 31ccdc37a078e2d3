package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/puzpuzpuz/xsync/v3"
)

// PostgresClient is a SchemaClient backed by a live Postgres connection. It
// resolves tables from pg_catalog: pg_attribute joined with pg_class,
// pg_namespace and pg_type, taking NOT NULL from attnotnull, the hidden
// flag from system columns (attnum < 0) and skipping dropped columns,
// following the same pg_catalog join shape as dialect/pgdialect's
// inspector (sqlInspectColumnsQuery).
//
// Unlike the inference core, PostgresClient caches: a table is looked up
// from the database at most once per (schema, name) for the lifetime of
// the client, keyed exactly as required by the schema-client contract.
// The cache itself is an xsync.MapOf, the same lock-free concurrent map
// schema/tables.go uses for its own Type -> *Table registry.
type PostgresClient struct {
	pool *pgxpool.Pool

	cache *xsync.MapOf[tableKey, Table]
}

var _ SchemaClient = (*PostgresClient)(nil)

// NewPostgresClient wraps pool. The caller retains ownership of pool and
// must close it.
func NewPostgresClient(pool *pgxpool.Pool) *PostgresClient {
	return &PostgresClient{pool: pool, cache: xsync.NewMapOf[tableKey, Table]()}
}

func (c *PostgresClient) GetTable(ctx context.Context, schema *string, name string) (Table, error) {
	searchSchema := ""
	if schema != nil {
		searchSchema = *schema
	}

	if t, ok := c.cache.Load(tableKey{searchSchema, name}); ok {
		return t, nil
	}

	resolvedSchema := searchSchema
	if schema == nil {
		row := c.pool.QueryRow(ctx, sqlResolveSchema, name)
		if err := row.Scan(&resolvedSchema); err != nil {
			return Table{}, fmt.Errorf("typesql: resolve schema for table %q: %w", name, err)
		}
	}

	rows, err := c.pool.Query(ctx, sqlInspectColumns, resolvedSchema, name)
	if err != nil {
		return Table{}, fmt.Errorf("typesql: inspect columns of %q.%q: %w", resolvedSchema, name, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			colName    string
			typeOID    uint32
			isArray    bool
			arrayElem  uint32
			notNull    bool
			isHidden   bool
		)
		if err := rows.Scan(&colName, &typeOID, &isArray, &arrayElem, &notNull, &isHidden); err != nil {
			return Table{}, fmt.Errorf("typesql: scan column of %q.%q: %w", resolvedSchema, name, err)
		}

		col := Column{
			Name:     colName,
			Nullable: !notNull,
			Hidden:   isHidden,
			Type:     ColumnType{OID: OID(typeOID)},
		}
		if isArray {
			col.Type.ArrayElem = &ArrayElemType{OID: OID(arrayElem), Nullable: true}
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return Table{}, fmt.Errorf("typesql: read columns of %q.%q: %w", resolvedSchema, name, err)
	}
	if len(columns) == 0 {
		return Table{}, fmt.Errorf("typesql: table %q not found in schema %q", name, resolvedSchema)
	}

	t := Table{Schema: resolvedSchema, Name: name, Columns: columns}
	c.cache.Store(tableKey{searchSchema, name}, t)
	return t, nil
}

const sqlResolveSchema = `
SELECT n.nspname
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE c.relname = $1
  AND c.relkind IN ('r', 'p', 'v', 'm')
ORDER BY array_position(current_schemas(false), n.nspname)
LIMIT 1
`

// sqlInspectColumns mirrors dialect/pgdialect's sqlInspectColumnsQuery,
// trading its constraint_type/identity bookkeeping (irrelevant here) for
// the array-element OID and hidden-column flag the inference engine needs.
const sqlInspectColumns = `
SELECT
	a.attname AS column_name,
	a.atttypid AS type_oid,
	t.typcategory = 'A' AS is_array,
	COALESCE(t.typelem, 0) AS array_elem_oid,
	a.attnotnull AS not_null,
	a.attnum < 0 AS is_hidden
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
WHERE n.nspname = $1
  AND c.relname = $2
  AND a.attisdropped = false
ORDER BY a.attnum
`
