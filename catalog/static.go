package catalog

import (
	"context"
	"fmt"
)

// StaticClient is an in-memory SchemaClient backed by a fixed set of
// tables, registered once at construction time. It is the schema client
// used throughout the infer package's tests and is handy for anyone
// embedding the inference engine against a schema snapshot instead of a
// live connection, mirroring the in-memory table registry pattern bun's
// schema.Tables uses for Go-struct-derived tables.
type StaticClient struct {
	tables map[tableKey]Table
	// searchPath is tried, in order, when GetTable is called with a nil
	// schema and the bare name isn't found unqualified.
	searchPath []string
}

type tableKey struct {
	schema string
	name   string
}

// NewStaticClient builds a StaticClient from tables, keyed by
// (Schema, Name). Tables with an empty Schema are resolved first for an
// unqualified lookup before searchPath is consulted.
func NewStaticClient(searchPath []string, tables ...Table) *StaticClient {
	m := make(map[tableKey]Table, len(tables))
	for _, t := range tables {
		m[tableKey{t.Schema, t.Name}] = t
	}
	return &StaticClient{tables: m, searchPath: searchPath}
}

var _ SchemaClient = (*StaticClient)(nil)

func (c *StaticClient) GetTable(_ context.Context, schema *string, name string) (Table, error) {
	if schema != nil {
		if t, ok := c.tables[tableKey{*schema, name}]; ok {
			return t, nil
		}
		return Table{}, fmt.Errorf("typesql: unknown table %q in schema %q", name, *schema)
	}

	if t, ok := c.tables[tableKey{"", name}]; ok {
		return t, nil
	}
	for _, s := range c.searchPath {
		if t, ok := c.tables[tableKey{s, name}]; ok {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("typesql: unknown table %q", name)
}
