// Package probe asks a live PostgreSQL connection for a statement's shape
// via PREPARE/DESCRIBE, the same protocol-level step the extended query
// protocol performs before binding parameters. The result is deliberately
// conservative — every column and parameter comes back nullable — because
// working out anything sharper than "what type is this" is package infer's
// job, not the wire protocol's.
package probe

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/statement"
)

// Prober probes a SQL statement's output columns and parameter types
// against a live connection. It exists so the CLI and its tests can
// substitute a fake prober instead of requiring a real PostgreSQL server.
type Prober interface {
	Probe(ctx context.Context, sql string) (statement.Description, error)
}

// PoolProber adapts a *pgxpool.Pool to the Prober interface.
type PoolProber struct {
	Pool *pgxpool.Pool
}

func (p PoolProber) Probe(ctx context.Context, sql string) (statement.Description, error) {
	return Probe(ctx, p.Pool, sql)
}

// Probe prepares sql on a connection borrowed from pool and reports its
// output columns and parameter types as pgx's DESCRIBE response sees them:
// a name and PostgreSQL type OID per column, a type OID per parameter, and
// nothing about nullability or cardinality — RowCount defaults to Many and
// every Column/Param defaults to Nullable, the safe assumption until
// package infer narrows them.
func Probe(ctx context.Context, pool *pgxpool.Pool, sql string) (statement.Description, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return statement.Description{}, fmt.Errorf("typesql: acquire connection to probe statement: %w", err)
	}
	defer conn.Release()

	sd, err := conn.Conn().Prepare(ctx, "", sql)
	if err != nil {
		return statement.Description{}, fmt.Errorf("typesql: prepare statement: %w", err)
	}
	defer func() {
		_ = conn.Conn().Deallocate(ctx, "")
	}()

	desc := statement.Description{
		SQL:      sql,
		Columns:  make([]statement.Column, len(sd.Fields)),
		Params:   make([]statement.Param, len(sd.ParamOIDs)),
		RowCount: statement.Many,
	}
	for i, f := range sd.Fields {
		desc.Columns[i] = statement.Column{
			Name:     f.Name,
			Type:     catalog.ColumnType{OID: catalog.OID(f.DataTypeOID)},
			Nullable: true,
		}
	}
	for i, oid := range sd.ParamOIDs {
		desc.Params[i] = statement.Param{OID: catalog.OID(oid), Nullable: true}
	}
	return desc, nil
}
