package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/config"
	"github.com/typesql/typesql/emit"
	"github.com/typesql/typesql/probe"
)

var app = &cli.App{
	Name:  "typesql",
	Usage: "generate typed Go query functions from .sql files by analyzing them against a live PostgreSQL schema",
	Commands: cli.Commands{
		&cli.Command{
			Name:  "generate",
			Usage: "analyze every configured query once and write generated Go source",
			Flags: []cli.Flag{configFlag, concurrencyFlag},
			Action: func(ctx *cli.Context) error {
				p, closer, err := newPipeline(ctx)
				if err != nil {
					return err
				}
				defer closer()
				return p.generateOnce(ctx.Context, ctx.Int("concurrency"))
			},
		},
		&cli.Command{
			Name:  "watch",
			Usage: "like generate, but re-run whenever a query file changes",
			Flags: []cli.Flag{configFlag, concurrencyFlag},
			Action: func(ctx *cli.Context) error {
				p, closer, err := newPipeline(ctx)
				if err != nil {
					return err
				}
				defer closer()
				return p.watch(ctx.Context, ctx.Int("concurrency"))
			},
		},
	},
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to typesql.yaml",
	Value:   "typesql.yaml",
	EnvVars: []string{"TYPESQL_CONFIG"},
}

var concurrencyFlag = &cli.IntFlag{
	Name:  "concurrency",
	Usage: "maximum number of files analyzed at once",
	Value: 0,
}

// newPipeline loads cfg, builds the connection pool and schema client, and
// returns a ready-to-run pipeline plus a closer for the pool.
func newPipeline(ctx *cli.Context) (*pipeline, func(), error) {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg.Log)

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("typesql: parse dsn: %w", err)
	}
	if len(cfg.SearchPath) > 0 {
		setSearchPath := "SET search_path TO " + quoteIdents(cfg.SearchPath)
		poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, setSearchPath)
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx.Context, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("typesql: connect: %w", err)
	}

	p := &pipeline{
		cfg:    cfg,
		schema: catalog.NewPostgresClient(pool),
		prober: probe.PoolProber{Pool: pool},
		writer: emit.FileWriter{},
		log:    logger,
	}
	return p, pool.Close, nil
}

// quoteIdents renders search path entries as a comma-separated list of
// double-quoted identifiers, guarding against names that collide with
// reserved words or contain upper-case letters.
func quoteIdents(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = `"` + strings.ReplaceAll(n, `"`, `""`) + `"`
	}
	return strings.Join(out, ", ")
}

func newLogger(cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func main() {
	log.SetPrefix("typesql: ")
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
