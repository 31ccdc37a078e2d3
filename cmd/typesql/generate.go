package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/typesql/typesql/catalog"
	"github.com/typesql/typesql/config"
	"github.com/typesql/typesql/emit"
	"github.com/typesql/typesql/infer"
	"github.com/typesql/typesql/internal/worker"
	"github.com/typesql/typesql/probe"
)

// pipeline wires one project's config to the four analysis packages. It is
// small and dependency-injected on purpose, so generateOnce can be exercised
// without a live database.
type pipeline struct {
	cfg    config.Config
	schema catalog.SchemaClient
	prober probe.Prober
	writer emit.Writer
	log    zerolog.Logger
}

// generateOnce walks cfg.Queries, analyzes every matching .sql file and
// writes one "<name>_gen.go" per file. Files are processed concurrently
// through a bounded worker pool; one file's failure does not stop the rest
// from generating — matching the resume-on-error stance package infer
// itself takes toward a single malformed statement.
func (p *pipeline) generateOnce(ctx context.Context, maxConcurrency int) error {
	files, err := expandQueryGlobs(p.cfg.Queries)
	if err != nil {
		return fmt.Errorf("typesql: expand queries globs: %w", err)
	}
	if len(files) == 0 {
		p.log.Warn().Strs("patterns", p.cfg.Queries).Msg("typesql: no .sql files matched")
		return nil
	}

	jobs := make([]worker.Job[struct{}], 0, len(files))
	for _, f := range files {
		f := f
		jobs = append(jobs, worker.Job[struct{}]{
			Name: f,
			Run: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, p.generateFile(ctx, f)
			},
		})
	}

	results := worker.Run(ctx, maxConcurrency, jobs)
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			p.log.Error().Err(r.Err).Str("file", r.Name).Msg("typesql: failed to generate")
		}
	}
	if failed > 0 {
		return fmt.Errorf("typesql: %d of %d files failed to generate", failed, len(files))
	}
	return nil
}

// generateFile analyzes one .sql file and writes its generated Go source
// into cfg.Output.Dir.
func (p *pipeline) generateFile(ctx context.Context, path string) error {
	sqlBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	sqlText := strings.TrimSpace(string(sqlBytes))
	if sqlText == "" {
		return nil
	}

	raw, err := p.prober.Probe(ctx, sqlText)
	if err != nil {
		return fmt.Errorf("probe %q: %w", path, err)
	}

	desc, err := infer.Infer(ctx, p.schema, sqlText, raw, p.log)
	if err != nil {
		return fmt.Errorf("infer %q: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	src, err := emit.Generate(p.cfg.Output.Package, []emit.Statement{{Name: name, Desc: desc}})
	if err != nil {
		return fmt.Errorf("emit %q: %w", path, err)
	}

	outPath := filepath.Join(p.cfg.Output.Dir, name+"_gen.go")
	if err := p.writer.WriteFile(outPath, src); err != nil {
		return fmt.Errorf("write %q: %w", outPath, err)
	}
	return nil
}

func expandQueryGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !strings.HasSuffix(m, ".sql") || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}
