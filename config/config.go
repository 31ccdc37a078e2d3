// Package config loads typesql's project file: the connection the probe
// and catalog packages analyze queries against, which files to scan, and
// where/how to emit generated code.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the top-level shape of typesql.yaml.
type Config struct {
	// DSN is the libpq connection string used both to probe statements
	// (PREPARE/DESCRIBE) and to inspect the schema.
	DSN string `yaml:"dsn" validate:"required"`
	// SearchPath overrides the server's default search_path for
	// unqualified table resolution; empty means "use the server's own".
	SearchPath []string `yaml:"searchPath"`
	// Queries lists the glob patterns of .sql files to analyze.
	Queries []string `yaml:"queries" validate:"required"`
	Output  Output   `yaml:"output" validate:"required"`
	Log     Log      `yaml:"log"`
}

// Output controls the generated Go source.
type Output struct {
	Package string `yaml:"package" validate:"required"`
	Dir     string `yaml:"dir" validate:"required"`
}

// Log controls the structured logger shared by the CLI and the inference
// engine.
type Log struct {
	// Level is a zerolog level name: "debug", "info", "warn", "error".
	// Empty defaults to "info".
	Level string `yaml:"level"`
	// Pretty switches from JSON lines to zerolog's human-readable console
	// writer, the way a developer would want it on a terminal but never
	// in a CI log.
	Pretty bool `yaml:"pretty"`
}

// Load reads and validates the YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("typesql: read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("typesql: parse config %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("typesql: invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	if len(c.Queries) == 0 {
		return fmt.Errorf("queries must list at least one glob pattern")
	}
	if c.Output.Package == "" {
		return fmt.Errorf("output.package is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	return nil
}
