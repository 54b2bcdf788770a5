// Package config loads report settings from a CUE or YAML file and
// validates them against an embedded CUE schema.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/maturing/internal/revlog"
)

//go:embed schema.cue
var schemaCUE string

// Config holds the report settings.
type Config struct {
	Database         string `json:"database,omitempty" yaml:"database,omitempty"`
	ChunkDays        int64  `json:"chunk_days" yaml:"chunk_days"`
	Window           int64  `json:"window" yaml:"window"`
	RolloverHour     int    `json:"rollover_hour" yaml:"rollover_hour"`
	CheckConsistency bool   `json:"check_consistency" yaml:"check_consistency"`
	Deck             int64  `json:"deck,omitempty" yaml:"deck,omitempty"`
}

// Default returns the settings used when no file is given: full history
// in 30-day chunks with the consistency check on. Kept equal to the
// schema defaults.
func Default() Config {
	return Config{
		ChunkDays:        30,
		Window:           0,
		RolloverHour:     4,
		CheckConsistency: true,
	}
}

// Load reads a .cue, .yaml or .yml file and validates it.
// Fields the file leaves out take their schema defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var src any
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		src = data
	case ".yaml", ".yml":
		m := map[string]any{}
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		src = m
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (want .cue, .yaml or .yml)", ext)
	}

	cfg, err := decode(src)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// decode unifies src (CUE source bytes, a decoded YAML map, or nil) with
// the schema and extracts the concrete settings.
func decode(src any) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	value := schema.LookupPath(cue.ParsePath("#Config"))

	switch s := src.(type) {
	case nil:
	case []byte:
		file := ctx.CompileBytes(s)
		if err := file.Err(); err != nil {
			return Config{}, fmt.Errorf("compile: %w", err)
		}
		value = value.Unify(file)
	default:
		value = value.Unify(ctx.Encode(s))
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, nil
}

// Scope returns the filter for the configured deck, or the zero Filter.
func (c Config) Scope() revlog.Filter {
	if c.Deck == 0 {
		return revlog.Filter{}
	}
	return revlog.Filter{Clause: "cards.did = ?", Args: []any{c.Deck}}
}

// Cutoff returns the end of the current study day: the next time the clock
// reaches RolloverHour, in now's location.
func (c Config) Cutoff(now time.Time) time.Time {
	y, m, d := now.Date()
	cut := time.Date(y, m, d, c.RolloverHour, 0, 0, 0, now.Location())
	if !cut.After(now) {
		cut = cut.AddDate(0, 0, 1)
	}
	return cut
}

// Query builds the chunk query for a report made at now.
func (c Config) Query(now time.Time) revlog.ChunkQuery {
	return revlog.ChunkQuery{
		Cutoff:    c.Cutoff(now).Unix(),
		ChunkDays: c.ChunkDays,
		Window:    c.Window,
		Scope:     c.Scope(),
	}
}
