package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// File is the on-disk shape of .retroglide.toml. Durations are strings so
// the file stays human-editable.
type File struct {
	Oracle        string       `toml:"oracle" comment:"builtin or horizons"`
	DB            string       `toml:"db" comment:"bbolt database used to cache longitudes and results"`
	NoCache       bool         `toml:"no_cache"`
	Format        string       `toml:"format" comment:"table, json, jsonl, csv, tsv or md"`
	Timeout       string       `toml:"timeout"`
	Rate          float64      `toml:"rate" comment:"Horizons requests per second"`
	Concurrency   int          `toml:"concurrency"`
	LogLevel      string       `toml:"log_level" comment:"debug, info, warn or error"`
	Bodies        []string     `toml:"bodies" comment:"bodies surveyed and watched by default"`
	WatchInterval string       `toml:"watch_interval"`
	MetricsAddr   string       `toml:"metrics_addr" comment:"serve /metrics here while watching, e.g. :9090"`
	Horizons      HorizonsFile `toml:"horizons"`
}

// HorizonsFile is the [horizons] table.
type HorizonsFile struct {
	BaseURL    string `toml:"base_url"`
	MaxRetries int    `toml:"max_retries"`
	Backoff    string `toml:"backoff"`
}

// File converts c to its on-disk shape.
func (c Config) File() File {
	return File{
		Oracle:        c.Oracle,
		DB:            c.DB,
		NoCache:       c.NoCache,
		Format:        c.Format,
		Timeout:       c.Timeout.String(),
		Rate:          c.Rate,
		Concurrency:   c.Concurrency,
		LogLevel:      c.LogLevel,
		Bodies:        c.Bodies,
		WatchInterval: c.WatchInterval.String(),
		MetricsAddr:   c.MetricsAddr,
		Horizons: HorizonsFile{
			BaseURL:    c.Horizons.BaseURL,
			MaxRetries: c.Horizons.MaxRetries,
			Backoff:    c.Horizons.Backoff.String(),
		},
	}
}

// Marshal renders f as TOML.
func Marshal(f File) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes f to path, creating parent directories. An existing
// file is left alone unless overwrite is set.
func WriteFile(path string, f File, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := Marshal(f)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
