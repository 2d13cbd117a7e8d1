// Package config holds retroglide's runtime configuration. Values come from
// .retroglide.toml, RETROGLIDE_* environment variables and CLI flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "RETROGLIDE"
	FileName       = ".retroglide"
	FileType       = "toml"
	OracleBuiltin  = "builtin"
	OracleHorizons = "horizons"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

var (
	formats   = []string{"table", "json", "jsonl", "csv", "tsv", "md"}
	oracles   = []string{OracleBuiltin, OracleHorizons}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// HorizonsConfig configures the remote oracle.
type HorizonsConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	MaxRetries int           `mapstructure:"max_retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
}

// Config holds all runtime configuration.
type Config struct {
	Oracle        string         `mapstructure:"oracle"`
	DB            string         `mapstructure:"db"`
	NoCache       bool           `mapstructure:"no_cache"`
	Format        string         `mapstructure:"format"`
	Timeout       time.Duration  `mapstructure:"timeout"`
	Rate          float64        `mapstructure:"rate"`
	Concurrency   int            `mapstructure:"concurrency"`
	LogLevel      string         `mapstructure:"log_level"`
	Bodies        []string       `mapstructure:"bodies"`
	WatchInterval time.Duration  `mapstructure:"watch_interval"`
	MetricsAddr   string         `mapstructure:"metrics_addr"`
	Horizons      HorizonsConfig `mapstructure:"horizons"`
}

// DefaultDBPath is ~/.retroglide/retroglide.db, or a relative path when
// the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".retroglide", "retroglide.db")
	}
	return filepath.Join(home, ".retroglide", "retroglide.db")
}

// SetDefaults installs the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("oracle", OracleBuiltin)
	v.SetDefault("db", DefaultDBPath())
	v.SetDefault("no_cache", false)
	v.SetDefault("format", "table")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate", 2.0)
	v.SetDefault("concurrency", 4)
	v.SetDefault("log_level", "warn")
	v.SetDefault("bodies", []string{"mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune", "pluto"})
	v.SetDefault("watch_interval", time.Minute)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("horizons.base_url", "https://ssd.jpl.nasa.gov/api/horizons.api")
	v.SetDefault("horizons.max_retries", 4)
	v.SetDefault("horizons.backoff", 500*time.Millisecond)
}

// New returns a viper instance with defaults and environment binding. If
// path is empty, .retroglide.toml is searched for in the working directory
// and then the home directory.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType(FileType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads the config file into v. A missing file is not an error
// unless it was named explicitly.
func Read(v *viper.Viper, explicit bool) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !explicit && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("reading config: %w", err)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	// Lists from the environment arrive comma-separated.
	cfg.Bodies = splitList(strings.Join(cfg.Bodies, ","))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func oneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q: want one of %s", ErrInvalid, field, value, strings.Join(allowed, ", "))
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if err := oneOf("oracle", c.Oracle, oracles); err != nil {
		return err
	}
	if err := oneOf("format", c.Format, formats); err != nil {
		return err
	}
	if err := oneOf("log_level", c.LogLevel, logLevels); err != nil {
		return err
	}
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalid, c.Timeout)
	case c.Rate <= 0:
		return fmt.Errorf("%w: rate must be positive, got %v", ErrInvalid, c.Rate)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalid, c.Concurrency)
	case c.WatchInterval < time.Second:
		return fmt.Errorf("%w: watch_interval must be at least 1s, got %s", ErrInvalid, c.WatchInterval)
	case !c.NoCache && c.DB == "":
		return fmt.Errorf("%w: db path is empty and caching is enabled", ErrInvalid)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
