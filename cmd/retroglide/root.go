package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thurmanmarka/retroglide/internal/app"
	"github.com/thurmanmarka/retroglide/internal/config"
	"github.com/thurmanmarka/retroglide/internal/render"
)

// globalFlags holds the persistent flags that are not config keys.
var globalFlags struct {
	Config  string
	Out     string
	Refresh bool
	Verbose bool
	Debug   bool
}

var (
	v      *viper.Viper
	cfg    config.Config
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "retroglide",
	Short: "retroglide: retrograde and direct stations of the planets",
	Long: `retroglide finds the instants at which a body's apparent geocentric motion
along the ecliptic turns retrograde or direct, to the second.

Longitudes come from a built-in ephemeris or from the JPL Horizons API, and
are cached in a local bbolt database.

Quick start:
  retroglide station mercury             # next retrograde station of Mercury
  retroglide periods venus --to 2030-01-01
  retroglide config init                 # write .retroglide.toml`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// optionalConfig marks commands that run even when --config names a file
// that does not exist yet.
const optionalConfig = "optional-config"

// configKeys maps persistent flags onto config keys.
var configKeys = map[string]string{
	"format":      "format",
	"oracle":      "oracle",
	"db":          "db",
	"no-cache":    "no_cache",
	"timeout":     "timeout",
	"rate":        "rate",
	"concurrency": "concurrency",
	"log-level":   "log_level",
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.Config, "config", "",
		"config file (default .retroglide.toml in the working or home directory)")
	pf.String("format", "", "output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.String("oracle", "", "longitude source: builtin|horizons (default: builtin)")
	pf.String("db", "", "cache database path (default ~/.retroglide/retroglide.db)")
	pf.Bool("no-cache", false, "do not read or write the cache database")
	pf.BoolVar(&globalFlags.Refresh, "refresh", false,
		"recompute searches instead of answering from cached results")
	pf.Duration("timeout", 0, "Horizons request timeout (e.g. 30s, 2m)")
	pf.Float64("rate", 0, "max Horizons requests per second (default: 2)")
	pf.Int("concurrency", 0, "max bodies searched in parallel (default: 4)")
	pf.String("log-level", "", "debug|info|warn|error (default: warn)")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"log at info level and show cache/timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log search phases and oracle requests")
}

// loadConfig resolves config from file, environment and flags, and sets up
// logging. It runs before every command.
func loadConfig(cmd *cobra.Command, _ []string) error {
	v = config.New(globalFlags.Config)
	for flag, key := range configKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	explicit := globalFlags.Config != "" && cmd.Annotations[optionalConfig] == ""
	if err := config.Read(v, explicit); err != nil {
		return err
	}

	var err error
	if cfg, err = config.Load(v); err != nil {
		return err
	}

	level := cfg.SlogLevel()
	switch {
	case globalFlags.Debug:
		level = slog.LevelDebug
	case globalFlags.Verbose && level > slog.LevelInfo:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if f := v.ConfigFileUsed(); f != "" {
		logger.Debug("config loaded", "file", f)
	}
	return nil
}

// buildDeps constructs the dependency container from the resolved config.
// Callers must Close it.
func buildDeps(ctx context.Context) (*app.Deps, error) {
	d, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	d.Refresh = globalFlags.Refresh
	return d, nil
}

// emit renders report in the configured format, then the footer on stderr.
func emit(d *app.Deps, report *render.Report, started time.Time) error {
	if err := render.RenderTo(globalFlags.Out, report, strings.ToLower(cfg.Format)); err != nil {
		return err
	}
	if globalFlags.Verbose && d != nil {
		report.Warnings = append(report.Warnings, d.Summary())
	}
	render.PrintFooter(os.Stderr, report, globalFlags.Verbose, time.Since(started))
	return nil
}

// closeDeps closes d, reporting a close failure only if nothing else failed.
func closeDeps(d *app.Deps, err *error) {
	if cerr := d.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
