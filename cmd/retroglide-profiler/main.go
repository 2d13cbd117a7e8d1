// Command retroglide-profiler compares computed stations against a
// reference CSV and reports timing and longitude error statistics.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thurmanmarka/retroglide/internal/app"
	"github.com/thurmanmarka/retroglide/internal/config"
)

var flags struct {
	refCSV  string
	outCSV  string
	oracle  string
	noCache bool
	lead    time.Duration
	verbose bool
}

var rootCmd = &cobra.Command{
	Use:   "retroglide-profiler --refcsv stations.csv",
	Short: "Compare computed stations with reference values",
	Long: `retroglide-profiler reads reference stations (body,kind,time[,longitude]),
recomputes each one and prints error statistics in minutes.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runProfile,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.refCSV, "refcsv", "", "path to reference CSV file (body,kind,time[,longitude])")
	f.StringVar(&flags.outCSV, "outcsv", "", "optional path to write per-row error CSV")
	f.StringVar(&flags.oracle, "oracle", "", "longitude source: builtin|horizons (default from config)")
	f.BoolVar(&flags.noCache, "no-cache", false, "do not use the cache database")
	f.DurationVar(&flags.lead, "lead", 10*24*time.Hour, "start each search this long before the reference instant")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "print per-row errors instead of only the summary")
	_ = rootCmd.MarkFlagRequired("refcsv")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runProfile(cmd *cobra.Command, _ []string) (err error) {
	v := config.New("")
	if err := config.Read(v, false); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if flags.oracle != "" {
		cfg.Oracle = flags.oracle
	}
	cfg.NoCache = cfg.NoCache || flags.noCache
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	d, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	f, err := os.Open(flags.refCSV)
	if err != nil {
		return fmt.Errorf("failed to open refcsv %q: %w", flags.refCSV, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // allow variable, we validate
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return errors.New("empty CSV file")
	}

	var outWriter *csv.Writer
	if flags.outCSV != "" {
		outFile, err := os.Create(flags.outCSV)
		if err != nil {
			return fmt.Errorf("failed to create outcsv %q: %w", flags.outCSV, err)
		}
		defer outFile.Close()

		outWriter = csv.NewWriter(outFile)
		defer outWriter.Flush()
		if err := outWriter.Write(outHeader); err != nil {
			return fmt.Errorf("failed to write outcsv header: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	p := &profiler{searcher: d.Searcher, lead: flags.lead, log: logger}
	sum := p.run(records, func(o outcome) {
		if flags.verbose {
			fmt.Fprintf(out, "%s %-8s %-10s err=%8.2f min (got=%s ref=%s)\n",
				o.ref.at.Format(time.DateOnly), o.ref.body, o.ref.regime, o.signedErr,
				o.got.Time.UTC().Format(time.RFC3339), o.ref.at.UTC().Format(time.RFC3339))
		}
		if outWriter != nil {
			if err := outWriter.Write(o.record()); err != nil {
				logger.Warn("failed to write outcsv", "row", o.ref.line, "error", err)
			}
		}
	})

	sum.print(out, cfg.Oracle)
	return nil
}
