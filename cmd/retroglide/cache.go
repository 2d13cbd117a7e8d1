package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/thurmanmarka/retroglide/internal/render"
	"github.com/thurmanmarka/retroglide/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the cache database",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Key counts and sizes per bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		started := time.Now()
		st, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats()
		if err != nil {
			return err
		}
		report := render.NewReport("cache", "BUCKET", "KEYS", "BYTES")
		for _, b := range stats {
			report.Add(b, b.Name, strconv.Itoa(b.Count), strconv.FormatInt(b.Bytes, 10))
		}
		if meta, err := st.Meta(); err == nil {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s: schema v%s, created %s", st.Path(), meta["schema_version"], meta["created_at"]))
		}
		return emit(nil, report, started)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [bucket]",
	Short: "Delete cached longitudes and results",
	Long:  `clear empties one bucket (longitudes or results) or, without arguments, all of them.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()

		if len(args) == 1 {
			if err := st.ClearBucket(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", args[0])
			return nil
		}
		if err := st.ClearAll(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cleared all buckets")
		return nil
	},
}

func openCache() (*store.Store, error) {
	if cfg.DB == "" {
		return nil, errors.New("no cache database configured (--db)")
	}
	return store.Open(cfg.DB)
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
