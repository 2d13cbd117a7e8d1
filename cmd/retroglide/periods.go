package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thurmanmarka/retroglide"
	"github.com/thurmanmarka/retroglide/internal/render"
)

var periodsFlags struct {
	from string
	to   string
	tz   string
}

var periodsCmd = &cobra.Command{
	Use:   "periods <body>",
	Short: "Retrograde periods of a body over a date range",
	Example: `  retroglide periods mercury --from 2020-01-01 --to 2021-01-01
  retroglide periods mars --to 2030-01-01 --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		started := time.Now()
		body := strings.ToLower(args[0])

		from, err := parseTime(periodsFlags.from, periodsFlags.tz)
		if err != nil {
			return err
		}
		to := from.AddDate(1, 0, 0)
		if periodsFlags.to != "" {
			if to, err = parseTime(periodsFlags.to, periodsFlags.tz); err != nil {
				return err
			}
		}

		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDeps(d, &err)

		periods, err := retroglide.RetrogradePeriods(d.Searcher, body, from, to)
		if err != nil {
			return err
		}

		report := render.NewReport("periods", "BODY", "RETROGRADE", "AT", "DIRECT", "AT", "DAYS")
		for _, p := range periods {
			report.Add(p,
				p.Body,
				render.FormatTime(p.Start.Time),
				render.FormatDMS(p.Start.Longitude),
				render.FormatTime(p.End.Time),
				render.FormatDMS(p.End.Longitude),
				fmt.Sprintf("%.1f", p.Duration().Hours()/24),
			)
		}
		if len(periods) == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s has no retrograde period in range", body))
		}
		return emit(d, report, started)
	},
}

func init() {
	periodsCmd.Flags().StringVar(&periodsFlags.from, "from", "", "range start (default: now)")
	periodsCmd.Flags().StringVar(&periodsFlags.to, "to", "", "range end (default: one year after --from)")
	periodsCmd.Flags().StringVar(&periodsFlags.tz, "tz", "UTC", "IANA time zone for --from and --to")
	rootCmd.AddCommand(periodsCmd)
}
