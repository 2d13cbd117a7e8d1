package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/thurmanmarka/retroglide"
	"github.com/thurmanmarka/retroglide/internal/render"
)

var surveyFlags struct {
	time string
	tz   string
}

var surveyCmd = &cobra.Command{
	Use:   "survey [body...]",
	Short: "Movement and next stations of several bodies at once",
	Long: `survey reports, for each body, its movement at --time and its next
retrograde and direct stations. Bodies default to the configured list and
are searched in parallel (--concurrency).`,
	Example: `  retroglide survey
  retroglide survey mercury venus mars --time 2024-04-01`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		started := time.Now()
		t, err := parseTime(surveyFlags.time, surveyFlags.tz)
		if err != nil {
			return err
		}
		bodies := args
		if len(bodies) == 0 {
			bodies = cfg.Bodies
		}

		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDeps(d, &err)

		rows, err := retroglide.Survey(cmd.Context(), d.Searcher, bodies, t, cfg.Concurrency)
		if err != nil {
			return err
		}

		report := render.NewReport("survey", "BODY", "MOVEMENT", "LONGITUDE", "NEXT RETROGRADE", "NEXT DIRECT")
		for _, r := range rows {
			report.Add(r,
				r.Body,
				r.Now.Movement().String(),
				render.FormatDMS(r.Now.Longitude),
				stationCell(r.NextRetrograde),
				stationCell(r.NextDirect),
			)
		}
		return emit(d, report, started)
	},
}

func stationCell(m *retroglide.Moment) string {
	if m == nil {
		return "-"
	}
	return render.FormatTime(m.Time)
}

func init() {
	surveyCmd.Flags().StringVar(&surveyFlags.time, "time", "", "survey instant (default: now)")
	surveyCmd.Flags().StringVar(&surveyFlags.tz, "tz", "UTC", "IANA time zone for --time")
	rootCmd.AddCommand(surveyCmd)
}
