package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thurmanmarka/retroglide"
	"github.com/thurmanmarka/retroglide/internal/app"
	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/render"
	"github.com/thurmanmarka/retroglide/internal/solver"
	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// searchFlags are shared by the moment and station commands.
type searchFlags struct {
	time      string
	tz        string
	direction string
	regime    string
}

func (f *searchFlags) register(cmd *cobra.Command, defaultRegime string) {
	cmd.Flags().StringVar(&f.time, "time", "", "start instant: RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD (default: now)")
	cmd.Flags().StringVar(&f.tz, "tz", "UTC", "IANA time zone for --time")
	cmd.Flags().StringVar(&f.direction, "direction", "next", "scan direction: next|prev")
	cmd.Flags().StringVar(&f.regime, "regime", defaultRegime, "target regime: direct|retrograde")
}

func (f *searchFlags) query(body string) (solver.Query, error) {
	t, err := parseTime(f.time, f.tz)
	if err != nil {
		return solver.Query{}, err
	}
	dir, err := timeutil.ParseDirection(f.direction)
	if err != nil {
		return solver.Query{}, err
	}
	regime, err := motion.ParseRegime(f.regime)
	if err != nil {
		return solver.Query{}, err
	}
	return solver.Query{Body: body, Time: t, Direction: dir, Regime: regime}, nil
}

var (
	momentFlags  searchFlags
	stationFlags searchFlags
)

var longitudeTime, longitudeTZ string

var longitudeCmd = &cobra.Command{
	Use:   "longitude <body>...",
	Short: "Apparent longitude and movement of one or more bodies",
	Example: `  retroglide longitude mercury venus
  retroglide longitude moon --time 2025-05-12T16:56`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		started := time.Now()
		t, err := parseTime(longitudeTime, longitudeTZ)
		if err != nil {
			return err
		}

		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDeps(d, &err)

		report := render.NewReport("longitude", "BODY", "TIME", "LONGITUDE", "DMS", "DELTA", "MOVEMENT")
		for _, body := range args {
			res, err := d.Searcher.MovementAt(body, t, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", body, err)
			}
			report.Add(resultItem{Body: body, Result: res, Movement: res.Movement()}, resultRow(body, res)...)
		}
		return emit(d, report, started)
	},
}

var momentCmd = &cobra.Command{
	Use:   "moment <body>",
	Short: "First (or last) second at which a body moves in a regime",
	Long: `moment finds the first second at or after --time (with --direction next)
at which the body's movement matches --regime. With --direction prev it
finds the last such second before the body left the opposite regime.`,
	Example: `  retroglide moment mercury --regime retrograde
  retroglide moment mars --direction prev --regime direct --time 2020-10-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd, app.KindMoment, args[0], &momentFlags)
	},
}

var stationCmd = &cobra.Command{
	Use:   "station <body>",
	Short: "Next or previous station into a regime",
	Long: `station finds the instant at which the body turns into --regime, in the
direction of --direction. A body already in the regime at --time is searched
past its current period.`,
	Example: `  retroglide station mercury
  retroglide station mercury --regime direct
  retroglide station jupiter --direction prev --time 2024-01-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd, app.KindStation, args[0], &stationFlags)
	},
}

func runSearch(cmd *cobra.Command, kind, body string, f *searchFlags) (err error) {
	started := time.Now()
	if err := retroglide.CheckSearchable(body); err != nil {
		return err
	}
	q, err := f.query(strings.ToLower(body))
	if err != nil {
		return err
	}

	d, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDeps(d, &err)

	res, err := d.Search(kind, q)
	if err != nil {
		return err
	}

	report := render.NewReport(kind, "BODY", "TIME", "LONGITUDE", "DMS", "DELTA", "MOVEMENT")
	report.Add(resultItem{Body: q.Body, Result: res, Movement: res.Movement()}, resultRow(q.Body, res)...)
	return emit(d, report, started)
}

// resultItem is the structured form of one result row.
type resultItem struct {
	Body string `json:"body"`
	solver.Result
	Movement motion.Movement `json:"movement"`
}

func resultRow(body string, r solver.Result) []string {
	return []string{
		body,
		render.FormatTime(r.Time),
		render.FormatDegrees(r.Longitude),
		render.FormatDMS(r.Longitude),
		fmt.Sprintf("%+.8f", r.Delta),
		r.Movement().String(),
	}
}

func init() {
	longitudeCmd.Flags().StringVar(&longitudeTime, "time", "", "instant: RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD (default: now)")
	longitudeCmd.Flags().StringVar(&longitudeTZ, "tz", "UTC", "IANA time zone for --time")
	momentFlags.register(momentCmd, "retrograde")
	stationFlags.register(stationCmd, "retrograde")

	rootCmd.AddCommand(longitudeCmd, momentCmd, stationCmd)
}
