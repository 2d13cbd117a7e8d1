package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thurmanmarka/retroglide"
	"github.com/thurmanmarka/retroglide/internal/render"
)

var phaseFlags struct {
	time string
	tz   string
}

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Moon phase and illumination",
	Example: `  retroglide phase
  retroglide phase --time 2025-05-12T16:56 --tz UTC`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		started := time.Now()
		t, err := parseTime(phaseFlags.time, phaseFlags.tz)
		if err != nil {
			return err
		}

		phase, err := retroglide.MoonPhaseAt(t)
		if err != nil {
			return fmt.Errorf("MoonPhaseAt failed: %w", err)
		}

		trend := "waning"
		if phase.Waxing {
			trend = "waxing"
		}

		report := render.NewReport("phase", "TIME", "NAME", "ILLUMINATED", "ELONGATION", "TREND")
		report.Add(phase,
			phase.Time.Format(time.RFC3339),
			phase.Name,
			fmt.Sprintf("%.1f%%", phase.Fraction*100),
			fmt.Sprintf("%.2f°", phase.Elongation),
			trend,
		)
		return emit(nil, report, started)
	},
}

func init() {
	phaseCmd.Flags().StringVar(&phaseFlags.time, "time", "", "instant: RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD (default: now)")
	phaseCmd.Flags().StringVar(&phaseFlags.tz, "tz", "UTC", "IANA time zone name (e.g. America/Phoenix)")
	rootCmd.AddCommand(phaseCmd)
}
