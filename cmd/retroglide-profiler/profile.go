package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/thurmanmarka/retroglide"
	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/solver"
	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// reference is one parsed CSV row.
//
// CSV format:
//
//	body,kind,time[,longitude]
//	mercury,retrograde,2020-02-17T00:54:00Z,342.8897
//	mercury,direct,2020-03-10T03:49:00Z
//
// - kind is the regime the body turns into at the station
// - time is RFC 3339
// - longitude, when present, is compared too
type reference struct {
	line   int
	body   string
	regime motion.Regime
	at     time.Time
	lon    float64 // NaN when absent
}

func parseReference(line int, row []string) (reference, error) {
	if len(row) < 3 {
		return reference{}, fmt.Errorf("expected at least 3 columns (body,kind,time), got %d", len(row))
	}
	ref := reference{line: line, body: strings.ToLower(strings.TrimSpace(row[0])), lon: math.NaN()}

	var err error
	if ref.regime, err = motion.ParseRegime(strings.TrimSpace(row[1])); err != nil {
		return reference{}, err
	}
	if ref.at, err = time.Parse(time.RFC3339, strings.TrimSpace(row[2])); err != nil {
		return reference{}, fmt.Errorf("invalid time %q: %w", row[2], err)
	}
	if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
		if ref.lon, err = strconv.ParseFloat(strings.TrimSpace(row[3]), 64); err != nil {
			return reference{}, fmt.Errorf("invalid longitude %q: %w", row[3], err)
		}
	}
	return ref, nil
}

// outcome is the comparison for one reference.
type outcome struct {
	ref       reference
	got       solver.Result
	absErr    float64 // minutes
	signedErr float64 // minutes, ours - ref
	lonErr    float64 // degrees, NaN without a reference longitude
}

type summary struct {
	rows, skipped int
	abs, signed   stats
	lon           stats
}

// profiler recomputes reference stations.
type profiler struct {
	searcher *solver.Searcher
	lead     time.Duration
	log      *slog.Logger
}

// compare searches for the station starting lead before the reference
// instant, so the nearest station in the reference's regime is found.
func (p *profiler) compare(ref reference) (outcome, error) {
	if err := retroglide.CheckSearchable(ref.body); err != nil {
		return outcome{}, err
	}
	got, err := p.searcher.NextStation(solver.Query{
		Body:      ref.body,
		Time:      ref.at.Add(-p.lead),
		Direction: timeutil.Next,
		Regime:    ref.regime,
	})
	if err != nil {
		return outcome{}, err
	}

	o := outcome{
		ref:       ref,
		got:       got,
		absErr:    diffMinutes(got.Time, ref.at),
		signedErr: diffMinutesSigned(got.Time, ref.at),
		lonErr:    math.NaN(),
	}
	if !math.IsNaN(ref.lon) {
		o.lonErr = motion.AngularDifference(ref.lon, got.Longitude)
	}
	return o, nil
}

// run compares every record, skipping a leading header and bad rows.
// Each outcome is passed to each if non-nil.
func (p *profiler) run(records [][]string, each func(outcome)) summary {
	var sum summary

	startIdx := 0
	if len(records) > 0 && len(records[0]) >= 1 && strings.EqualFold(strings.TrimSpace(records[0][0]), "body") {
		startIdx = 1
	}

	for i := startIdx; i < len(records); i++ {
		sum.rows++

		ref, err := parseReference(i+1, records[i])
		if err != nil {
			p.log.Warn("skipping row", "row", i+1, "error", err)
			sum.skipped++
			continue
		}
		o, err := p.compare(ref)
		if err != nil {
			p.log.Warn("skipping row", "row", i+1, "body", ref.body, "error", err)
			sum.skipped++
			continue
		}

		sum.abs.add(o.absErr)
		sum.signed.add(o.signedErr)
		sum.lon.add(math.Abs(o.lonErr))
		if each != nil {
			each(o)
		}
	}
	return sum
}

func (s summary) print(w io.Writer, source string) {
	fmt.Fprintln(w, "=== retroglide profiler summary ===")
	fmt.Fprintf(w, "Oracle: %s\n", source)
	fmt.Fprintf(w, "Rows:   %d (processed), %d skipped\n", s.rows-s.skipped, s.skipped)

	if s.abs.count == 0 {
		fmt.Fprintln(w, "No valid rows to compute stats.")
		return
	}

	fmt.Fprintln(w, "\nStation error (minutes):")
	fmt.Fprintf(w, "  count: %d\n", s.abs.count)
	fmt.Fprintf(w, "  min:   %.3f\n", s.abs.min)
	fmt.Fprintf(w, "  max:   %.3f\n", s.abs.max)
	fmt.Fprintf(w, "  avg:   %.3f\n", s.abs.mean())

	fmt.Fprintln(w, "\nStation signed error (minutes, our - ref):")
	fmt.Fprintf(w, "  count: %d\n", s.signed.count)
	fmt.Fprintf(w, "  min:   %.3f\n", s.signed.min)
	fmt.Fprintf(w, "  max:   %.3f\n", s.signed.max)
	fmt.Fprintf(w, "  mean:  %.3f\n", s.signed.mean())

	if s.lon.count > 0 {
		fmt.Fprintln(w, "\nLongitude error (arcseconds):")
		fmt.Fprintf(w, "  count: %d\n", s.lon.count)
		fmt.Fprintf(w, "  max:   %.1f\n", s.lon.max*3600)
		fmt.Fprintf(w, "  avg:   %.1f\n", s.lon.mean()*3600)
	}
}

var outHeader = []string{"line", "body", "kind", "ref_time", "got_time", "err_min", "signed_min", "ref_lon", "got_lon", "lon_err_arcsec"}

func (o outcome) record() []string {
	lonErr, refLon := "", ""
	if !math.IsNaN(o.lonErr) {
		lonErr = fmt.Sprintf("%.3f", o.lonErr*3600)
		refLon = fmt.Sprintf("%.6f", o.ref.lon)
	}
	return []string{
		strconv.Itoa(o.ref.line),
		o.ref.body,
		o.ref.regime.String(),
		o.ref.at.UTC().Format(time.RFC3339),
		o.got.Time.UTC().Format(time.RFC3339),
		fmt.Sprintf("%.6f", o.absErr),
		fmt.Sprintf("%.6f", o.signedErr),
		refLon,
		fmt.Sprintf("%.6f", o.got.Longitude),
		lonErr,
	}
}
