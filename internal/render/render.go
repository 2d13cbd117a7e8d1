// Package render converts Reports into human-readable or machine-parseable
// output. Each format is a separate function; Render dispatches on the
// format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Report is one command's output. Headers and Rows drive the tabular
// formats; Items drive JSON and JSONL.
type Report struct {
	Kind        string     `json:"kind"`
	GeneratedAt time.Time  `json:"generated_at"`
	Headers     []string   `json:"-"`
	Rows        [][]string `json:"-"`
	Items       []any      `json:"items"`
	Warnings    []string   `json:"warnings,omitempty"`
}

// NewReport returns an empty report stamped with the current time.
func NewReport(kind string, headers ...string) *Report {
	return &Report{Kind: kind, GeneratedAt: time.Now().UTC(), Headers: headers}
}

// Add appends one record: its table row and its structured form.
func (r *Report) Add(item any, row ...string) {
	r.Items = append(r.Items, item)
	r.Rows = append(r.Rows, row)
}

// Render writes report to w in the specified format.
func Render(w io.Writer, report *Report, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, report)
	case FormatJSONL:
		return renderJSONL(w, report)
	case FormatCSV:
		return renderDelimited(w, report, ',')
	case FormatTSV:
		return renderDelimited(w, report, '\t')
	case FormatMD:
		return renderMarkdown(w, report)
	default:
		return renderTable(w, report)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, report *Report, format string) error {
	if path == "" {
		return Render(os.Stdout, report, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, report, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func renderJSONL(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	for _, item := range report.Items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, report *Report) error {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(report.Headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)

	tw.AppendBulk(report.Rows)
	tw.Render()
	return nil
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, report *Report, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	header := make([]string, len(report.Headers))
	for i, h := range report.Headers {
		header[i] = strings.ToLower(strings.ReplaceAll(h, " ", "_"))
	}
	_ = cw.Write(header)
	for _, row := range report.Rows {
		_ = cw.Write(row)
	}

	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, report *Report) error {
	fmt.Fprintf(w, "| %s |\n", strings.Join(report.Headers, " | "))
	seps := make([]string, len(report.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(seps, "|"))

	for _, row := range report.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = mdEscape(c)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings, and the generation stamp when verbose.
func PrintFooter(w io.Writer, report *Report, verbose bool, elapsed time.Duration) {
	for _, warn := range report.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		fmt.Fprintf(w, "\n[%s • %d items • %dms]\n",
			report.GeneratedAt.Format(time.RFC3339),
			len(report.Items),
			elapsed.Milliseconds(),
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// FormatDMS renders a longitude as degrees, arcminutes and arcseconds,
// e.g. 237°38'16.8".
func FormatDMS(lon float64) string {
	if math.IsNaN(lon) {
		return "."
	}
	sign := ""
	if lon < 0 {
		sign = "-"
		lon = -lon
	}
	tenths := int64(math.Round(lon * 36000)) // tenths of an arcsecond
	deg := tenths / 36000
	tenths -= deg * 36000
	arcmin := tenths / 600
	tenths -= arcmin * 600
	return fmt.Sprintf("%s%d°%02d'%02d.%d\"", sign, deg, arcmin, tenths/10, tenths%10)
}

// FormatDegrees renders a value with six decimals.
func FormatDegrees(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// FormatTime renders an instant as RFC 3339 UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
