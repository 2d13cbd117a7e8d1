// Package retroglide finds the instants at which a body's apparent
// geocentric motion along the ecliptic turns retrograde or direct.
//
// The search engine only ever asks one question: "what is the apparent
// longitude of this body at this instant?". Anything that can answer it
// (the built-in ephemeris, a remote service, a table) is a LongitudeOracle.
//
// Currently implemented:
//   - Station and moment searches to the second via NextStation / NextMoment
//   - Built-in Sun, Moon and planet longitudes (Mercury through Pluto)
//   - Retrograde periods over a date range, multi-body surveys
//   - Moon phase from ecliptic longitudes
package retroglide

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thurmanmarka/retroglide/internal/ephemeris"
	"github.com/thurmanmarka/retroglide/internal/moon"
	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/solver"
	"github.com/thurmanmarka/retroglide/internal/sun"
	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

type (
	// Direction is the direction of time a search scans in.
	Direction = timeutil.Direction

	// Unit is a calendar stepping unit; results always carry Second.
	Unit = timeutil.Unit

	// Regime is direct or retrograde apparent motion.
	Regime = motion.Regime

	// Movement classifies a single longitude delta.
	Movement = motion.Movement

	// Moment is the result of every search: the instant, the longitude
	// there, and the signed movement over the following second.
	Moment = solver.Result

	// Query describes one search.
	Query = solver.Query

	// Searcher runs station and moment searches against an oracle.
	Searcher = solver.Searcher

	// SearchOption configures a Searcher.
	SearchOption = solver.Option

	// LongitudeOracle answers apparent longitudes in degrees.
	LongitudeOracle = solver.Oracle

	// OracleFunc adapts a function to LongitudeOracle.
	OracleFunc = solver.OracleFunc

	// Body is a catalogued body.
	Body = ephemeris.Body
)

const (
	Next = timeutil.Next
	Prev = timeutil.Prev

	Date   = timeutil.Date
	Hour   = timeutil.Hour
	Minute = timeutil.Minute
	Second = timeutil.Second

	Direct     = motion.Direct
	Retrograde = motion.Retrograde

	MovementDirect     = motion.MovementDirect
	MovementRetrograde = motion.MovementRetrograde
	MovementStationary = motion.MovementStationary
)

var (
	// ErrNoRetrograde is returned when a station or moment search is asked
	// of a body that never retrogrades (Sun, Moon). Such a search would
	// never finish.
	ErrNoRetrograde = errors.New("body never retrogrades")

	ErrBodyNotFound     = ephemeris.ErrBodyNotFound
	ErrInvalidDirection = timeutil.ErrInvalidDirection
	ErrInvalidRegime    = motion.ErrInvalidRegime
)

// WithLogger sets the logger a Searcher traces its phases to.
var WithLogger = solver.WithLogger

// NewSearcher returns a Searcher backed by oracle.
func NewSearcher(oracle LongitudeOracle, opts ...SearchOption) *Searcher {
	return solver.New(oracle, opts...)
}

// Builtin returns the built-in ephemeris oracle.
func Builtin() LongitudeOracle {
	return ephemeris.Oracle{}
}

// Bodies returns the catalogue of built-in bodies.
func Bodies() []Body {
	return ephemeris.Bodies()
}

// CheckSearchable returns ErrNoRetrograde for catalogued bodies that never
// retrograde. Keys outside the catalogue pass, since a custom oracle may
// know them.
func CheckSearchable(key string) error {
	b, err := ephemeris.Lookup(key)
	if err != nil {
		return nil
	}
	if !b.Retrogrades {
		return fmt.Errorf("%w: %s", ErrNoRetrograde, b.Name)
	}
	return nil
}

func builtinSearcher() *Searcher {
	return solver.New(ephemeris.Oracle{})
}

// ApparentLongitude returns the built-in apparent geocentric ecliptic
// longitude of body at t, in degrees [0, 360).
func ApparentLongitude(body string, t time.Time) (float64, error) {
	return ephemeris.Oracle{}.ApparentLongitude(body, t)
}

// MovementAt returns the built-in movement of body over the second
// following t.
func MovementAt(body string, t time.Time) (Moment, error) {
	return builtinSearcher().MovementAt(body, t, nil)
}

// NextStation finds, with the built-in ephemeris, the next instant in dir
// from t at which body turns into regime.
func NextStation(body string, t time.Time, dir Direction, regime Regime) (Moment, error) {
	if err := CheckSearchable(body); err != nil {
		return Moment{}, err
	}
	return builtinSearcher().NextStation(Query{Body: body, Time: t, Direction: dir, Regime: regime})
}

// NextMoment finds, with the built-in ephemeris, the next instant in dir
// from t at which body's movement matches regime.
func NextMoment(body string, t time.Time, dir Direction, regime Regime) (Moment, error) {
	if err := CheckSearchable(body); err != nil {
		return Moment{}, err
	}
	return builtinSearcher().NextMoment(Query{Body: body, Time: t, Direction: dir, Regime: regime})
}

// Period is one retrograde loop: from the retrograde station to the
// following direct station.
type Period struct {
	Body  string `json:"body"`
	Start Moment `json:"start"`
	End   Moment `json:"end"`
}

// Duration is the length of the period.
func (p Period) Duration() time.Duration {
	return p.End.Time.Sub(p.Start.Time)
}

// RetrogradePeriods lists the retrograde periods of body that overlap
// [from, to), in order. A period in progress at from is included.
func RetrogradePeriods(s *Searcher, body string, from, to time.Time) ([]Period, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("empty range: %s is not after %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	if err := CheckSearchable(body); err != nil {
		return nil, err
	}

	now, err := s.MovementAt(body, from, nil)
	if err != nil {
		return nil, err
	}

	q := Query{Body: body, Time: from, Direction: Next, Regime: Retrograde}
	if now.Movement() == MovementRetrograde {
		q.Direction = Prev
	}
	start, err := s.NextStation(q)
	if err != nil {
		return nil, err
	}

	var periods []Period
	for start.Time.Before(to) {
		end, err := s.NextStation(Query{Body: body, Time: start.Time, Direction: Next, Regime: Direct, Longitude: &start.Longitude})
		if err != nil {
			return periods, err
		}
		periods = append(periods, Period{Body: body, Start: start, End: end})

		start, err = s.NextStation(Query{Body: body, Time: end.Time, Direction: Next, Regime: Retrograde, Longitude: &end.Longitude})
		if err != nil {
			return periods, err
		}
	}
	return periods, nil
}

// SurveyRow is one body's state at the survey instant.
type SurveyRow struct {
	Body           string  `json:"body"`
	Now            Moment  `json:"now"`
	NextRetrograde *Moment `json:"next_retrograde,omitempty"`
	NextDirect     *Moment `json:"next_direct,omitempty"`
}

// Survey reports, for each body, its movement at t and its next retrograde
// and direct stations. Bodies are searched concurrently, at most
// concurrency at a time; the searcher's oracle must be safe for concurrent
// use. Bodies that never retrograde get no stations.
//
// ctx is checked between searches only. A search already running finishes
// unless the oracle itself gives up when ctx is done, as a Horizons client
// bound to ctx does.
func Survey(ctx context.Context, s *Searcher, bodies []string, t time.Time, concurrency int) ([]SurveyRow, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	rows := make([]SurveyRow, len(bodies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, body := range bodies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			now, err := s.MovementAt(body, t, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", body, err)
			}
			row := SurveyRow{Body: body, Now: now}

			if CheckSearchable(body) == nil {
				retro, err := s.NextStation(Query{Body: body, Time: t, Direction: Next, Regime: Retrograde, Longitude: &now.Longitude})
				if err != nil {
					return fmt.Errorf("%s: %w", body, err)
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				direct, err := s.NextStation(Query{Body: body, Time: t, Direction: Next, Regime: Direct, Longitude: &now.Longitude})
				if err != nil {
					return fmt.Errorf("%s: %w", body, err)
				}
				row.NextRetrograde = &retro
				row.NextDirect = &direct
			}

			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// MoonPhase describes the illuminated fraction and qualitative phase
// of the Moon at a given instant.
type MoonPhase struct {
	Time       time.Time `json:"time"`       // the instant this phase is evaluated at
	Fraction   float64   `json:"fraction"`   // illuminated fraction [0..1], 0=new, 1=full
	Elongation float64   `json:"elongation"` // Sun-Moon angular separation in degrees [0..180]
	Waxing     bool      `json:"waxing"`     // true if waxing (illumination increasing), false if waning
	Name       string    `json:"name"`       // e.g. "New Moon", "Waxing Crescent", "First Quarter", ...
}

// MoonPhaseAt computes the Moon's illuminated fraction and qualitative phase
// from the ecliptic longitudes of the Sun and Moon.
func MoonPhaseAt(t time.Time) (MoonPhase, error) {
	utc := t.UTC()

	m := moon.EclipticApprox(utc)
	lambdaSun := sun.EclipticLongitude(utc)

	// Elongation ψ: cos ψ = cos β cos(λm - λs)
	cosPsi := timeutil.CosD(m.Lat) * timeutil.CosD(m.Lon-lambdaSun)
	cosPsi = math.Max(-1, math.Min(1, cosPsi))

	// Illuminated fraction k = (1 - cos ψ) / 2
	fraction := 0.5 * (1 - cosPsi)

	// Waxing while the Moon is east of the Sun.
	waxing := timeutil.Normalize360(m.Lon-lambdaSun) < 180.0

	return MoonPhase{
		Time:       t,
		Fraction:   fraction,
		Elongation: timeutil.Rad2Deg(math.Acos(cosPsi)),
		Waxing:     waxing,
		Name:       classifyMoonPhaseName(fraction, waxing),
	}, nil
}

func classifyMoonPhaseName(f float64, waxing bool) string {
	const (
		eps        = 0.01 // near 0 or 1
		quarterTol = 0.05 // fraction window around 0.5
	)

	switch {
	case f < eps:
		return "New Moon"
	case f > 1-eps:
		return "Full Moon"
	case math.Abs(f-0.5) < quarterTol:
		if waxing {
			return "First Quarter"
		}
		return "Last Quarter"
	case f < 0.5:
		if waxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if waxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}
