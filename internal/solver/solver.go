// Package solver locates the instants at which a body's apparent motion
// reverses (stations) or first/last holds a regime (moments).
//
// It never computes positions itself. Everything it knows about a body
// comes from an Oracle, sampled at successively finer calendar units:
// day, then hour, then minute, then second.
package solver

import (
	"log/slog"
	"time"

	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// Oracle returns the apparent geocentric ecliptic longitude, in degrees, of
// the body identified by key at instant t.
//
// Implementations must be deterministic. The searcher calls them many
// times per query and returns their errors unchanged.
type Oracle interface {
	ApparentLongitude(key string, t time.Time) (float64, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(key string, t time.Time) (float64, error)

func (f OracleFunc) ApparentLongitude(key string, t time.Time) (float64, error) {
	return f(key, t)
}

// Query describes one moment or station search.
type Query struct {
	Body      string
	Time      time.Time
	Direction timeutil.Direction
	Regime    motion.Regime

	// Longitude, when set, is the already-known longitude at Time and
	// saves one oracle call.
	Longitude *float64
}

// Result is the outcome of every search operation.
type Result struct {
	Time       time.Time     `json:"time"`
	Longitude  float64       `json:"longitude"`
	Delta      float64       `json:"delta"` // signed movement from Time to Time + 1 Resolution
	Resolution timeutil.Unit `json:"resolution"`
}

// Movement classifies Delta.
func (r Result) Movement() motion.Movement {
	return motion.Classify(r.Delta)
}

// Searcher runs moment and station searches against an Oracle.
// A Searcher holds no per-query state and is safe for concurrent use if
// its Oracle is.
type Searcher struct {
	oracle Oracle
	log    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger used for debug tracing of search phases.
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Searcher backed by oracle.
func New(oracle Oracle, opts ...Option) *Searcher {
	s := &Searcher{oracle: oracle, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Oracle returns the oracle the searcher samples.
func (s *Searcher) Oracle() Oracle {
	return s.oracle
}

// MovementAt samples the movement of body over the second following t.
// The returned Result has Resolution Second.
func (s *Searcher) MovementAt(body string, t time.Time, known *float64) (Result, error) {
	tr := s.newTrack(body, timeutil.Truncate(t, timeutil.Second), known)
	smp, err := tr.movement(tr.start, timeutil.Second)
	if err != nil {
		return Result{}, err
	}
	return smp.result(timeutil.Second), nil
}

func validate(q Query) error {
	if err := q.Direction.Validate(); err != nil {
		return err
	}
	return q.Regime.Validate()
}
