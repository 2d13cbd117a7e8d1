// Package watch periodically samples the apparent movement of a set of
// bodies and reports when one of them changes direction.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/thurmanmarka/retroglide/internal/metrics"
	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/solver"
)

// DefaultInterval is the sampling period when none is configured.
const DefaultInterval = time.Minute

// Event is one body's movement at one tick.
type Event struct {
	Body      string          `json:"body"`
	Time      time.Time       `json:"time"`
	Longitude float64         `json:"longitude"`
	Delta     float64         `json:"delta"`
	Movement  motion.Movement `json:"movement"`

	// Changed is set when the movement differs from the previous tick's.
	Changed  bool             `json:"changed"`
	Previous *motion.Movement `json:"previous,omitempty"`
}

// Watcher samples movements on an interval. The body list may be replaced
// while it runs.
type Watcher struct {
	searcher *solver.Searcher
	interval time.Duration
	metrics  *metrics.Collector
	log      *slog.Logger

	mu     sync.Mutex
	bodies []string
	last   map[string]motion.Movement
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the sampling period.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithMetrics publishes each movement on the collector's gauge.
func WithMetrics(c *metrics.Collector) Option {
	return func(w *Watcher) { w.metrics = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New returns a Watcher over bodies.
func New(s *solver.Searcher, bodies []string, opts ...Option) *Watcher {
	w := &Watcher{
		searcher: s,
		interval: DefaultInterval,
		log:      slog.Default(),
		last:     make(map[string]motion.Movement),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.SetBodies(bodies)
	return w
}

// SetBodies replaces the watched bodies. History is kept for bodies that
// remain.
func (w *Watcher) SetBodies(bodies []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.bodies = append([]string(nil), bodies...)
	keep := make(map[string]motion.Movement, len(bodies))
	for _, b := range bodies {
		if m, ok := w.last[b]; ok {
			keep[b] = m
		}
	}
	w.last = keep
	w.log.Debug("watch list updated", "bodies", bodies)
}

// Bodies returns the current watch list.
func (w *Watcher) Bodies() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.bodies...)
}

// Tick samples every body at t.
func (w *Watcher) Tick(t time.Time) ([]Event, error) {
	bodies := w.Bodies()
	events := make([]Event, 0, len(bodies))

	for _, body := range bodies {
		res, err := w.searcher.MovementAt(body, t, nil)
		if err != nil {
			return events, err
		}
		ev := Event{
			Body:      body,
			Time:      res.Time,
			Longitude: res.Longitude,
			Delta:     res.Delta,
			Movement:  res.Movement(),
		}

		w.mu.Lock()
		prev, seen := w.last[body]
		w.last[body] = ev.Movement
		w.mu.Unlock()

		if seen && prev != ev.Movement {
			ev.Changed = true
			ev.Previous = &prev
			w.log.Info("movement changed",
				"body", body, "from", prev, "to", ev.Movement, "at", ev.Time)
		}
		if w.metrics != nil {
			w.metrics.SetMovement(body, ev.Movement)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Run ticks immediately and then every interval until ctx is done, passing
// each event to emit. It returns ctx.Err() or the first sampling error.
func (w *Watcher) Run(ctx context.Context, emit func(Event)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	now := time.Now()
	for {
		events, err := w.Tick(now)
		for _, ev := range events {
			emit(ev)
		}
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case now = <-ticker.C:
		}
	}
}
