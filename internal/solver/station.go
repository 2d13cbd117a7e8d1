package solver

import (
	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// occupancy says whether the query instant already lies in the target regime.
type occupancy int

const (
	outside occupancy = iota
	inside
)

type stationState struct {
	occupancy occupancy
	direction timeutil.Direction
}

// leg is one moment search within a station search. Each leg starts where
// the previous one ended.
type leg struct {
	direction timeutil.Direction
	opposite  bool // search for the opposite of the target regime
}

// stationPolicy maps the starting state to the moment searches that land on
// the station. Prev searches always finish with a forward leg so that they
// return the start of the enclosing occurrence, not its interior.
var stationPolicy = map[stationState][]leg{
	{inside, timeutil.Next}: {
		{timeutil.Next, true},
		{timeutil.Next, false},
	},
	{inside, timeutil.Prev}: {
		{timeutil.Prev, true},
		{timeutil.Next, false},
	},
	{outside, timeutil.Next}: {
		{timeutil.Next, false},
	},
	{outside, timeutil.Prev}: {
		{timeutil.Prev, false},
		{timeutil.Prev, true},
		{timeutil.Next, false},
	},
}

// NextStation finds the next instant, in q.Direction from q.Time, at which
// the body's motion turns into q.Regime.
//
// When the body is already in q.Regime at q.Time the current occurrence is
// skipped first: Next lands on the following occurrence, Prev on the start
// of the current one.
//
// Like NextMoment, NextStation does not return for bodies that never
// enter q.Regime.
func (s *Searcher) NextStation(q Query) (Result, error) {
	if err := validate(q); err != nil {
		return Result{}, err
	}

	start := timeutil.Truncate(q.Time, timeutil.Second)
	tr := s.newTrack(q.Body, start, q.Longitude)

	cur, err := tr.movement(start, timeutil.Second)
	if err != nil {
		return Result{}, err
	}

	state := stationState{occupancy: outside, direction: q.Direction}
	if q.Regime.Matches(cur.delta) {
		state.occupancy = inside
	}

	res := cur
	for _, l := range stationPolicy[state] {
		if res, err = tr.moment(res.at, l.direction, l.regime(q.Regime)); err != nil {
			return Result{}, err
		}
	}

	s.log.Debug("station found",
		"body", q.Body, "direction", q.Direction, "regime", q.Regime, "at", res.at)
	return res.result(timeutil.Second), nil
}

// regime is the regime the leg searches for, given the station's target.
func (l leg) regime(target motion.Regime) motion.Regime {
	if l.opposite {
		return target.Opposite()
	}
	return target
}
