package solver

import (
	"time"

	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// refinements are the units used after the date phase, coarse to fine.
var refinements = []timeutil.Unit{timeutil.Hour, timeutil.Minute, timeutil.Second}

// sample is the movement of a body from at to at + 1 unit.
type sample struct {
	at    time.Time
	lon   float64
	delta float64
}

func (s sample) result(unit timeutil.Unit) Result {
	return Result{
		Time:       s.at,
		Longitude:  s.lon,
		Delta:      s.delta,
		Resolution: unit,
	}
}

// track carries the longitudes already fetched during one query, keyed by
// Unix second, so adjacent samples share their endpoints.
type track struct {
	*Searcher
	body  string
	start time.Time
	seen  map[int64]float64
}

func (s *Searcher) newTrack(body string, start time.Time, known *float64) *track {
	tr := &track{
		Searcher: s,
		body:     body,
		start:    start,
		seen:     make(map[int64]float64),
	}
	if known != nil {
		tr.seen[start.Unix()] = *known
	}
	return tr
}

func (tr *track) longitude(at time.Time) (float64, error) {
	key := at.Unix()
	if lon, ok := tr.seen[key]; ok {
		return lon, nil
	}
	lon, err := tr.oracle.ApparentLongitude(tr.body, at)
	if err != nil {
		return 0, err
	}
	tr.seen[key] = lon
	return lon, nil
}

// movement samples the body at at and one unit later.
func (tr *track) movement(at time.Time, unit timeutil.Unit) (sample, error) {
	lon, err := tr.longitude(at)
	if err != nil {
		return sample{}, err
	}
	ahead, err := timeutil.Advance(at, unit, timeutil.Next)
	if err != nil {
		return sample{}, err
	}
	next, err := tr.longitude(ahead)
	if err != nil {
		return sample{}, err
	}
	return sample{at: at, lon: lon, delta: motion.AngularDifference(lon, next)}, nil
}

// scan steps one unit at a time in dir, starting at from, and returns the
// first sample whose movement matches want. It does not return if the
// body never enters want.
func (tr *track) scan(from time.Time, unit timeutil.Unit, dir timeutil.Direction, want motion.Regime) (sample, error) {
	at := from
	for {
		smp, err := tr.movement(at, unit)
		if err != nil {
			return sample{}, err
		}
		if want.Matches(smp.delta) {
			return smp, nil
		}
		if at, err = timeutil.Advance(at, unit, dir); err != nil {
			return sample{}, err
		}
	}
}

// moment finds, scanning from from in dir, the instant at which the body's
// movement matches want. For Next that is the first matching second; for
// Prev it is the last matching second before from.
func (tr *track) moment(from time.Time, dir timeutil.Direction, want motion.Regime) (sample, error) {
	cur, err := tr.movement(from, timeutil.Second)
	if err != nil {
		return sample{}, err
	}
	if want.Matches(cur.delta) {
		return cur, nil
	}

	// The first day examined is the one lying in the scan direction.
	first := from
	if dir == timeutil.Prev {
		if first, err = timeutil.Advance(from, timeutil.Date, timeutil.Prev); err != nil {
			return sample{}, err
		}
	}
	hit, err := tr.scan(first, timeutil.Date, dir, want)
	if err != nil {
		return sample{}, err
	}
	tr.log.Debug("bracketed transition",
		"body", tr.body, "direction", dir, "regime", want, "unit", timeutil.Date, "at", hit.at)

	coarse := timeutil.Date
	for _, unit := range refinements {
		if hit, err = tr.refine(hit, coarse, unit, from, dir, want); err != nil {
			return sample{}, err
		}
		tr.log.Debug("bracketed transition",
			"body", tr.body, "direction", dir, "regime", want, "unit", unit, "at", hit.at)
		coarse = unit
	}
	return hit, nil
}

// maxRewinds bounds how often one refinement restarts further out.
const maxRewinds = 4

// refine rescans, one unit at a time, the stretch around the coarse sample
// hit in which the transition lies, scanning in dir for want.
//
// Next starts one coarse step before hit. Prev starts two coarse steps after
// it, since the last matching unit can sit at the start of the non-matching
// coarse sample that follows hit. A match on the very first sample leaves
// the unit beyond it unchecked, so the scan restarts one coarse step further
// out. Anchors never cross from.
func (tr *track) refine(hit sample, coarse, unit timeutil.Unit, from time.Time, dir timeutil.Direction, want motion.Regime) (sample, error) {
	out := dir.Opposite()
	anchor := hit.at
	steps := 1
	if dir == timeutil.Prev {
		steps = 2
	}
	for range steps {
		var err error
		if anchor, err = timeutil.Advance(anchor, coarse, out); err != nil {
			return sample{}, err
		}
	}
	anchor, err := tr.clamp(timeutil.Truncate(anchor, unit), unit, from, dir)
	if err != nil {
		return sample{}, err
	}

	for rewinds := 0; ; rewinds++ {
		smp, err := tr.scan(anchor, unit, dir, want)
		if err != nil {
			return sample{}, err
		}
		if !smp.at.Equal(anchor) || rewinds == maxRewinds {
			return smp, nil
		}

		further, err := timeutil.Advance(anchor, coarse, out)
		if err != nil {
			return sample{}, err
		}
		if further, err = tr.clamp(further, unit, from, dir); err != nil {
			return sample{}, err
		}
		if further.Equal(anchor) {
			return smp, nil
		}
		anchor = further
	}
}

// clamp keeps a refinement anchor on the searched side of from: no earlier
// than from going forward, and with its whole unit before from going back.
func (tr *track) clamp(anchor time.Time, unit timeutil.Unit, from time.Time, dir timeutil.Direction) (time.Time, error) {
	if dir == timeutil.Next {
		if anchor.Before(from) {
			return from, nil
		}
		return anchor, nil
	}
	last, err := timeutil.Advance(from, unit, timeutil.Prev)
	if err != nil {
		return time.Time{}, err
	}
	if anchor.After(last) {
		return last, nil
	}
	return anchor, nil
}

// NextMoment finds the next instant, scanning in q.Direction from q.Time,
// at which the body's movement matches q.Regime.
//
// If the body already matches q.Regime at q.Time, q.Time (truncated to the
// second) is returned. The Resolution of the result is always Second.
//
// NextMoment does not return if the body never enters q.Regime in the
// scanned direction; callers must only search bodies that exhibit it.
func (s *Searcher) NextMoment(q Query) (Result, error) {
	if err := validate(q); err != nil {
		return Result{}, err
	}

	start := timeutil.Truncate(q.Time, timeutil.Second)
	tr := s.newTrack(q.Body, start, q.Longitude)

	smp, err := tr.moment(start, q.Direction, q.Regime)
	if err != nil {
		return Result{}, err
	}
	return smp.result(timeutil.Second), nil
}
