package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Direction selects whether a scan moves forward or backward in time.
type Direction int

const (
	Next Direction = iota
	Prev
)

// Unit is a calendar step size. Units are ordered coarse to fine.
type Unit int

const (
	Date Unit = iota
	Hour
	Minute
	Second
)

var (
	// ErrInvalidDirection is returned for anything other than next or prev.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidUnit is returned for anything other than date, hour, minute
	// or second.
	ErrInvalidUnit = errors.New("invalid unit")
)

var (
	directionNames = []string{"next", "prev"}
	unitNames      = []string{"date", "hour", "minute", "second"}
)

func (d Direction) String() string {
	if d.Valid() {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Valid reports whether d is Next or Prev.
func (d Direction) Valid() bool {
	return d == Next || d == Prev
}

// Validate returns ErrInvalidDirection, naming d and the allowed values,
// when d is neither Next nor Prev.
func (d Direction) Validate() error {
	if d.Valid() {
		return nil
	}
	return fmt.Errorf("%w %v: want one of %s", ErrInvalidDirection, d, strings.Join(directionNames, ", "))
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Prev {
		return Next
	}
	return Prev
}

// Sign is +1 for Next and -1 for Prev.
func (d Direction) Sign() int {
	if d == Prev {
		return -1
	}
	return 1
}

func (d Direction) MarshalText() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDirection accepts "next" or "prev" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q: want one of %s", ErrInvalidDirection, s, strings.Join(directionNames, ", "))
}

func (u Unit) String() string {
	if u.Valid() {
		return unitNames[u]
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// Valid reports whether u is one of the four calendar units.
func (u Unit) Valid() bool {
	return u >= Date && u <= Second
}

// Validate returns ErrInvalidUnit, naming u and the allowed values, when u
// is not a calendar unit.
func (u Unit) Validate() error {
	if u.Valid() {
		return nil
	}
	return fmt.Errorf("%w %v: want one of %s", ErrInvalidUnit, u, strings.Join(unitNames, ", "))
}

func (u Unit) MarshalText() ([]byte, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return []byte(u.String()), nil
}

func (u *Unit) UnmarshalText(b []byte) error {
	v, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// ParseUnit accepts "date", "hour", "minute" or "second" (case-insensitive).
func ParseUnit(s string) (Unit, error) {
	for i, name := range unitNames {
		if strings.EqualFold(s, name) {
			return Unit(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q: want one of %s", ErrInvalidUnit, s, strings.Join(unitNames, ", "))
}

// Advance moves t one calendar unit in direction dir, in UTC.
//
// The step is applied to the calendar field itself and normalised by
// time.Date, so "next date" from Jan 31 is Feb 1 and every field finer
// than unit is preserved.
func Advance(t time.Time, unit Unit, dir Direction) (time.Time, error) {
	if err := dir.Validate(); err != nil {
		return time.Time{}, err
	}
	if err := unit.Validate(); err != nil {
		return time.Time{}, err
	}

	u := t.UTC()
	year, month, day := u.Date()
	hour, min, sec := u.Clock()
	step := dir.Sign()

	switch unit {
	case Date:
		day += step
	case Hour:
		hour += step
	case Minute:
		min += step
	case Second:
		sec += step
	}

	return time.Date(year, month, day, hour, min, sec, u.Nanosecond(), time.UTC), nil
}

// Truncate zeroes every calendar field finer than unit (and the
// nanoseconds), in UTC. Truncate(t, Second) drops sub-second precision.
func Truncate(t time.Time, unit Unit) time.Time {
	u := t.UTC()
	year, month, day := u.Date()
	hour, min, sec := u.Clock()

	switch unit {
	case Date:
		hour, min, sec = 0, 0, 0
	case Hour:
		min, sec = 0, 0
	case Minute:
		sec = 0
	}

	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}
