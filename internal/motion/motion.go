// Package motion classifies the apparent movement of a body from two
// longitude samples.
package motion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// Regime is the kind of apparent motion a search is looking for.
type Regime int

const (
	Direct Regime = iota
	Retrograde
)

// Movement is the classification of a single signed delta.
type Movement int

const (
	MovementDirect Movement = iota
	MovementRetrograde
	MovementStationary
)

// ErrInvalidRegime is returned for anything other than direct or retrograde.
var ErrInvalidRegime = errors.New("invalid regime")

var regimeNames = []string{"direct", "retrograde"}

// AngularDifference returns the signed short-path difference from current
// to next, in degrees, in the range (-180, 180].
//
// A body that appears to have regressed 359° has really advanced 1°.
func AngularDifference(current, next float64) float64 {
	diff := timeutil.Normalize360(next - current)
	if diff > 180 {
		diff -= 360
	}
	return diff
}

// IsDirect reports delta >= 0. A zero delta is both direct and retrograde.
func IsDirect(delta float64) bool { return delta >= 0 }

// IsRetrograde reports delta <= 0. A zero delta is both direct and retrograde.
func IsRetrograde(delta float64) bool { return delta <= 0 }

// Classify maps a delta to a Movement; exactly 0 is stationary.
func Classify(delta float64) Movement {
	switch {
	case delta > 0:
		return MovementDirect
	case delta < 0:
		return MovementRetrograde
	default:
		return MovementStationary
	}
}

func (m Movement) String() string {
	switch m {
	case MovementDirect:
		return "direct"
	case MovementRetrograde:
		return "retrograde"
	case MovementStationary:
		return "stationary"
	default:
		return fmt.Sprintf("Movement(%d)", int(m))
	}
}

func (m Movement) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (r Regime) String() string {
	if r.Valid() {
		return regimeNames[r]
	}
	return fmt.Sprintf("Regime(%d)", int(r))
}

// Valid reports whether r is Direct or Retrograde.
func (r Regime) Valid() bool {
	return r == Direct || r == Retrograde
}

// Validate returns ErrInvalidRegime naming r and the allowed values.
func (r Regime) Validate() error {
	if r.Valid() {
		return nil
	}
	return fmt.Errorf("%w %v: want one of %s", ErrInvalidRegime, r, strings.Join(regimeNames, ", "))
}

// Matches reports whether delta satisfies r, using the double-closed
// boundary (0 matches both regimes).
func (r Regime) Matches(delta float64) bool {
	if r == Retrograde {
		return IsRetrograde(delta)
	}
	return IsDirect(delta)
}

// Opposite returns the other regime.
func (r Regime) Opposite() Regime {
	if r == Retrograde {
		return Direct
	}
	return Retrograde
}

func (r Regime) MarshalText() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return []byte(r.String()), nil
}

func (r *Regime) UnmarshalText(b []byte) error {
	v, err := ParseRegime(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRegime accepts "direct" or "retrograde" (case-insensitive).
func ParseRegime(s string) (Regime, error) {
	for i, name := range regimeNames {
		if strings.EqualFold(s, name) {
			return Regime(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q: want one of %s", ErrInvalidRegime, s, strings.Join(regimeNames, ", "))
}
