package motion

import (
	"errors"
	"math"
	"testing"
)

func TestAngularDifferenceWraparound(t *testing.T) {
	cases := []struct {
		current, next float64
		want          float64
	}{
		{359, 1, 2},
		{1, 359, -2},
		{10, 20, 10},
		{20, 10, -10},
		{0, 180, 180},
		{180, 0, 180},
		{90, 90, 0},
		{-10, 10, 20},
		{720, 1, 1},
	}

	for _, tc := range cases {
		if got := AngularDifference(tc.current, tc.next); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("AngularDifference(%v, %v) = %v, want %v", tc.current, tc.next, got, tc.want)
		}
	}
}

func TestAngularDifferenceRangeAndAntisymmetry(t *testing.T) {
	for a := -360.0; a <= 720; a += 7.25 {
		for b := -360.0; b <= 720; b += 11.5 {
			d := AngularDifference(a, b)
			if d <= -180 || d > 180 {
				t.Fatalf("AngularDifference(%v, %v) = %v, outside (-180, 180]", a, b, d)
			}
			if d == 180 {
				continue
			}
			if back := AngularDifference(b, a); math.Abs(back+d) > 1e-9 {
				t.Fatalf("AngularDifference(%v, %v) = %v but reverse is %v", a, b, d, back)
			}
		}
	}
}

func TestZeroIsBothDirectAndRetrograde(t *testing.T) {
	if !IsDirect(0) || !IsRetrograde(0) {
		t.Fatal("a zero delta must satisfy both IsDirect and IsRetrograde")
	}
	if !Direct.Matches(0) || !Retrograde.Matches(0) {
		t.Fatal("a zero delta must match both regimes")
	}
	if Classify(0) != MovementStationary {
		t.Errorf("Classify(0) = %v, want stationary", Classify(0))
	}
}

func TestRegimeMatches(t *testing.T) {
	if !Direct.Matches(1e-7) || Direct.Matches(-1e-7) {
		t.Error("Direct should match only non-negative deltas")
	}
	if !Retrograde.Matches(-1e-7) || Retrograde.Matches(1e-7) {
		t.Error("Retrograde should match only non-positive deltas")
	}
	if Direct.Opposite() != Retrograde || Retrograde.Opposite() != Direct {
		t.Error("Opposite should swap regimes")
	}
}

func TestParseRegime(t *testing.T) {
	r, err := ParseRegime("Retrograde")
	if err != nil || r != Retrograde {
		t.Fatalf("ParseRegime(Retrograde) = %v, %v", r, err)
	}

	if _, err := ParseRegime("sideways"); !errors.Is(err, ErrInvalidRegime) {
		t.Errorf("got %v, want ErrInvalidRegime", err)
	}
	if err := Regime(5).Validate(); !errors.Is(err, ErrInvalidRegime) {
		t.Errorf("Validate: got %v, want ErrInvalidRegime", err)
	}
}
