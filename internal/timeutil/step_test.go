package timeutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAdvance(t *testing.T) {
	base := time.Date(2019, time.October, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		from time.Time
		unit Unit
		dir  Direction
		want time.Time
	}{
		{"next date", base, Date, Next, time.Date(2019, time.November, 1, 0, 0, 0, 0, time.UTC)},
		{"prev date", base, Date, Prev, time.Date(2019, time.October, 30, 0, 0, 0, 0, time.UTC)},
		{"next minute", base, Minute, Next, time.Date(2019, time.October, 31, 0, 1, 0, 0, time.UTC)},
		{"prev minute", base, Minute, Prev, time.Date(2019, time.October, 30, 23, 59, 0, 0, time.UTC)},
		{"next hour keeps minutes", time.Date(2019, 10, 31, 23, 17, 42, 0, time.UTC), Hour, Next, time.Date(2019, 11, 1, 0, 17, 42, 0, time.UTC)},
		{"prev second across year", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Second, Prev, time.Date(2019, 12, 31, 23, 59, 59, 0, time.UTC)},
		{"leap day", time.Date(2020, 2, 28, 12, 0, 0, 0, time.UTC), Date, Next, time.Date(2020, 2, 29, 12, 0, 0, 0, time.UTC)},
		{"non-leap february", time.Date(2019, 2, 28, 12, 0, 0, 0, time.UTC), Date, Next, time.Date(2019, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Advance(tc.from, tc.unit, tc.dir)
			if err != nil {
				t.Fatalf("Advance returned error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Advance(%v, %v, %v) = %v, want %v", tc.from, tc.unit, tc.dir, got, tc.want)
			}
		})
	}
}

func TestAdvanceNormalisesToUTC(t *testing.T) {
	phx := time.FixedZone("MST", -7*3600)
	from := time.Date(2019, 10, 30, 17, 0, 0, 0, phx) // 2019-10-31T00:00Z

	got, err := Advance(from, Date, Next)
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	want := time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("got %v, want %v in UTC", got, want)
	}
}

func TestAdvanceRejectsBadArguments(t *testing.T) {
	base := time.Date(2019, 10, 31, 0, 0, 0, 0, time.UTC)

	if _, err := Advance(base, Date, Direction(7)); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("bad direction: got %v, want ErrInvalidDirection", err)
	}
	if _, err := Advance(base, Unit(9), Next); !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("bad unit: got %v, want ErrInvalidUnit", err)
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"next", "NEXT", "prev"} {
		if _, err := ParseDirection(s); err != nil {
			t.Errorf("ParseDirection(%q) returned error: %v", s, err)
		}
	}

	_, err := ParseDirection("bad direction")
	if !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("got %v, want ErrInvalidDirection", err)
	}
	if msg := err.Error(); !strings.Contains(msg, `"bad direction"`) || !strings.Contains(msg, "next, prev") {
		t.Errorf("error %q should name the value and the allowed set", msg)
	}
}

func TestDirectionOpposite(t *testing.T) {
	if Next.Opposite() != Prev || Prev.Opposite() != Next {
		t.Errorf("Opposite: next -> %v, prev -> %v", Next.Opposite(), Prev.Opposite())
	}
}

func TestParseUnit(t *testing.T) {
	got, err := ParseUnit("minute")
	if err != nil || got != Minute {
		t.Fatalf("ParseUnit(minute) = %v, %v", got, err)
	}

	_, err = ParseUnit("bad unit")
	if !errors.Is(err, ErrInvalidUnit) {
		t.Fatalf("got %v, want ErrInvalidUnit", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "date, hour, minute, second") {
		t.Errorf("error %q should list the allowed units", msg)
	}
}

func TestTruncate(t *testing.T) {
	in := time.Date(2019, 10, 31, 15, 43, 27, 500, time.UTC)

	cases := []struct {
		unit Unit
		want time.Time
	}{
		{Date, time.Date(2019, 10, 31, 0, 0, 0, 0, time.UTC)},
		{Hour, time.Date(2019, 10, 31, 15, 0, 0, 0, time.UTC)},
		{Minute, time.Date(2019, 10, 31, 15, 43, 0, 0, time.UTC)},
		{Second, time.Date(2019, 10, 31, 15, 43, 27, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := Truncate(in, tc.unit); !got.Equal(tc.want) {
			t.Errorf("Truncate(%v) = %v, want %v", tc.unit, got, tc.want)
		}
	}
}

func TestUnitText(t *testing.T) {
	b, err := Second.MarshalText()
	if err != nil || string(b) != "second" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}

	var u Unit
	if err := u.UnmarshalText([]byte("hour")); err != nil || u != Hour {
		t.Fatalf("UnmarshalText = %v, %v", u, err)
	}
}

func TestNutationIsSmall(t *testing.T) {
	for _, T := range []float64{-1, -0.2, 0, 0.19, 0.5} {
		if dpsi := NutationInLongitude(T); dpsi > 0.006 || dpsi < -0.006 {
			t.Errorf("NutationInLongitude(%v) = %v°, want |Δψ| < 20\"", T, dpsi)
		}
	}
}
