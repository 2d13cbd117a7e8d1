package retroglide

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func diffMinutes(a, b time.Time) float64 {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d.Minutes()
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Reference stations, tropical apparent geocentric longitudes.
func TestNextStation_Mercury(t *testing.T) {
	const (
		minuteTol = 15.0
		lonTol    = 0.1
	)

	cases := []struct {
		name    string
		from    time.Time
		dir     Direction
		regime  Regime
		wantAt  time.Time
		wantLon float64
	}{
		{
			name:    "retrograde station from before it",
			from:    utc("2019-10-31T00:00:00Z"),
			dir:     Next,
			regime:  Retrograde,
			wantAt:  utc("2019-10-31T15:43:00Z"),
			wantLon: 237.638,
		},
		{
			name:    "direct station from before the retrograde station",
			from:    utc("2019-10-31T00:00:00Z"),
			dir:     Next,
			regime:  Direct,
			wantAt:  utc("2019-11-20T19:13:00Z"),
			wantLon: 221.586,
		},
		{
			name:    "retrograde station from inside a retrograde period",
			from:    utc("2019-10-31T20:00:00Z"),
			dir:     Next,
			regime:  Retrograde,
			wantAt:  utc("2020-02-17T00:55:00Z"),
			wantLon: 342.8897,
		},
		{
			name:    "previous retrograde station from inside the period",
			from:    utc("2019-11-10T00:00:00Z"),
			dir:     Prev,
			regime:  Retrograde,
			wantAt:  utc("2019-10-31T15:43:00Z"),
			wantLon: 237.638,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextStation("mercury", tc.from, tc.dir, tc.regime)
			if err != nil {
				t.Fatalf("NextStation: %v", err)
			}
			if m := diffMinutes(got.Time, tc.wantAt); m > minuteTol {
				t.Errorf("time = %v, want %v (off by %.1f min)", got.Time, tc.wantAt, m)
			}
			if d := math.Abs(got.Longitude - tc.wantLon); d > lonTol {
				t.Errorf("longitude = %.4f, want %.4f", got.Longitude, tc.wantLon)
			}
			if got.Resolution != Second {
				t.Errorf("resolution = %v, want second", got.Resolution)
			}
			if !tc.regime.Matches(got.Delta) {
				t.Errorf("delta %.8f at the station does not match %v", got.Delta, tc.regime)
			}
		})
	}
}

func TestNextMoment_AlreadyInRegime(t *testing.T) {
	from := utc("2019-11-05T12:34:56Z")

	got, err := NextMoment("mercury", from, Next, Retrograde)
	if err != nil {
		t.Fatalf("NextMoment: %v", err)
	}
	if !got.Time.Equal(from) {
		t.Errorf("time = %v, want the start %v", got.Time, from)
	}
	if got.Movement() != MovementRetrograde {
		t.Errorf("movement = %v, want retrograde", got.Movement())
	}
}

func TestNoRetrogradeBodies(t *testing.T) {
	from := utc("2024-01-01T00:00:00Z")
	for _, body := range []string{"sun", "Moon"} {
		if _, err := NextStation(body, from, Next, Retrograde); !errors.Is(err, ErrNoRetrograde) {
			t.Errorf("NextStation(%s) err = %v, want ErrNoRetrograde", body, err)
		}
		if _, err := NextMoment(body, from, Prev, Direct); !errors.Is(err, ErrNoRetrograde) {
			t.Errorf("NextMoment(%s) err = %v, want ErrNoRetrograde", body, err)
		}
		if _, err := MovementAt(body, from); err != nil {
			t.Errorf("MovementAt(%s): %v", body, err)
		}
	}
	if err := CheckSearchable("toy"); err != nil {
		t.Errorf("uncatalogued keys must pass, got %v", err)
	}
}

func TestUnknownBody(t *testing.T) {
	_, err := NextStation("vulcan", utc("2024-01-01T00:00:00Z"), Next, Direct)
	if !errors.Is(err, ErrBodyNotFound) {
		t.Errorf("err = %v, want ErrBodyNotFound", err)
	}
}

func TestRetrogradePeriods_Mercury2020(t *testing.T) {
	s := NewSearcher(Builtin())
	from := utc("2020-01-01T00:00:00Z")

	periods, err := RetrogradePeriods(s, "mercury", from, from.AddDate(1, 0, 0))
	if err != nil {
		t.Fatalf("RetrogradePeriods: %v", err)
	}

	want := []struct{ start, end time.Time }{
		{utc("2020-02-17T00:54:00Z"), utc("2020-03-10T03:49:00Z")},
		{utc("2020-06-18T04:59:00Z"), utc("2020-07-12T08:26:00Z")},
		{utc("2020-10-14T01:05:00Z"), utc("2020-11-03T17:50:00Z")},
	}
	if len(periods) != len(want) {
		t.Fatalf("got %d periods, want %d: %+v", len(periods), len(want), periods)
	}
	for i, w := range want {
		p := periods[i]
		if m := diffMinutes(p.Start.Time, w.start); m > 60 {
			t.Errorf("period %d start = %v, want %v", i, p.Start.Time, w.start)
		}
		if m := diffMinutes(p.End.Time, w.end); m > 60 {
			t.Errorf("period %d end = %v, want %v", i, p.End.Time, w.end)
		}
		if d := p.Duration(); d < 19*24*time.Hour || d > 26*24*time.Hour {
			t.Errorf("period %d lasts %v", i, d)
		}
	}
}

func TestRetrogradePeriods_InProgress(t *testing.T) {
	s := NewSearcher(Builtin())
	from := utc("2019-11-10T00:00:00Z")

	periods, err := RetrogradePeriods(s, "mercury", from, from.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("RetrogradePeriods: %v", err)
	}
	if len(periods) != 1 {
		t.Fatalf("got %d periods, want the one in progress", len(periods))
	}
	if !periods[0].Start.Time.Before(from) || !periods[0].End.Time.After(from) {
		t.Errorf("period %v → %v does not contain %v", periods[0].Start.Time, periods[0].End.Time, from)
	}
}

func TestRetrogradePeriods_Errors(t *testing.T) {
	s := NewSearcher(Builtin())
	from := utc("2020-01-01T00:00:00Z")

	if _, err := RetrogradePeriods(s, "mercury", from, from); err == nil {
		t.Error("empty range must fail")
	}
	if _, err := RetrogradePeriods(s, "sun", from, from.AddDate(1, 0, 0)); !errors.Is(err, ErrNoRetrograde) {
		t.Errorf("err = %v, want ErrNoRetrograde", err)
	}
}

func TestSurvey(t *testing.T) {
	s := NewSearcher(Builtin())
	at := utc("2019-10-31T00:00:00Z")

	rows, err := Survey(context.Background(), s, []string{"mercury", "sun"}, at, 2)
	if err != nil {
		t.Fatalf("Survey: %v", err)
	}
	if len(rows) != 2 || rows[0].Body != "mercury" || rows[1].Body != "sun" {
		t.Fatalf("rows out of order: %+v", rows)
	}

	merc := rows[0]
	if merc.Now.Movement() != MovementDirect {
		t.Errorf("mercury movement = %v, want direct", merc.Now.Movement())
	}
	if merc.NextRetrograde == nil || diffMinutes(merc.NextRetrograde.Time, utc("2019-10-31T15:43:00Z")) > 15 {
		t.Errorf("mercury next retrograde = %+v", merc.NextRetrograde)
	}
	if merc.NextDirect == nil || diffMinutes(merc.NextDirect.Time, utc("2019-11-20T19:13:00Z")) > 15 {
		t.Errorf("mercury next direct = %+v", merc.NextDirect)
	}

	sun := rows[1]
	if sun.NextRetrograde != nil || sun.NextDirect != nil {
		t.Errorf("sun must carry no stations: %+v", sun)
	}
	if sun.Now.Movement() != MovementDirect {
		t.Errorf("sun movement = %v", sun.Now.Movement())
	}
}

func TestSurvey_Error(t *testing.T) {
	s := NewSearcher(Builtin())
	_, err := Survey(context.Background(), s, []string{"mercury", "vulcan"}, utc("2019-10-31T00:00:00Z"), 4)
	if !errors.Is(err, ErrBodyNotFound) {
		t.Errorf("err = %v, want ErrBodyNotFound", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Survey(ctx, s, []string{"mercury"}, utc("2019-10-31T00:00:00Z"), 1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSurvey_CancelBetweenSearches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	builtin := Builtin()
	s := NewSearcher(OracleFunc(func(key string, at time.Time) (float64, error) {
		cancel()
		return builtin.ApparentLongitude(key, at)
	}))

	_, err := Survey(ctx, s, []string{"mercury"}, utc("2019-10-31T00:00:00Z"), 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
