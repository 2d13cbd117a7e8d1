// Package moon is a medium-precision model of the Moon's geocentric
// ecliptic position, good to a few tenths of a degree.
package moon

import (
	"math"
	"time"

	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// Ecliptic holds geocentric ecliptic coordinates referred to the mean
// equinox of date, in degrees.
type Ecliptic struct {
	Lon float64
	Lat float64
}

// EclipticApprox returns the Moon's approximate geocentric ecliptic
// coordinates at t.
//
// Roughly based on truncated Meeus-style series:
//
//	L'  = mean longitude of the Moon
//	M   = mean anomaly of the Sun
//	Mm  = mean anomaly of the Moon
//	D   = mean elongation of the Moon from the Sun
//	F   = argument of latitude of the Moon
func EclipticApprox(t time.Time) Ecliptic {
	d := timeutil.DaysSinceJ2000(t)

	// All linear coefficients here are in deg/day.
	Lprime := timeutil.Normalize360(218.3164477 + 13.17639648*d)
	M := timeutil.Deg2Rad(timeutil.Normalize360(357.5291092 + 0.98560028*d))
	Mm := timeutil.Deg2Rad(timeutil.Normalize360(134.9633964 + 13.06499295*d))
	D := timeutil.Deg2Rad(timeutil.Normalize360(297.8501921 + 12.19074912*d))
	F := timeutil.Deg2Rad(timeutil.Normalize360(93.2720950 + 13.22935024*d))

	// λ ≈ L' + 6.289 sin(Mm) + 1.274 sin(2D − Mm)
	//      + 0.658 sin(2D) + 0.214 sin(2Mm) − 0.186 sin(M)
	//      − 0.114 sin(2F)
	lon := Lprime +
		6.289*math.Sin(Mm) +
		1.274*math.Sin(2*D-Mm) +
		0.658*math.Sin(2*D) +
		0.214*math.Sin(2*Mm) -
		0.186*math.Sin(M) -
		0.114*math.Sin(2*F)

	// β ≈ 5.128 sin(F) + 0.280 sin(Mm + F)
	//      + 0.277 sin(Mm − F) + 0.173 sin(2D − F)
	lat := 5.128*math.Sin(F) +
		0.280*math.Sin(Mm+F) +
		0.277*math.Sin(Mm-F) +
		0.173*math.Sin(2*D-F)

	return Ecliptic{
		Lon: timeutil.Normalize360(lon),
		Lat: lat,
	}
}

// ApparentLongitude returns the Moon's apparent geocentric ecliptic
// longitude in degrees [0, 360), including nutation.
func ApparentLongitude(t time.Time) float64 {
	T := timeutil.JulianCenturiesTT(t)
	return timeutil.Normalize360(EclipticApprox(t).Lon + timeutil.NutationInLongitude(T))
}
