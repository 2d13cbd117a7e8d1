// Package sun is a low-precision model of the Sun's geocentric ecliptic
// longitude, good to about 0.01° over a few centuries around J2000.
package sun

import (
	"time"

	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// Position is the Sun's geometric position referred to the mean equinox of
// date.
type Position struct {
	Longitude float64 // true ecliptic longitude, degrees
	Distance  float64 // Earth-Sun distance, AU
}

// GeometricPosition returns the Sun's true longitude and distance at t.
//
// Meeus-style solar model:
//
//	L0 = geometric mean longitude
//	M  = mean anomaly
//	C  = equation of centre
//	e  = eccentricity of Earth's orbit
func GeometricPosition(t time.Time) Position {
	T := timeutil.JulianCenturiesTT(t)

	L0 := timeutil.Normalize360(280.46646 + 36000.76983*T + 0.0003032*T*T)
	M := timeutil.Normalize360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	e := 0.016708634 - 0.000042037*T - 0.0000001267*T*T

	C := (1.914602-0.004817*T-0.000014*T*T)*timeutil.SinD(M) +
		(0.019993-0.000101*T)*timeutil.SinD(2*M) +
		0.000289*timeutil.SinD(3*M)

	v := M + C // true anomaly
	R := 1.000001018 * (1 - e*e) / (1 + e*timeutil.CosD(v))

	return Position{
		Longitude: timeutil.Normalize360(L0 + C),
		Distance:  R,
	}
}

// EclipticLongitude returns the Sun's true geometric longitude in degrees.
func EclipticLongitude(t time.Time) float64 {
	return GeometricPosition(t).Longitude
}

// ApparentLongitude returns the Sun's apparent geocentric ecliptic
// longitude in degrees [0, 360): the true longitude corrected for annual
// aberration and nutation.
func ApparentLongitude(t time.Time) float64 {
	p := GeometricPosition(t)
	T := timeutil.JulianCenturiesTT(t)

	// Aberration is -20.4898" / R.
	aberration := -0.005691611 / p.Distance

	return timeutil.Normalize360(p.Longitude + aberration + timeutil.NutationInLongitude(T))
}
