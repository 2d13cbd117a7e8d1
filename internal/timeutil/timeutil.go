package timeutil

import (
	"math"
	"time"
)

// -----------------------------
// Julian dates and dynamical time
// -----------------------------

const (
	// jdUnixEpoch is the Julian day of 1970-01-01 00:00 UTC.
	jdUnixEpoch = 2440587.5

	// jdJ2000 is the Julian day of the J2000.0 epoch.
	jdJ2000 = 2451545.0

	daysPerCentury = 36525.0
)

// DeltaT is the fixed TT-UTC offset: 32.184 s plus the 37 leap seconds in
// force since 2017.
const DeltaT = 69184 * time.Millisecond

// JulianDay returns the Julian day of t on its own time scale (no ΔT).
func JulianDay(t time.Time) float64 {
	sec := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return jdUnixEpoch + sec/86400.0
}

// DaysSinceJ2000 returns dynamical-time days since J2000.0 for the UTC
// instant t, i.e. with ΔT already applied.
func DaysSinceJ2000(t time.Time) float64 {
	return JulianDay(t.Add(DeltaT)) - jdJ2000
}

// JulianCenturies returns centuries since J2000.0, without ΔT.
func JulianCenturies(t time.Time) float64 {
	return (JulianDay(t) - jdJ2000) / daysPerCentury
}

// JulianCenturiesTT returns dynamical-time centuries since J2000.0 for the
// UTC instant t.
func JulianCenturiesTT(t time.Time) float64 {
	return DaysSinceJ2000(t) / daysPerCentury
}

// NutationInLongitude returns Δψ in degrees for T Julian centuries (TT)
// since J2000, using the four dominant terms (good to ~0.5").
func NutationInLongitude(T float64) float64 {
	omega := Deg2Rad(125.04452 - 1934.136261*T)
	L := Deg2Rad(280.4665 + 36000.7698*T)
	Lp := Deg2Rad(218.3165 + 481267.8813*T)

	arcsec := -17.20*math.Sin(omega) -
		1.32*math.Sin(2*L) -
		0.23*math.Sin(2*Lp) +
		0.21*math.Sin(2*omega)

	return arcsec / 3600.0
}

// PrecessionInLongitude returns the general precession in ecliptic
// longitude, in degrees, accumulated from J2000 to T centuries (TT).
func PrecessionInLongitude(T float64) float64 {
	return (5029.0966*T + 1.11113*T*T) / 3600.0
}

// -----------------------------
// Degree helpers
// -----------------------------

func Deg2Rad(d float64) float64 { return d * math.Pi / 180.0 }

func Rad2Deg(r float64) float64 { return r * 180.0 / math.Pi }

func SinD(deg float64) float64 { return math.Sin(Deg2Rad(deg)) }

func CosD(deg float64) float64 { return math.Cos(Deg2Rad(deg)) }

// Normalize360 maps d into [0, 360).
func Normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}
