// Package planets computes apparent geocentric ecliptic longitudes of the
// major planets from approximate Keplerian elements.
//
// Accuracy is of the order of an arcminute for the inner planets inside
// 1800-2050, which places stations to well under an hour.
package planets

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/thurmanmarka/retroglide/internal/timeutil"
)

// earthMoon is the key of the Earth-Moon barycentre orbit.
const earthMoon = "earth-moon"

// lightTimePerAU is the light time for one astronomical unit, in days.
const lightTimePerAU = 0.0057755183

// ErrUnknownPlanet is returned for names without orbital elements.
var ErrUnknownPlanet = errors.New("unknown planet")

// Vector is a heliocentric rectangular position in AU, J2000 ecliptic.
type Vector struct {
	X, Y, Z float64
}

func (v Vector) sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector) norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// lonLat returns the spherical longitude [0, 360) and latitude of v in degrees.
func (v Vector) lonLat() (lon, lat float64) {
	lon = timeutil.Normalize360(timeutil.Rad2Deg(math.Atan2(v.Y, v.X)))
	lat = timeutil.Rad2Deg(math.Atan2(v.Z, math.Hypot(v.X, v.Y)))
	return lon, lat
}

// Names lists the planets with elements, Earth excluded.
func Names() []string {
	out := make([]string, 0, len(orbits)-1)
	for name := range orbits {
		if name != earthMoon {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Heliocentric returns the position of the named planet at T Julian
// centuries (TT) since J2000.
func Heliocentric(name string, T float64) (Vector, error) {
	o, ok := orbits[name]
	if !ok || name == earthMoon {
		return Vector{}, fmt.Errorf("%w: %q", ErrUnknownPlanet, name)
	}
	return o.position(T), nil
}

func (o orbit) position(T float64) Vector {
	a := o.a.value(T)
	e := o.e.value(T)
	I := o.i.value(T)
	L := o.L.value(T)
	peri := o.peri.value(T)
	node := o.node.value(T)

	w := peri - node // argument of perihelion
	M := timeutil.Normalize360(L - peri)
	if M > 180 {
		M -= 360
	}
	E := solveKepler(M, e)

	// Position in the orbital plane, x towards perihelion.
	xp := a * (timeutil.CosD(E) - e)
	yp := a * math.Sqrt(1-e*e) * timeutil.SinD(E)

	cw, sw := timeutil.CosD(w), timeutil.SinD(w)
	cn, sn := timeutil.CosD(node), timeutil.SinD(node)
	ci, si := timeutil.CosD(I), timeutil.SinD(I)

	return Vector{
		X: (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp,
		Y: (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp,
		Z: sw*si*xp + cw*si*yp,
	}
}

// solveKepler solves M = E - e sin E for the eccentric anomaly E by Newton
// iteration. M and E are in degrees.
func solveKepler(M, e float64) float64 {
	const (
		tol     = 1e-8
		maxIter = 50
	)
	eDeg := timeutil.Rad2Deg(e)

	E := M + eDeg*timeutil.SinD(M)
	for i := 0; i < maxIter; i++ {
		dM := M - (E - eDeg*timeutil.SinD(E))
		dE := dM / (1 - e*timeutil.CosD(E))
		E += dE
		if math.Abs(dE) <= tol {
			break
		}
	}
	return E
}

// Geocentric returns the planet's astrometric geocentric position at T
// (TT centuries), J2000 ecliptic, corrected for light time, together with
// the Earth's heliocentric position at T.
func Geocentric(name string, T float64) (planet, earth Vector, err error) {
	o, ok := orbits[name]
	if !ok || name == earthMoon {
		return Vector{}, Vector{}, fmt.Errorf("%w: %q", ErrUnknownPlanet, name)
	}
	earth = orbits[earthMoon].position(T)

	// Two iterations are enough: the second changes τ by microseconds.
	tau := 0.0
	for i := 0; i < 2; i++ {
		planet = o.position(T - tau/36525).sub(earth)
		tau = planet.norm() * lightTimePerAU
	}
	planet = o.position(T - tau/36525).sub(earth)
	return planet, earth, nil
}

// ApparentLongitude returns the apparent geocentric ecliptic longitude of
// the named planet at t, in degrees [0, 360), referred to the true equinox
// of date.
func ApparentLongitude(name string, t time.Time) (float64, error) {
	T := timeutil.JulianCenturiesTT(t)

	geo, earth, err := Geocentric(name, T)
	if err != nil {
		return 0, err
	}
	lon, lat := geo.lonLat()

	// Sun as seen from the Earth, same frame.
	sunLon, _ := Vector{-earth.X, -earth.Y, -earth.Z}.lonLat()

	lon += aberration(lon, lat, sunLon, T)
	lon += timeutil.PrecessionInLongitude(T)
	lon += timeutil.NutationInLongitude(T)

	return timeutil.Normalize360(lon), nil
}

// aberration returns the annual aberration in longitude, in degrees, for a
// body at (lon, lat) when the Sun is at sunLon.
func aberration(lon, lat, sunLon, T float64) float64 {
	const kappa = 20.49552 / 3600
	e := 0.016708634 - 0.000042037*T
	pi := 102.93735 + 1.71946*T

	return (-kappa*timeutil.CosD(sunLon-lon) + e*kappa*timeutil.CosD(pi-lon)) / timeutil.CosD(lat)
}
