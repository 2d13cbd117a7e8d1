// Package ephemeris is the catalogue of supported bodies and the built-in
// longitude oracle that dispatches to the sun, moon and planets models.
package ephemeris

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thurmanmarka/retroglide/internal/moon"
	"github.com/thurmanmarka/retroglide/internal/planets"
	"github.com/thurmanmarka/retroglide/internal/sun"
)

// ErrBodyNotFound is returned for keys outside the catalogue.
var ErrBodyNotFound = errors.New("body not found")

// Body describes one catalogued body.
type Body struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	HorizonsID  string `json:"horizons_id"`
	Retrogrades bool   `json:"retrogrades"` // false for bodies a station search would never finish on
}

var catalogue = []Body{
	{Key: "sun", Name: "Sun", HorizonsID: "10"},
	{Key: "moon", Name: "Moon", HorizonsID: "301"},
	{Key: "mercury", Name: "Mercury", HorizonsID: "199", Retrogrades: true},
	{Key: "venus", Name: "Venus", HorizonsID: "299", Retrogrades: true},
	{Key: "mars", Name: "Mars", HorizonsID: "499", Retrogrades: true},
	{Key: "jupiter", Name: "Jupiter", HorizonsID: "599", Retrogrades: true},
	{Key: "saturn", Name: "Saturn", HorizonsID: "699", Retrogrades: true},
	{Key: "uranus", Name: "Uranus", HorizonsID: "799", Retrogrades: true},
	{Key: "neptune", Name: "Neptune", HorizonsID: "899", Retrogrades: true},
	{Key: "pluto", Name: "Pluto", HorizonsID: "999", Retrogrades: true},
}

// Bodies returns the catalogue in its canonical order (Sun, Moon, then the
// planets outwards).
func Bodies() []Body {
	out := make([]Body, len(catalogue))
	copy(out, catalogue)
	return out
}

// Keys returns the catalogue keys in canonical order.
func Keys() []string {
	keys := make([]string, len(catalogue))
	for i, b := range catalogue {
		keys[i] = b.Key
	}
	return keys
}

// Lookup finds a body by key or display name, case-insensitively.
func Lookup(key string) (Body, error) {
	k := strings.TrimSpace(key)
	for _, b := range catalogue {
		if strings.EqualFold(b.Key, k) || strings.EqualFold(b.Name, k) {
			return b, nil
		}
	}
	return Body{}, fmt.Errorf("%w: %q (known: %s)", ErrBodyNotFound, key, strings.Join(Keys(), ", "))
}

// Oracle computes apparent longitudes with the built-in models. The zero
// value is ready to use and safe for concurrent use.
type Oracle struct{}

// ApparentLongitude returns the apparent geocentric ecliptic longitude of
// the body in degrees [0, 360).
func (Oracle) ApparentLongitude(key string, t time.Time) (float64, error) {
	b, err := Lookup(key)
	if err != nil {
		return 0, err
	}
	switch b.Key {
	case "sun":
		return sun.ApparentLongitude(t), nil
	case "moon":
		return moon.ApparentLongitude(t), nil
	default:
		return planets.ApparentLongitude(b.Key, t)
	}
}
