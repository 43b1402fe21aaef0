// Package ephem provides topocentric ephemeris data for satellites.
package ephem

import (
	"time"

	"github.com/natalnetwork/iss-horizon/internal/astro"
)

// State is the satellite's instantaneous state as seen from an observer.
type State struct {
	AltitudeDeg float64 // Elevation above the horizon
	AzimuthDeg  float64 // 0-360, 0 = North, clockwise
	RangeKm     float64 // Slant range observer -> satellite
	Sunlit      bool    // Illuminated by the Sun (not in Earth's shadow)
}

// Provider supplies satellite and Sun geometry for a fixed orbital-element
// source. Implementations must be deterministic for a given source; errors
// (stale or missing elements, out-of-range instants) are fatal to the
// caller's computation and are never retried here.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Observe returns the satellite's topocentric state at t.
	Observe(obs astro.Observer, t time.Time) (State, error)

	// SunAltitude returns the Sun's altitude in degrees as seen by the
	// observer at t.
	SunAltitude(obs astro.Observer, t time.Time) (float64, error)
}
