package predict

import (
	"errors"
	"fmt"
	"time"
)

// Constraints holds the visibility thresholds for a prediction run.
// All four must hold simultaneously for a sample to count as visible.
type Constraints struct {
	// MinElevationDeg is the elevation below which the satellite is assumed
	// blocked by horizon or terrain.
	MinElevationDeg float64

	// TwilightDeg is the Sun altitude at or below which the sky is dark
	// enough for observation. Negative, e.g. -10.
	TwilightDeg float64

	// SampleStep is the fixed interval between ephemeris samples. It should
	// be small relative to MinWindowDuration; windows shorter than the step
	// may be missed entirely.
	SampleStep time.Duration

	// MinWindowDuration discards grazing windows shorter than this.
	MinWindowDuration time.Duration
}

// DefaultConstraints returns the thresholds used when nothing is configured.
func DefaultConstraints() Constraints {
	return Constraints{
		MinElevationDeg:   12.0,
		TwilightDeg:       -10.0,
		SampleStep:        10 * time.Second,
		MinWindowDuration: 40 * time.Second,
	}
}

// Constraint validation errors.
var (
	ErrInvalidStep      = errors.New("sample step must be positive")
	ErrInvalidElevation = errors.New("minimum elevation must be in [0, 90] degrees")
	ErrInvalidTwilight  = errors.New("twilight cutoff must not be above the horizon")
	ErrInvalidDuration  = errors.New("minimum window duration must not be negative")
)

// Validate rejects unusable constraints before any sampling begins.
func (c Constraints) Validate() error {
	if c.SampleStep <= 0 {
		return fmt.Errorf("%w (got %v)", ErrInvalidStep, c.SampleStep)
	}
	if c.MinElevationDeg < 0 || c.MinElevationDeg > 90 {
		return fmt.Errorf("%w (got %.2f)", ErrInvalidElevation, c.MinElevationDeg)
	}
	if c.TwilightDeg > 0 {
		return fmt.Errorf("%w (got %.2f)", ErrInvalidTwilight, c.TwilightDeg)
	}
	if c.MinWindowDuration < 0 {
		return fmt.Errorf("%w (got %v)", ErrInvalidDuration, c.MinWindowDuration)
	}
	return nil
}

// Visible reduces one sample to the composite visibility predicate:
// above the elevation floor, sky dark enough, satellite in sunlight.
// Pure: identical inputs always yield the identical boolean.
func (c Constraints) Visible(s Sample) bool {
	return s.AltitudeDeg >= c.MinElevationDeg &&
		s.SunAltitudeDeg <= c.TwilightDeg &&
		s.Sunlit
}
