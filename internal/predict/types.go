// Package predict computes naked-eye visibility windows for an orbiting
// object seen from a ground observer. It samples an ephemeris provider over
// a time horizon, applies elevation/twilight/illumination constraints,
// refines window boundaries by bisection, and rates each window's quality.
package predict

import (
	"time"
)

// Sample is one evaluated instant of the satellite's state as seen by the
// observer. Samples are produced and consumed within a single prediction
// run and never retained.
type Sample struct {
	Time           time.Time // UTC
	AltitudeDeg    float64
	AzimuthDeg     float64 // 0-360, 0 = North
	RangeKm        float64
	Sunlit         bool
	SunAltitudeDeg float64
}

// Horizon is the closed-open scan interval [From, To).
type Horizon struct {
	From time.Time
	To   time.Time
}

// Window is a maximal contiguous interval over which all visibility
// constraints hold. Immutable once constructed; times are UTC.
type Window struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration

	PeakTime         time.Time
	PeakElevationDeg float64

	StartAzimuthDeg float64
	PeakAzimuthDeg  float64
	EndAzimuthDeg   float64

	StartDirection string
	PeakDirection  string
	EndDirection   string

	// Stars is the 1-5 quality rating.
	Stars int
}
