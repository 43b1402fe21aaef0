package predict

import (
	"time"

	"github.com/natalnetwork/iss-horizon/internal/astro"
	"github.com/natalnetwork/iss-horizon/internal/ephem"
)

const (
	// RefineTolerance is the bisection stop width for window boundaries.
	// One second keeps reported pass times honest to the minute without
	// burning provider calls on precision nobody can observe.
	RefineTolerance = time.Second

	// refineMaxIterations bounds bisection regardless of tolerance.
	refineMaxIterations = 32
)

// BuildWindows converts the sampled time series into boundary-refined,
// duration-filtered, quality-rated visibility windows.
//
// The scan detects rising and falling edges of the composite visibility
// predicate, refines each interior boundary by bisection against the live
// provider, and discards candidates shorter than the configured minimum.
// A window open at either horizon bound is clamped to that bound; no
// refinement is attempted outside the horizon.
func BuildWindows(samples []Sample, c Constraints, obs astro.Observer, p ephem.Provider, h Horizon) ([]Window, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	var windows []Window

	i := 0
	for i < len(samples) {
		if !c.Visible(samples[i]) {
			i++
			continue
		}

		// Visible run [first, last].
		first := i
		for i < len(samples) && c.Visible(samples[i]) {
			i++
		}
		last := i - 1

		start := samples[first].Time
		if first > 0 {
			refined, err := refineRising(obs, p, c, samples[first-1].Time, samples[first].Time)
			if err != nil {
				return nil, err
			}
			start = refined
		}

		end := h.To
		if last < len(samples)-1 {
			refined, err := refineFalling(obs, p, c, samples[last].Time, samples[last+1].Time)
			if err != nil {
				return nil, err
			}
			end = refined
		}

		duration := end.Sub(start)
		if duration < c.MinWindowDuration {
			continue
		}

		// Peak from the unrefined samples inside the window. Sub-second
		// precision on the peak is not needed for reporting.
		peak := first
		for k := first + 1; k <= last; k++ {
			if samples[k].AltitudeDeg > samples[peak].AltitudeDeg {
				peak = k
			}
		}

		darkness := c.TwilightDeg - samples[peak].SunAltitudeDeg

		windows = append(windows, Window{
			Start:            start,
			End:              end,
			Duration:         duration,
			PeakTime:         samples[peak].Time,
			PeakElevationDeg: samples[peak].AltitudeDeg,
			StartAzimuthDeg:  samples[first].AzimuthDeg,
			PeakAzimuthDeg:   samples[peak].AzimuthDeg,
			EndAzimuthDeg:    samples[last].AzimuthDeg,
			StartDirection:   astro.Cardinal16(samples[first].AzimuthDeg),
			PeakDirection:    astro.Cardinal16(samples[peak].AzimuthDeg),
			EndDirection:     astro.Cardinal16(samples[last].AzimuthDeg),
			Stars:            Rate(samples[peak].AltitudeDeg, duration, darkness),
		})
	}

	return windows, nil
}

// refineRising bisects (notVisible, visible] down to RefineTolerance and
// returns the visible-side bound as the window start.
func refineRising(obs astro.Observer, p ephem.Provider, c Constraints, notVisible, visible time.Time) (time.Time, error) {
	lo, hi := notVisible, visible
	for iter := 0; iter < refineMaxIterations && hi.Sub(lo) > RefineTolerance; iter++ {
		mid := lo.Add(hi.Sub(lo) / 2)
		s, err := sampleAt(obs, p, mid)
		if err != nil {
			return time.Time{}, err
		}
		if c.Visible(s) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}

// refineFalling bisects [visible, notVisible) down to RefineTolerance and
// returns the not-visible-side bound as the window end.
func refineFalling(obs astro.Observer, p ephem.Provider, c Constraints, visible, notVisible time.Time) (time.Time, error) {
	lo, hi := visible, notVisible
	for iter := 0; iter < refineMaxIterations && hi.Sub(lo) > RefineTolerance; iter++ {
		mid := lo.Add(hi.Sub(lo) / 2)
		s, err := sampleAt(obs, p, mid)
		if err != nil {
			return time.Time{}, err
		}
		if c.Visible(s) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, nil
}
