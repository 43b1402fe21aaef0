package predict

import "time"

// Rating policy breakpoints. These are tunable policy, not structure: any
// change must keep the rating deterministic and monotonic non-decreasing in
// peak elevation, duration, and darkness margin.
const (
	// Bonus thresholds: each met threshold adds one star to the base of 1.
	RatePeakGoodDeg      = 20.0
	RatePeakGreatDeg     = 40.0
	RatePeakOverheadDeg  = 65.0
	RateDurationBonus    = 120 * time.Second
	RateDarknessBonusDeg = 8.0

	// Caps: low or short passes cannot score well no matter what.
	RateLowPeakCapDeg   = 20.0 // peak below this caps the score at 3
	RateShortDurCap     = 60 * time.Second
	rateLowPeakMaxStars = 3
	rateShortDurMax     = 2
)

// Rate computes the 1-5 star quality score for a window.
//
// peakElevDeg is the window's peak elevation; duration its length;
// darknessMarginDeg how far below the twilight cutoff the Sun sat at peak
// (larger = darker sky, better contrast). The score starts at 1, gains a
// star per met bonus threshold, then gets capped for low or short passes.
func Rate(peakElevDeg float64, duration time.Duration, darknessMarginDeg float64) int {
	score := 1

	if peakElevDeg >= RatePeakGoodDeg {
		score++
	}
	if peakElevDeg >= RatePeakGreatDeg {
		score++
	}
	if peakElevDeg >= RatePeakOverheadDeg {
		score++
	}
	if duration >= RateDurationBonus {
		score++
	}
	if darknessMarginDeg >= RateDarknessBonusDeg {
		score++
	}

	if peakElevDeg < RateLowPeakCapDeg && score > rateLowPeakMaxStars {
		score = rateLowPeakMaxStars
	}
	if duration < RateShortDurCap && score > rateShortDurMax {
		score = rateShortDurMax
	}

	if score > 5 {
		score = 5
	}
	if score < 1 {
		score = 1
	}
	return score
}

// StarsText renders a fixed-width five-glyph star string, e.g. "★★★☆☆".
func StarsText(stars int) string {
	if stars < 1 {
		stars = 1
	} else if stars > 5 {
		stars = 5
	}
	out := ""
	for i := 0; i < 5; i++ {
		if i < stars {
			out += "★"
		} else {
			out += "☆"
		}
	}
	return out
}
