package astro

import "math"

// cardinal16 lists the 16-point compass rose clockwise from North.
var cardinal16 = []string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// Cardinal16 maps an azimuth in degrees (0 = North, clockwise) to one of 16
// compass sectors of 22.5° each. Sector boundaries fall on odd multiples of
// 11.25°, so N spans the wraparound at 0°/360°.
func Cardinal16(azDeg float64) string {
	normalized := math.Mod(azDeg, 360)
	if normalized < 0 {
		normalized += 360
	}
	const sector = 360.0 / 16
	idx := int(math.Floor((normalized+sector/2)/sector)) % 16
	return cardinal16[idx]
}
