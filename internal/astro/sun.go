package astro

import (
	"math"
	"time"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// SunPosition calculates the apparent equatorial coordinates of the Sun.
// Uses a simplified solar ephemeris based on the Astronomical Almanac.
// Accuracy: ~0.01 degrees, ample for twilight and shadow decisions.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	jd := JulianDate(t)

	// Julian centuries from J2000.0
	T := (jd - 2451545.0) / 36525.0

	// Mean longitude of the Sun (degrees)
	L0 := normalizeAngle360(280.46646 + 36000.76983*T + 0.0003032*T*T)

	// Mean anomaly of the Sun (degrees)
	M := normalizeAngle360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	// Sun's equation of center (degrees)
	C := (1.914602 - 0.004817*T - 0.000014*T*T) * math.Sin(Mrad)
	C += (0.019993 - 0.000101*T) * math.Sin(2*Mrad)
	C += 0.000289 * math.Sin(3*Mrad)

	// True longitude, corrected for aberration and nutation
	sunLon := L0 + C
	omega := 125.04 - 1934.136*T
	sunLonApp := sunLon - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Obliquity of the ecliptic (degrees)
	eps0 := 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	sunLonRad := degToRad(sunLonApp)
	epsRad := degToRad(eps)

	ra := math.Atan2(math.Cos(epsRad)*math.Sin(sunLonRad), math.Cos(sunLonRad))
	raDeg = radToDeg(ra)
	if raDeg < 0 {
		raDeg += 360
	}

	decDeg = radToDeg(math.Asin(math.Sin(epsRad) * math.Sin(sunLonRad)))

	return raDeg, decDeg
}

// SunAltitude returns the Sun's altitude in degrees as seen by the observer.
// Negative values mean the Sun is below the horizon.
func SunAltitude(obs Observer, t time.Time) float64 {
	raDeg, decDeg := SunPosition(t)
	_, elDeg := EquatorialToHorizontal(raDeg, decDeg, obs, t)
	return elDeg
}

// SunDirectionECI returns a unit vector from the Earth's center toward the
// Sun in the equatorial inertial frame.
func SunDirectionECI(t time.Time) Vec3 {
	raDeg, decDeg := SunPosition(t)
	ra := degToRad(raDeg)
	dec := degToRad(decDeg)
	return Vec3{
		X: math.Cos(dec) * math.Cos(ra),
		Y: math.Cos(dec) * math.Sin(ra),
		Z: math.Sin(dec),
	}
}
