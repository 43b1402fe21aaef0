package astro

import (
	"math"
	"time"
)

// EarthRadiusKm is the mean Earth radius used for the shadow cylinder.
const EarthRadiusKm = 6371.0

// Vec3 represents a 3D vector in the equatorial inertial frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Sunlit reports whether a satellite at the given geocentric ECI position
// (kilometers) is illuminated by the Sun at time t.
//
// Uses a cylindrical umbra model: the satellite is eclipsed when it lies on
// the anti-Sun side of Earth and within one Earth radius of the Earth-Sun
// axis. The penumbra is ignored; for naked-eye visibility the transition is
// fast enough that the cylinder approximation shifts boundaries by only a
// few seconds.
func Sunlit(posECIKm Vec3, t time.Time) bool {
	sun := SunDirectionECI(t)

	along := posECIKm.Dot(sun)
	if along >= 0 {
		// Sun side of the Earth, always lit.
		return true
	}

	r2 := posECIKm.Dot(posECIKm)
	perp := math.Sqrt(r2 - along*along)
	return perp > EarthRadiusKm
}
