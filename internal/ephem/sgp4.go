package ephem

import (
	"errors"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/natalnetwork/iss-horizon/internal/astro"
)

// ErrPropagation indicates SGP4 produced an unusable position, usually from
// a stale or malformed element set or an instant far outside its validity.
var ErrPropagation = errors.New("sgp4 propagation failed")

// SGP4Provider propagates a two-line element set with SGP4 and derives
// topocentric look angles, illumination, and Sun altitude. The element set
// is loaded at construction and owned by the provider for its lifetime;
// there is no process-wide shared state.
type SGP4Provider struct {
	name string
	sat  satellite.Satellite
}

// NewSGP4Provider builds a provider from TLE lines. The lines should have
// been validated by the tle package; SGP4 itself does not report parse
// failures, it produces degenerate positions instead, which Observe turns
// into ErrPropagation.
func NewSGP4Provider(name, line1, line2 string) *SGP4Provider {
	return &SGP4Provider{
		name: name,
		sat:  satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
	}
}

// Name returns the satellite name the provider was built for.
func (p *SGP4Provider) Name() string {
	return p.name
}

// Observe propagates the satellite to t and computes its topocentric state.
func (p *SGP4Provider) Observe(obs astro.Observer, t time.Time) (State, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	if !finiteVector(pos) || vectorNorm(pos) < astro.EarthRadiusKm {
		return State{}, fmt.Errorf("%w: %s at %s", ErrPropagation, p.name, t.Format(time.RFC3339))
	}

	jday := satellite.JDay(year, int(month), day, hour, min, sec)
	site := satellite.LatLong{
		Latitude:  obs.LatDeg * math.Pi / 180,
		Longitude: obs.LonDeg * math.Pi / 180,
	}

	// go-satellite works in radians and kilometres.
	look := satellite.ECIToLookAngles(pos, site, obs.ElevationM/1000.0, jday)

	return State{
		AltitudeDeg: look.El * 180 / math.Pi,
		AzimuthDeg:  normalizeAz(look.Az * 180 / math.Pi),
		RangeKm:     look.Rg,
		Sunlit:      astro.Sunlit(astro.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}, t),
	}, nil
}

// SunAltitude returns the Sun's altitude for the observer at t.
func (p *SGP4Provider) SunAltitude(obs astro.Observer, t time.Time) (float64, error) {
	return astro.SunAltitude(obs, t.UTC()), nil
}

func finiteVector(v satellite.Vector3) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

func vectorNorm(v satellite.Vector3) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func normalizeAz(az float64) float64 {
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	return az
}
