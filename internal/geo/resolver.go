// Package geo resolves human-readable place names to coordinates and a
// timezone using Nominatim and an offline timezone index.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"

	"github.com/natalnetwork/iss-horizon/internal/astro"
)

const (
	// DefaultNominatimURL is the public OSM Nominatim search endpoint.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

	// DefaultTimeout for geocoding requests.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies this tool to Nominatim, which requires a
	// contactable agent string.
	DefaultUserAgent = "iss-horizon/1.0 (contact: set-your-email)"
)

// Resolution errors.
var (
	ErrEmptyQuery = errors.New("location query must not be empty")
	ErrNotFound   = errors.New("location not found")
	ErrNoTimezone = errors.New("timezone could not be resolved")
)

// Location is a resolved observer site. Immutable once resolved.
type Location struct {
	Query        string
	ResolvedName string
	Latitude     float64
	Longitude    float64
	TimezoneName string
	Timezone     *time.Location
}

// Observer converts the resolved site into an observer for prediction.
func (l Location) Observer() astro.Observer {
	return astro.Observer{
		LatDeg: l.Latitude,
		LonDeg: l.Longitude,
		Name:   l.ResolvedName,
	}
}

// Resolver geocodes location queries and maps coordinates to timezones.
// Results are cached per query for the resolver's lifetime.
type Resolver struct {
	client    *http.Client
	endpoint  string
	userAgent string
	timeout   time.Duration

	tzOnce   sync.Once
	tzFinder tzf.F
	tzErr    error

	mu    sync.Mutex
	cache map[string]Location
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEndpoint sets a custom Nominatim-compatible endpoint.
func WithEndpoint(endpoint string) ResolverOption {
	return func(r *Resolver) {
		r.endpoint = endpoint
	}
}

// WithUserAgent sets the User-Agent sent to Nominatim.
func WithUserAgent(ua string) ResolverOption {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithTimezoneFinder overrides the timezone index, mainly for tests.
func WithTimezoneFinder(f tzf.F) ResolverOption {
	return func(r *Resolver) {
		r.tzFinder = f
	}
}

// NewResolver creates a location resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		endpoint:  DefaultNominatimURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		cache:     make(map[string]Location),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: r.timeout}
	}
	return r
}

// nominatimResult mirrors the fields we use from a Nominatim search hit.
// Nominatim serializes coordinates as strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve maps a query like "Natal, RN, Brazil" to coordinates and a
// loadable timezone.
func (r *Resolver) Resolve(ctx context.Context, query string) (Location, error) {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return Location{}, ErrEmptyQuery
	}

	r.mu.Lock()
	cached, ok := r.cache[normalized]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	hit, err := r.geocode(ctx, normalized)
	if err != nil {
		return Location{}, err
	}

	lat, err := strconv.ParseFloat(hit.Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding response latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(hit.Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding response longitude: %w", err)
	}

	tzName, err := r.timezoneAt(lat, lon)
	if err != nil {
		return Location{}, err
	}
	zone, err := time.LoadLocation(tzName)
	if err != nil {
		return Location{}, fmt.Errorf("invalid timezone %q for %q: %w", tzName, normalized, err)
	}

	loc := Location{
		Query:        normalized,
		ResolvedName: hit.DisplayName,
		Latitude:     lat,
		Longitude:    lon,
		TimezoneName: tzName,
		Timezone:     zone,
	}

	r.mu.Lock()
	r.cache[normalized] = loc
	r.mu.Unlock()
	return loc, nil
}

func (r *Resolver) geocode(ctx context.Context, query string) (nominatimResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nominatimResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nominatimResult{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nominatimResult{}, fmt.Errorf("geocode %q: unexpected status code %d", query, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nominatimResult{}, fmt.Errorf("read geocoding response: %w", err)
	}

	var hits []nominatimResult
	if err := json.Unmarshal(body, &hits); err != nil {
		return nominatimResult{}, fmt.Errorf("parse geocoding response: %w", err)
	}
	if len(hits) == 0 {
		return nominatimResult{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	return hits[0], nil
}

// timezoneAt maps coordinates to an IANA timezone name using the embedded
// tzf index. The index loads once, on first use.
func (r *Resolver) timezoneAt(lat, lon float64) (string, error) {
	r.tzOnce.Do(func() {
		if r.tzFinder != nil {
			return
		}
		r.tzFinder, r.tzErr = tzf.NewDefaultFinder()
	})
	if r.tzErr != nil {
		return "", fmt.Errorf("loading timezone index: %w", r.tzErr)
	}

	name := r.tzFinder.GetTimezoneName(lon, lat)
	if name == "" {
		return "", fmt.Errorf("%w for (%.4f, %.4f)", ErrNoTimezone, lat, lon)
	}
	return name, nil
}
