package tle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultURL is the CelesTrak GP query for the space stations group.
	DefaultURL = "https://celestrak.org/NORAD/elements/gp.php?GROUP=stations&FORMAT=tle"

	// FallbackURL is the legacy stations file, tried when the primary
	// endpoint rejects the request.
	FallbackURL = "https://celestrak.org/NORAD/elements/stations.txt"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 15 * time.Second
)

// Fetcher retrieves element text over HTTP.
type Fetcher struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithURL sets a custom element-set URL.
func WithURL(url string) FetcherOption {
	return func(f *Fetcher) {
		f.url = url
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates an element-set fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		url:     DefaultURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// URL returns the configured element-set URL.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch retrieves the named satellite's TLE from the configured URL,
// falling back to FallbackURL and then to the bundled element set. The
// bundled set only exists for the default ISS target, so other names fail
// when the network does.
func (f *Fetcher) Fetch(ctx context.Context, name string) (TLE, error) {
	text, err := f.fetchText(ctx, f.url)
	if err == nil {
		if parsed, perr := Parse(name, text); perr == nil {
			return parsed, nil
		} else {
			err = perr
		}
	}

	if f.url != FallbackURL {
		if text, ferr := f.fetchText(ctx, FallbackURL); ferr == nil {
			if parsed, perr := Parse(name, text); perr == nil {
				return parsed, nil
			}
		}
	}

	if bundled, ok := Bundled(name); ok {
		return bundled, nil
	}
	return TLE{}, fmt.Errorf("fetch TLE %q from %s: %w", name, f.url, err)
}

func (f *Fetcher) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "iss-horizon/1.0 (+https://github.com/natalnetwork/iss-horizon)")
	req.Header.Set("Accept", "text/plain,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch element text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}
