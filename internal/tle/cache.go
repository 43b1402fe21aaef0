package tle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultCacheMaxAge is how long a cached element set stays usable.
// ISS elements drift enough to matter for pass timing after about a day.
const DefaultCacheMaxAge = 24 * time.Hour

// Cache persists fetched element sets in SQLite so repeated runs (and the
// monthly timer) don't hammer CelesTrak.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (and if needed initializes) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening tle cache: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tle_sets (
			name       TEXT NOT NULL,
			source_url TEXT NOT NULL,
			line1      TEXT NOT NULL,
			line2      TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (name, source_url)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tle_sets table: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached TLE for (name, url) if present and younger than
// maxAge. The second return reports whether a usable entry was found.
func (c *Cache) Get(ctx context.Context, name, url string, maxAge time.Duration) (TLE, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT line1, line2, fetched_at FROM tle_sets WHERE name = ? AND source_url = ?`,
		name, url)

	var line1, line2 string
	var fetchedAt int64
	if err := row.Scan(&line1, &line2, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TLE{}, false, nil
		}
		return TLE{}, false, fmt.Errorf("reading tle cache: %w", err)
	}

	if time.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return TLE{}, false, nil
	}
	return TLE{Name: name, Line1: line1, Line2: line2}, true, nil
}

// Put stores or refreshes a fetched element set.
func (c *Cache) Put(ctx context.Context, t TLE, url string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO tle_sets (name, source_url, line1, line2, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name, source_url) DO UPDATE SET
			line1 = excluded.line1,
			line2 = excluded.line2,
			fetched_at = excluded.fetched_at
	`, t.Name, url, t.Line1, t.Line2, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing tle cache: %w", err)
	}
	return nil
}

// Source combines the fetcher with an optional disk cache. With no cache it
// degrades to plain fetching (plus the fetcher's own fallback chain).
type Source struct {
	Fetcher *Fetcher
	Cache   *Cache
	MaxAge  time.Duration
}

// Get returns a usable TLE for the named satellite, consulting the cache
// before the network and refreshing it after a successful fetch.
func (s *Source) Get(ctx context.Context, name string) (TLE, error) {
	maxAge := s.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}

	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(ctx, name, s.Fetcher.URL(), maxAge); err == nil && ok {
			return cached, nil
		}
	}

	fetched, err := s.Fetcher.Fetch(ctx, name)
	if err != nil {
		return TLE{}, err
	}

	if s.Cache != nil {
		// A failed cache write shouldn't fail the run.
		_ = s.Cache.Put(ctx, fetched, s.Fetcher.URL())
	}
	return fetched, nil
}
