// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "1.0.0"

// Milestones:
// 1.0.0 - Bisection boundary refinement, darkness-aware star ratings, TUI watch mode
// 0.3.0 - SQLite TLE cache, monthly email reports, HTML output
// 0.2.0 - SGP4 ephemeris provider, Nominatim location resolver
// 0.1.0 - Initial release: next-windows prediction, text reports
