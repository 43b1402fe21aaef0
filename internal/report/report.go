// Package report renders visibility windows as text, HTML, and JSON.
// The engine emits UTC instants; everything here presents them in the
// observer's local timezone.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/natalnetwork/iss-horizon/internal/geo"
	"github.com/natalnetwork/iss-horizon/internal/predict"
)

// Settings captures the thresholds a report was generated with, echoed in
// the header so a reader can judge the numbers.
type Settings struct {
	MinElevationDeg   float64
	TwilightDeg       float64
	SampleStep        time.Duration
	MinWindowDuration time.Duration
}

// FromConstraints copies the reportable fields out of engine constraints.
func FromConstraints(c predict.Constraints) Settings {
	return Settings{
		MinElevationDeg:   c.MinElevationDeg,
		TwilightDeg:       c.TwilightDeg,
		SampleStep:        c.SampleStep,
		MinWindowDuration: c.MinWindowDuration,
	}
}

func (s Settings) label() string {
	return fmt.Sprintf("min_elev=%.1f°, twilight=%.1f°, sample=%ds, min_window=%ds",
		s.MinElevationDeg, s.TwilightDeg,
		int(s.SampleStep.Seconds()), int(s.MinWindowDuration.Seconds()))
}

// MonthRange returns the local month boundaries [start, end) for the given
// year and month in the observer's timezone.
func MonthRange(tz *time.Location, year, month int) (start, end time.Time, err error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month must be in 1..12 (got %d)", month)
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, tz)
	if month == 12 {
		end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, tz)
	} else {
		end = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, tz)
	}
	return start, end, nil
}

// FormatDuration renders a duration as compact mm:ss or h:mm:ss.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// groupByDay buckets windows by local calendar day, returning sorted day
// keys (ISO dates) and the per-day windows in start order.
func groupByDay(windows []predict.Window, tz *time.Location) ([]string, map[string][]predict.Window) {
	byDay := make(map[string][]predict.Window)
	for _, w := range windows {
		day := w.Start.In(tz).Format("2006-01-02")
		byDay[day] = append(byDay[day], w)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		ws := byDay[day]
		sort.Slice(ws, func(i, j int) bool { return ws[i].Start.Before(ws[j].Start) })
	}
	return days, byDay
}

func generatedLabel(loc geo.Location, generatedAt time.Time) string {
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	return generatedAt.In(loc.Timezone).Format("2006-01-02 15:04:05 MST")
}

// WriteText writes the plain-text report grouped by local day.
func WriteText(w io.Writer, loc geo.Location, monthLabel string, windows []predict.Window, settings Settings, projectURL string, generatedAt time.Time) {
	fmt.Fprintf(w, "ISS visibility report for %s\n", loc.ResolvedName)
	fmt.Fprintf(w, "Month: %s\n", monthLabel)
	fmt.Fprintf(w, "Timezone: %s\n", loc.TimezoneName)
	fmt.Fprintf(w, "Generated: %s\n", generatedLabel(loc, generatedAt))
	fmt.Fprintf(w, "Settings: %s\n", settings.label())
	if projectURL != "" {
		fmt.Fprintf(w, "Project: %s\n", projectURL)
	}
	fmt.Fprintln(w)

	if len(windows) == 0 {
		fmt.Fprintln(w, "No ISS windows found for this period.")
		fmt.Fprintln(w, "Check minimum elevation, twilight threshold, and window duration settings.")
		return
	}

	days, byDay := groupByDay(windows, loc.Timezone)
	for _, day := range days {
		fmt.Fprintln(w, day)
		for _, item := range byDay[day] {
			start := item.Start.In(loc.Timezone).Format("15:04:05")
			end := item.End.In(loc.Timezone).Format("15:04:05")
			peakTime := item.PeakTime.In(loc.Timezone).Format("15:04:05")

			fmt.Fprintf(w,
				"  %s -> %s (%s) | visibility %s | start %.1f° %s | peak %.1f° @ %.1f° %s at %s | end %.1f° %s\n",
				start, end, FormatDuration(item.Duration),
				predict.StarsText(item.Stars),
				item.StartAzimuthDeg, item.StartDirection,
				item.PeakElevationDeg, item.PeakAzimuthDeg, item.PeakDirection, peakTime,
				item.EndAzimuthDeg, item.EndDirection,
			)
		}
		fmt.Fprintln(w)
	}
}
