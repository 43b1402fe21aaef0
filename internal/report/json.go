package report

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/natalnetwork/iss-horizon/internal/geo"
	"github.com/natalnetwork/iss-horizon/internal/predict"
)

// WindowJSON is the machine-readable shape of one visibility window.
// Instants are local to the observer, ISO 8601 with offset.
type WindowJSON struct {
	StartLocal       string  `json:"start_local"`
	EndLocal         string  `json:"end_local"`
	PeakLocal        string  `json:"peak_local"`
	DurationSeconds  int     `json:"duration_seconds"`
	PeakElevationDeg float64 `json:"peak_elevation_deg"`
	StartAzimuthDeg  float64 `json:"start_azimuth_deg"`
	PeakAzimuthDeg   float64 `json:"peak_azimuth_deg"`
	EndAzimuthDeg    float64 `json:"end_azimuth_deg"`
	StartDirection   string  `json:"start_direction"`
	PeakDirection    string  `json:"peak_direction"`
	EndDirection     string  `json:"end_direction"`
	VisibilityStars  int     `json:"visibility_stars"`
	VisibilityLabel  string  `json:"visibility_label"`
}

// LocationJSON describes the resolved observer site.
type LocationJSON struct {
	Query        string  `json:"query"`
	ResolvedName string  `json:"resolved_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Timezone     string  `json:"timezone"`
}

// Payload is the top-level JSON document for the next-windows command.
type Payload struct {
	Location LocationJSON `json:"location"`
	Count    int          `json:"count"`
	Windows  []WindowJSON `json:"windows"`
}

// BuildPayload converts engine output into the JSON document shape.
func BuildPayload(loc geo.Location, windows []predict.Window) Payload {
	out := make([]WindowJSON, 0, len(windows))
	for _, w := range windows {
		out = append(out, WindowJSON{
			StartLocal:       w.Start.In(loc.Timezone).Format(time.RFC3339),
			EndLocal:         w.End.In(loc.Timezone).Format(time.RFC3339),
			PeakLocal:        w.PeakTime.In(loc.Timezone).Format(time.RFC3339),
			DurationSeconds:  int(w.Duration.Seconds()),
			PeakElevationDeg: round2(w.PeakElevationDeg),
			StartAzimuthDeg:  round2(w.StartAzimuthDeg),
			PeakAzimuthDeg:   round2(w.PeakAzimuthDeg),
			EndAzimuthDeg:    round2(w.EndAzimuthDeg),
			StartDirection:   w.StartDirection,
			PeakDirection:    w.PeakDirection,
			EndDirection:     w.EndDirection,
			VisibilityStars:  w.Stars,
			VisibilityLabel:  predict.StarsText(w.Stars),
		})
	}

	return Payload{
		Location: LocationJSON{
			Query:        loc.Query,
			ResolvedName: loc.ResolvedName,
			Latitude:     loc.Latitude,
			Longitude:    loc.Longitude,
			Timezone:     loc.TimezoneName,
		},
		Count:   len(windows),
		Windows: out,
	}
}

// WriteJSON writes the indented JSON payload.
func WriteJSON(w io.Writer, loc geo.Location, windows []predict.Window) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildPayload(loc, windows))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
