package report

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/natalnetwork/iss-horizon/internal/geo"
	"github.com/natalnetwork/iss-horizon/internal/predict"
)

const (
	htmlBodyStyle = "body{font-family:Arial,sans-serif;color:#1f2937;margin:0;" +
		"padding:24px;background:#f8fafc;}"
	htmlMainStyle = "main{max-width:980px;margin:0 auto;background:#ffffff;" +
		"padding:20px;border:1px solid #e5e7eb;}"
	htmlCommonStyle = "h1{font-size:20px;margin:0;}" +
		"p{margin:4px 0 0;}" +
		".hero{background:#0f172a;color:#f8fafc;padding:16px;border-radius:8px;}" +
		".hero-meta{font-size:13px;color:#cbd5e1;margin-top:8px;}" +
		".pill{display:inline-block;background:#e2e8f0;color:#1e293b;padding:4px 8px;" +
		"border-radius:999px;font-size:12px;margin-right:8px;margin-top:10px;}" +
		".day-title{font-size:16px;margin:0 0 8px;color:#111827;}" +
		"table{width:100%;border-collapse:collapse;font-size:13px;}" +
		"thead tr{background:#f3f4f6;text-align:left;}" +
		"th{padding:8px;border:1px solid #e5e7eb;color:#374151;}" +
		"td{padding:8px;border:1px solid #e5e7eb;vertical-align:top;}" +
		".stars{font-weight:700;color:#b45309;}" +
		".footer{font-size:12px;color:#6b7280;margin-top:16px;}"
)

// WriteHTML writes an email-friendly HTML report grouped by local day.
func WriteHTML(w io.Writer, loc geo.Location, monthLabel string, windows []predict.Window, settings Settings, projectURL string, generatedAt time.Time) {
	title := html.EscapeString("ISS visibility report for " + loc.ResolvedName)
	month := html.EscapeString(monthLabel)
	tzName := html.EscapeString(loc.TimezoneName)
	generated := html.EscapeString(generatedLabel(loc, generatedAt))
	settingsText := html.EscapeString(settings.label())

	fmt.Fprint(w, "<!doctype html><html><head><meta charset='utf-8'><style>")
	fmt.Fprint(w, htmlBodyStyle, htmlMainStyle, htmlCommonStyle)
	fmt.Fprint(w, "</style></head><body><main>")

	fmt.Fprintf(w, "<header class='hero'><h1>%s</h1>", title)
	fmt.Fprintf(w, "<div class='hero-meta'>Month: %s · Timezone: %s · Generated: %s</div>",
		month, tzName, generated)

	if len(windows) == 0 {
		fmt.Fprint(w, "</header>")
		fmt.Fprintf(w, "<p class='footer'>Settings: %s</p>", settingsText)
		writeProjectFooter(w, projectURL)
		fmt.Fprint(w, "<p style='margin-top:16px;'>No ISS windows found for this period.<br>")
		fmt.Fprint(w, "Check minimum elevation, twilight threshold, and window duration settings.</p>")
		fmt.Fprint(w, "</main></body></html>")
		return
	}

	days, byDay := groupByDay(windows, loc.Timezone)
	fmt.Fprintf(w, "<span class='pill'>%d windows</span><span class='pill'>%d days</span></header>",
		len(windows), len(days))

	for _, day := range days {
		fmt.Fprintf(w, "<section style='margin-top:18px;'><h2 class='day-title'>%s</h2>",
			html.EscapeString(day))
		fmt.Fprint(w, "<table><thead><tr>",
			"<th>Window</th><th>Duration</th><th>Visibility</th>",
			"<th>Start az/dir</th><th>Peak</th><th>End az/dir</th>",
			"</tr></thead><tbody>")

		for _, item := range byDay[day] {
			start := item.Start.In(loc.Timezone).Format("15:04:05")
			end := item.End.In(loc.Timezone).Format("15:04:05")
			peakTime := item.PeakTime.In(loc.Timezone).Format("15:04:05")

			fmt.Fprint(w, "<tr>")
			fmt.Fprintf(w, "<td>%s → %s</td>", start, end)
			fmt.Fprintf(w, "<td>%s</td>", FormatDuration(item.Duration))
			fmt.Fprintf(w, "<td><span class='stars'>%s</span></td>", predict.StarsText(item.Stars))
			fmt.Fprintf(w, "<td>%.1f° %s</td>", item.StartAzimuthDeg, html.EscapeString(item.StartDirection))
			fmt.Fprintf(w, "<td>%.1f° @ %.1f° %s at %s</td>",
				item.PeakElevationDeg, item.PeakAzimuthDeg,
				html.EscapeString(item.PeakDirection), peakTime)
			fmt.Fprintf(w, "<td>%.1f° %s</td>", item.EndAzimuthDeg, html.EscapeString(item.EndDirection))
			fmt.Fprint(w, "</tr>")
		}
		fmt.Fprint(w, "</tbody></table></section>")
	}

	fmt.Fprintf(w, "<p class='footer'>Settings: %s</p>", settingsText)
	writeProjectFooter(w, projectURL)
	fmt.Fprintf(w, "<p class='footer'>Generated by iss-horizon at %s</p>", generated)
	fmt.Fprint(w, "</main></body></html>")
}

func writeProjectFooter(w io.Writer, projectURL string) {
	if projectURL == "" {
		return
	}
	escaped := html.EscapeString(projectURL)
	fmt.Fprintf(w, "<p class='footer'>Project: <a href='%s'>%s</a></p>", escaped, escaped)
}

// PrettyHTML pretty-prints the compact HTML output for file readability.
func PrettyHTML(compact string) string {
	voidTags := map[string]bool{
		"meta": true, "br": true, "hr": true, "img": true, "input": true, "link": true,
	}

	tokens := strings.Split(strings.ReplaceAll(compact, "><", ">\n<"), "\n")
	indent := 0
	var out strings.Builder

	for _, token := range tokens {
		line := strings.TrimSpace(token)
		if strings.HasPrefix(line, "</") && indent > 0 {
			indent--
		}

		out.WriteString(strings.Repeat("  ", indent))
		out.WriteString(line)
		out.WriteByte('\n')

		if !strings.HasPrefix(line, "<") || strings.HasPrefix(line, "</") {
			continue
		}
		if strings.HasPrefix(line, "<!") || strings.HasSuffix(line, "/>") {
			continue
		}

		tagName := strings.ToLower(strings.Trim(strings.SplitN(line[1:], ">", 2)[0], "/"))
		if i := strings.IndexAny(tagName, " \t"); i >= 0 {
			tagName = tagName[:i]
		}
		if voidTags[tagName] {
			continue
		}
		if strings.Contains(line[1:], "</") {
			continue
		}

		indent++
	}

	return out.String()
}
