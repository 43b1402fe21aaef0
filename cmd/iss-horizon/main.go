// Command iss-horizon predicts naked-eye ISS visibility windows for a
// location: the station must be above a minimum elevation, sunlit, and the
// observer in twilight-or-darker sky.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/natalnetwork/iss-horizon/internal/config"
	"github.com/natalnetwork/iss-horizon/internal/ephem"
	"github.com/natalnetwork/iss-horizon/internal/geo"
	"github.com/natalnetwork/iss-horizon/internal/logging"
	"github.com/natalnetwork/iss-horizon/internal/mailer"
	"github.com/natalnetwork/iss-horizon/internal/predict"
	"github.com/natalnetwork/iss-horizon/internal/report"
	"github.com/natalnetwork/iss-horizon/internal/tle"
	"github.com/natalnetwork/iss-horizon/internal/ui"
	"github.com/natalnetwork/iss-horizon/internal/version"
)

const usageText = `iss-horizon %s - ISS naked-eye visibility predictor

Usage:
  iss-horizon next   --location "City, Country" [--hours N] [--json]
  iss-horizon month  --location "City, Country" [--year Y --month M | --next]
                     [--html-out FILE] [--send --email-to ADDR]
  iss-horizon watch  --location "City, Country" [--hours N]
  iss-horizon config
  iss-horizon setup  [--test-email]

Environment (or .env file): ISS_LOCATION, ISS_TLE_URL, ISS_TLE_NAME,
ISS_MIN_ELEV_DEG, ISS_TWILIGHT_DEG, ISS_SAMPLE_SECONDS,
ISS_MIN_WINDOW_SECONDS, ISS_CACHE_PATH, ISS_PROJECT_URL,
NOMINATIM_USER_AGENT, SMTP_HOST/PORT/USER/PASSWORD/FROM/TLS_MODE, REPORT_TO.
`

func usage() {
	fmt.Fprintf(os.Stderr, usageText, version.Version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := config.LoadEnvFile(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	var err error
	switch os.Args[1] {
	case "next":
		err = runNext(ctx, os.Args[2:])
	case "month":
		err = runMonth(ctx, os.Args[2:])
	case "watch":
		err = runWatch(ctx, os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "setup":
		err = runSetup(ctx, os.Args[2:])
	case "version", "--version", "-v":
		fmt.Println("iss-horizon", version.Version)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags registers the prediction flags shared by next/month/watch,
// defaulting from the environment-backed config.
func commonFlags(fs *flag.FlagSet, cfg *config.Config) (location *string, logLevel *string) {
	location = fs.String("location", os.Getenv("ISS_LOCATION"), "Observer location query, e.g. \"Natal, RN, Brazil\"")
	logLevel = fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Float64Var(&cfg.MinElevationDeg, "min-elev", cfg.MinElevationDeg, "Minimum elevation in degrees")
	fs.Float64Var(&cfg.TwilightDeg, "twilight", cfg.TwilightDeg, "Maximum sun altitude in degrees (must be <= 0)")
	fs.DurationVar(&cfg.SampleStep, "sample", cfg.SampleStep, "Sampling step (e.g. 10s)")
	fs.DurationVar(&cfg.MinWindowDuration, "min-window", cfg.MinWindowDuration, "Minimum window duration (e.g. 40s)")
	return location, logLevel
}

// buildEngine fetches orbital elements and assembles the prediction engine.
func buildEngine(ctx context.Context, cfg config.Config, logger *logging.Logger) (*predict.Engine, error) {
	source := &tle.Source{
		Fetcher: tle.NewFetcher(tle.WithURL(cfg.TLEURL)),
	}
	if cfg.CachePath != "" {
		cache, err := tle.OpenCache(cfg.CachePath)
		if err != nil {
			logger.Warn("TLE cache unavailable: %v", err)
		} else {
			source.Cache = cache
		}
	}

	elements, err := source.Get(ctx, cfg.TLEName)
	if err != nil {
		return nil, err
	}
	logger.Debug("using elements for %s", elements.Name)

	provider := ephem.NewSGP4Provider(elements.Name, elements.Line1, elements.Line2)
	cons := predict.Constraints{
		MinElevationDeg:   cfg.MinElevationDeg,
		TwilightDeg:       cfg.TwilightDeg,
		SampleStep:        cfg.SampleStep,
		MinWindowDuration: cfg.MinWindowDuration,
	}

	return predict.NewEngine(provider, cons, predict.WithLogger(logger)), nil
}

func resolveLocation(ctx context.Context, cfg config.Config, query string) (geo.Location, error) {
	if strings.TrimSpace(query) == "" {
		return geo.Location{}, fmt.Errorf("a location is required (use --location or set ISS_LOCATION)")
	}
	resolver := geo.NewResolver(geo.WithUserAgent(cfg.NominatimUA))
	return resolver.Resolve(ctx, query)
}

func runNext(ctx context.Context, args []string) error {
	cfg := config.FromEnv()
	fs := flag.NewFlagSet("next", flag.ExitOnError)
	location, logLevel := commonFlags(fs, &cfg)
	hours := fs.Int("hours", 72, "Look-ahead horizon in hours")
	jsonOut := fs.Bool("json", false, "Emit JSON instead of text")
	fs.Parse(args)

	logger := logging.New(logging.ParseLevel(*logLevel))

	loc, err := resolveLocation(ctx, cfg, *location)
	if err != nil {
		return err
	}

	engine, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	windows, err := engine.WindowsNextHours(loc.Observer(), *hours)
	if err != nil {
		return err
	}

	if *jsonOut {
		return report.WriteJSON(os.Stdout, loc, windows)
	}

	label := fmt.Sprintf("next %d hours", *hours)
	report.WriteText(os.Stdout, loc, label, windows,
		report.FromConstraints(engine.Constraints()), cfg.ProjectURL, time.Now())
	return nil
}

func runMonth(ctx context.Context, args []string) error {
	cfg := config.FromEnv()
	fs := flag.NewFlagSet("month", flag.ExitOnError)
	location, logLevel := commonFlags(fs, &cfg)
	year := fs.Int("year", 0, "Report year (defaults to current)")
	month := fs.Int("month", 0, "Report month 1-12 (defaults to current)")
	nextMonth := fs.Bool("next", false, "Report the month after the current one")
	htmlOut := fs.String("html-out", "", "Also write an HTML report to this file")
	send := fs.Bool("send", false, "Email the report via SMTP")
	emailTo := fs.String("email-to", os.Getenv("REPORT_TO"), "Report recipient address")
	fs.Parse(args)

	logger := logging.New(logging.ParseLevel(*logLevel))

	loc, err := resolveLocation(ctx, cfg, *location)
	if err != nil {
		return err
	}

	now := time.Now().In(loc.Timezone)
	y, m := *year, *month
	if y == 0 {
		y = now.Year()
	}
	if m == 0 {
		m = int(now.Month())
	}
	if *nextMonth {
		y, m = now.Year(), int(now.Month())+1
		if m > 12 {
			y, m = y+1, 1
		}
	}

	start, end, err := report.MonthRange(loc.Timezone, y, m)
	if err != nil {
		return err
	}
	monthLabel := start.Format("January 2006")

	engine, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("predicting %s for %s", monthLabel, loc.ResolvedName)
	windows, err := engine.WindowsBetween(loc.Observer(), start.UTC(), end.UTC())
	if err != nil {
		return err
	}

	settings := report.FromConstraints(engine.Constraints())
	generatedAt := time.Now()

	var text strings.Builder
	report.WriteText(&text, loc, monthLabel, windows, settings, cfg.ProjectURL, generatedAt)
	fmt.Print(text.String())

	var html strings.Builder
	needHTML := *htmlOut != "" || *send
	if needHTML {
		report.WriteHTML(&html, loc, monthLabel, windows, settings, cfg.ProjectURL, generatedAt)
	}

	if *htmlOut != "" {
		pretty := report.PrettyHTML(html.String())
		if err := os.WriteFile(*htmlOut, []byte(pretty), 0o644); err != nil {
			return fmt.Errorf("write HTML report: %w", err)
		}
		logger.Info("wrote HTML report to %s", *htmlOut)
	}

	if *send {
		if *emailTo == "" {
			return fmt.Errorf("--send requires --email-to or REPORT_TO")
		}
		subject := fmt.Sprintf("ISS visibility report %s - %s", start.Format("2006-01"), loc.ResolvedName)
		if err := mailer.Send(config.SMTPFromEnv(), subject, text.String(), *emailTo, html.String()); err != nil {
			return err
		}
		logger.Info("report sent to %s", *emailTo)
	}
	return nil
}

func runWatch(ctx context.Context, args []string) error {
	cfg := config.FromEnv()
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	location, logLevel := commonFlags(fs, &cfg)
	hours := fs.Int("hours", 48, "Look-ahead horizon in hours")
	fs.Parse(args)

	logger := logging.New(logging.ParseLevel(*logLevel))
	logger.SetOutput(io.Discard)

	loc, err := resolveLocation(ctx, cfg, *location)
	if err != nil {
		return err
	}

	engine, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	model := ui.New(engine, loc, *hours)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// runConfig prints the effective configuration as JSON with secrets masked.
func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	fs.Parse(args)

	cfg := config.FromEnv()
	smtp := config.SMTPFromEnv()

	password := ""
	if smtp.Password != "" {
		password = "********"
	}

	out := map[string]any{
		"location":           os.Getenv("ISS_LOCATION"),
		"tle_url":            cfg.TLEURL,
		"tle_name":           cfg.TLEName,
		"nominatim_ua":       cfg.NominatimUA,
		"min_elev_deg":       cfg.MinElevationDeg,
		"twilight_deg":       cfg.TwilightDeg,
		"sample_seconds":     int(cfg.SampleStep.Seconds()),
		"min_window_seconds": int(cfg.MinWindowDuration.Seconds()),
		"cache_path":         cfg.CachePath,
		"project_url":        cfg.ProjectURL,
		"report_to":          os.Getenv("REPORT_TO"),
		"smtp": map[string]any{
			"host":     smtp.Host,
			"port":     smtp.Port,
			"user":     smtp.User,
			"password": password,
			"from":     smtp.From,
			"tls_mode": smtp.TLSMode,
		},
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// runSetup interactively writes a .env file, suggesting a location from the
// caller's public IP.
func runSetup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	testEmail := fs.Bool("test-email", false, "Send a test email after configuring SMTP")
	envPath := fs.String("env-file", ".env", "Path of the env file to write")
	fs.Parse(args)

	in := bufio.NewScanner(os.Stdin)
	prompt := func(label, fallback string) string {
		if fallback != "" {
			fmt.Printf("%s [%s]: ", label, fallback)
		} else {
			fmt.Printf("%s: ", label)
		}
		if !in.Scan() {
			return fallback
		}
		answer := strings.TrimSpace(in.Text())
		if answer == "" {
			return fallback
		}
		return answer
	}

	fmt.Println("iss-horizon setup - answers are written to", *envPath)

	suggested := suggestLocation(ctx)
	if suggested != "" {
		fmt.Printf("Detected location from your IP: %s\n", suggested)
	}

	entries := []struct{ key, value string }{
		{"ISS_LOCATION", prompt("Observer location", suggested)},
		{"ISS_MIN_ELEV_DEG", prompt("Minimum elevation (degrees)", "12.0")},
		{"ISS_TWILIGHT_DEG", prompt("Twilight threshold (degrees, <= 0)", "-10.0")},
		{"ISS_SAMPLE_SECONDS", prompt("Sampling step (seconds)", "10")},
		{"ISS_MIN_WINDOW_SECONDS", prompt("Minimum window (seconds)", "40")},
		{"NOMINATIM_USER_AGENT", prompt("Nominatim user agent (include contact)", config.Default().NominatimUA)},
		{"ISS_CACHE_PATH", prompt("TLE cache path (empty to disable)", "iss-horizon.db")},
	}

	if strings.EqualFold(prompt("Configure SMTP for monthly reports? (y/N)", "n"), "y") {
		entries = append(entries,
			struct{ key, value string }{"SMTP_HOST", prompt("SMTP host", "")},
			struct{ key, value string }{"SMTP_PORT", prompt("SMTP port", "465")},
			struct{ key, value string }{"SMTP_USER", prompt("SMTP user", "")},
			struct{ key, value string }{"SMTP_PASSWORD", prompt("SMTP password", "")},
			struct{ key, value string }{"SMTP_FROM", prompt("From address", "")},
			struct{ key, value string }{"REPORT_TO", prompt("Report recipient", "")},
		)
	}

	var buf strings.Builder
	for _, e := range entries {
		if e.value == "" {
			continue
		}
		fmt.Fprintf(&buf, "%s=%s\n", e.key, e.value)
	}
	if err := os.WriteFile(*envPath, []byte(buf.String()), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", *envPath, err)
	}
	fmt.Println("Wrote", *envPath)

	if *testEmail {
		if err := config.LoadEnvFile(*envPath); err != nil {
			return err
		}
		to := os.Getenv("REPORT_TO")
		if to == "" {
			return fmt.Errorf("test email requires REPORT_TO")
		}
		err := mailer.Send(config.SMTPFromEnv(),
			"iss-horizon test email",
			"SMTP configuration works. Monthly ISS reports will arrive at this address.",
			to, "")
		if err != nil {
			return err
		}
		fmt.Println("Test email sent to", to)
	}
	return nil
}

// suggestLocation asks public IP-geolocation services for a "City, Region,
// Country" string. Best effort only; an empty string means no suggestion.
func suggestLocation(ctx context.Context) string {
	client := &http.Client{Timeout: 5 * time.Second}

	type ipInfo struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country_name"`
		// ipwho.is uses "country" instead of "country_name".
		CountryAlt string `json:"country"`
	}

	for _, endpoint := range []string{"https://ipapi.co/json/", "https://ipwho.is/"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			continue
		}

		var info ipInfo
		if err := json.Unmarshal(body, &info); err != nil {
			continue
		}
		country := info.Country
		if country == "" {
			country = info.CountryAlt
		}

		parts := make([]string, 0, 3)
		for _, p := range []string{info.City, info.Region, country} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return ""
}
