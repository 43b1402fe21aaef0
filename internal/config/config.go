// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the application configuration with env-backed defaults.
type Config struct {
	TLEURL            string
	TLEName           string
	NominatimUA       string
	MinElevationDeg   float64
	TwilightDeg       float64
	SampleStep        time.Duration
	MinWindowDuration time.Duration
	CachePath         string
	ProjectURL        string
}

// Defaults mirror the documented out-of-the-box behavior: a 12° elevation
// floor, nautical-ish darkness at -10°, 10-second sampling, and a 40-second
// minimum window.
func Default() Config {
	return Config{
		TLEURL:            "https://celestrak.org/NORAD/elements/gp.php?GROUP=stations&FORMAT=tle",
		TLEName:           "ISS (ZARYA)",
		NominatimUA:       "iss-horizon/1.0 (contact: set-your-email)",
		MinElevationDeg:   12.0,
		TwilightDeg:       -10.0,
		SampleStep:        10 * time.Second,
		MinWindowDuration: 40 * time.Second,
		CachePath:         "",
		ProjectURL:        "",
	}
}

// LoadEnvFile loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from environment variables on top of defaults.
func FromEnv() Config {
	cfg := Default()

	cfg.TLEURL = envString("ISS_TLE_URL", cfg.TLEURL)
	cfg.TLEName = envString("ISS_TLE_NAME", cfg.TLEName)
	cfg.NominatimUA = envString("NOMINATIM_USER_AGENT", cfg.NominatimUA)
	cfg.MinElevationDeg = envFloat("ISS_MIN_ELEV_DEG", cfg.MinElevationDeg)
	cfg.TwilightDeg = envFloat("ISS_TWILIGHT_DEG", cfg.TwilightDeg)
	cfg.SampleStep = envSeconds("ISS_SAMPLE_SECONDS", cfg.SampleStep)
	cfg.MinWindowDuration = envSeconds("ISS_MIN_WINDOW_SECONDS", cfg.MinWindowDuration)
	cfg.CachePath = envString("ISS_CACHE_PATH", cfg.CachePath)
	cfg.ProjectURL = strings.TrimSpace(envString("ISS_PROJECT_URL", cfg.ProjectURL))

	return cfg
}

// SMTP holds mail transport configuration for report delivery.
type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	TLSMode  string // "ssl" or "starttls"
}

// SMTPFromEnv builds SMTP configuration from the environment. The TLS mode
// defaults by port convention: 465 implies ssl, anything else starttls.
func SMTPFromEnv() SMTP {
	port := int(envFloat("SMTP_PORT", 465))
	user := os.Getenv("SMTP_USER")

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		if user != "" {
			from = user
		} else {
			from = "iss-horizon@localhost"
		}
	}

	tlsMode := strings.ToLower(os.Getenv("SMTP_TLS_MODE"))
	if tlsMode == "" {
		if port == 465 {
			tlsMode = "ssl"
		} else {
			tlsMode = "starttls"
		}
	}

	return SMTP{
		Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		Port:     port,
		User:     user,
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     from,
		TLSMode:  tlsMode,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return time.Duration(parsed) * time.Second
}
