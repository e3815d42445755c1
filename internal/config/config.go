package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the local backend used when no override is configured.
const DefaultAPIURL = "http://localhost:8000"

// DefaultUpdateRepo is the GitHub repository releases are published to.
const DefaultUpdateRepo = "abhisek/cbseprep"

// Config holds all client configuration.
type Config struct {
	// APIURL is the backend base URL. The query endpoint lives at
	// {APIURL}/api/v1/query.
	APIURL string

	// DBPath overrides the SQLite location. Empty means store.DefaultDBPath.
	DBPath string

	// LogFile overrides the log location. Empty means store.DefaultLogPath.
	LogFile string

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string

	// RequestTimeout bounds a single backend request. Default: 60s.
	RequestTimeout time.Duration

	// SplashDuration is how long the splash screen stays up before
	// onboarding. Default: 2.5s.
	SplashDuration time.Duration

	// HealthTTL is how long a backend health result is reused. Default: 30s.
	HealthTTL time.Duration

	// UpdateRepo is the "owner/name" GitHub repository `update` installs
	// releases from.
	UpdateRepo string
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		LogLevel:       "info",
		RequestTimeout: 60 * time.Second,
		SplashDuration: 2500 * time.Millisecond,
		HealthTTL:      30 * time.Second,
		UpdateRepo:     DefaultUpdateRepo,
	}
}

// LoadDotEnv loads variables from a .env file in the working directory, if
// one exists. Variables already present in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() Config {
	cfg := Default()

	if u := os.Getenv("CBSEPREP_API_URL"); u != "" {
		cfg.APIURL = u
	}
	if p := os.Getenv("CBSEPREP_DB"); p != "" {
		cfg.DBPath = p
	}
	if p := os.Getenv("CBSEPREP_LOG_FILE"); p != "" {
		cfg.LogFile = p
	}
	if l := os.Getenv("CBSEPREP_LOG_LEVEL"); l != "" {
		cfg.LogLevel = l
	}
	if d, ok := durationEnv("CBSEPREP_REQUEST_TIMEOUT"); ok {
		cfg.RequestTimeout = d
	}
	if d, ok := durationEnv("CBSEPREP_SPLASH_DURATION"); ok {
		cfg.SplashDuration = d
	}
	if d, ok := durationEnv("CBSEPREP_HEALTH_TTL"); ok {
		cfg.HealthTTL = d
	}
	if r := os.Getenv("CBSEPREP_UPDATE_REPO"); r != "" {
		cfg.UpdateRepo = r
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("CBSEPREP_API_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CBSEPREP_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("CBSEPREP_API_URL has no host: %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("CBSEPREP_REQUEST_TIMEOUT must be positive")
	}
	if c.SplashDuration < 0 {
		return fmt.Errorf("CBSEPREP_SPLASH_DURATION must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown CBSEPREP_LOG_LEVEL: %q", c.LogLevel)
	}
	if _, _, err := c.UpdateOwnerRepo(); err != nil {
		return err
	}
	return nil
}

// UpdateOwnerRepo splits UpdateRepo into its owner and name.
func (c Config) UpdateOwnerRepo() (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(c.UpdateRepo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("CBSEPREP_UPDATE_REPO must look like owner/name, got %q", c.UpdateRepo)
	}
	return owner, repo, nil
}

// durationEnv parses a Go duration ("45s", "1m") from key. Unparsable values
// are ignored so a typo falls back to the default.
func durationEnv(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
