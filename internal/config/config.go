// Package config loads the suite configuration from the process environment.
// BASE_URL, USER_EMAIL and USER_PASSWORD are required and exposed exactly as
// set; everything else has a default. A .env file in the working directory (or ENV_FILE) is loaded first
// and never overrides variables that are already set.
//
// The returned Config is a plain value passed down to callers. There is no
// package-level instance.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kuitang/builder-e2e/internal/errs"
	"github.com/kuitang/builder-e2e/internal/logutil"
	"github.com/kuitang/builder-e2e/internal/urlutil"
)

// Required environment variables, in the order they are checked.
const (
	EnvBaseURL      = "BASE_URL"
	EnvUserEmail    = "USER_EMAIL"
	EnvUserPassword = "USER_PASSWORD"
)

const (
	defaultStorageStatePath = "storageState.json"
	defaultResultsDir       = "./test-results"
	defaultBrowser          = "chromium"
	defaultAWSRegion        = "auto"

	DefaultActionTimeout    = 5 * time.Second
	DefaultDashboardTimeout = 10 * time.Second
	DefaultSetupTimeout     = 60 * time.Second
)

// RequiredVars lists the variables Load refuses to run without.
var RequiredVars = []string{EnvBaseURL, EnvUserEmail, EnvUserPassword}

// Config holds all suite configuration.
type Config struct {
	// Target application and credentials (required)
	BaseURL      string
	UserEmail    string
	UserPassword string

	// Session and artifacts
	StorageStatePath string // STORAGE_STATE_PATH
	ResultsDir       string // RESULTS_DIR

	// Browser
	Browser  string // BROWSER: chromium, firefox or webkit
	Headless bool   // HEADLESS

	// Bounded waits
	ActionTimeout    time.Duration // ACTION_TIMEOUT: visibility/enabled waits and clicks
	DashboardTimeout time.Duration // DASHBOARD_TIMEOUT: loading indicator
	SetupTimeout     time.Duration // SETUP_TIMEOUT: bootstrap navigation and network idle

	// Artifact upload (optional)
	ArtifactsBucket    string // ARTIFACTS_BUCKET
	ArtifactsPrefix    string // ARTIFACTS_PREFIX
	AWSEndpointS3      string // AWS_ENDPOINT_URL_S3
	AWSRegion          string // AWS_REGION
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY
	ArtifactsUploadRPS float64 // ARTIFACTS_UPLOAD_RPS: 0 is unlimited
}

// ValidationError lists every configuration problem found.
type ValidationError struct {
	Missing []string
	Errors  []string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Missing)+len(e.Errors))
	for _, name := range e.Missing {
		msgs = append(msgs, fmt.Sprintf("Required environment variable %s is missing", name))
	}
	msgs = append(msgs, e.Errors...)
	if len(msgs) == 1 {
		return msgs[0]
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, errs.Wrap(errs.MissingConfig, "failed to load env file", err)
	}
	return FromLookup(os.LookupEnv)
}

func loadDotEnv() error {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	raw := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	get := func(key string) string {
		return strings.TrimSpace(raw(key))
	}
	getOr := func(key, def string) string {
		if v := get(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		BaseURL:            raw(EnvBaseURL),
		UserEmail:          raw(EnvUserEmail),
		UserPassword:       raw(EnvUserPassword),
		StorageStatePath:   getOr("STORAGE_STATE_PATH", defaultStorageStatePath),
		ResultsDir:         getOr("RESULTS_DIR", defaultResultsDir),
		Browser:            strings.ToLower(getOr("BROWSER", defaultBrowser)),
		ArtifactsBucket:    get("ARTIFACTS_BUCKET"),
		ArtifactsPrefix:    strings.Trim(get("ARTIFACTS_PREFIX"), "/"),
		AWSEndpointS3:      get("AWS_ENDPOINT_URL_S3"),
		AWSRegion:          getOr("AWS_REGION", defaultAWSRegion),
		AWSAccessKeyID:     get("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: get("AWS_SECRET_ACCESS_KEY"),
	}

	verr := &ValidationError{}
	for _, name := range RequiredVars {
		if get(name) == "" {
			verr.Missing = append(verr.Missing, name)
		}
	}

	var err error
	if cfg.Headless, err = parseBoolOrDefault(get("HEADLESS"), true); err != nil {
		verr.Errors = append(verr.Errors, "HEADLESS "+err.Error())
	}
	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"ACTION_TIMEOUT", &cfg.ActionTimeout, DefaultActionTimeout},
		{"DASHBOARD_TIMEOUT", &cfg.DashboardTimeout, DefaultDashboardTimeout},
		{"SETUP_TIMEOUT", &cfg.SetupTimeout, DefaultSetupTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationOrDefault(get(d.key), d.def); err != nil {
			verr.Errors = append(verr.Errors, d.key+" "+err.Error())
		}
	}

	if cfg.ArtifactsUploadRPS, err = parseRateOrZero(get("ARTIFACTS_UPLOAD_RPS")); err != nil {
		verr.Errors = append(verr.Errors, "ARTIFACTS_UPLOAD_RPS "+err.Error())
	}

	verr.Errors = append(verr.Errors, cfg.validate()...)
	if len(verr.Missing) > 0 || len(verr.Errors) > 0 {
		return nil, errs.Wrap(errs.MissingConfig, "", verr)
	}
	return cfg, nil
}

func (c *Config) validate() []string {
	var problems []string
	if strings.TrimSpace(c.BaseURL) != "" {
		if err := urlutil.ValidateBase(c.BaseURL); err != nil {
			problems = append(problems, "BASE_URL "+err.Error())
		}
	}
	switch c.Browser {
	case "chromium", "firefox", "webkit":
	default:
		problems = append(problems, fmt.Sprintf("BROWSER must be chromium, firefox or webkit (got %q)", c.Browser))
	}
	return problems
}

// UploadEnabled reports whether screenshots should be pushed to object storage.
func (c Config) UploadEnabled() bool {
	return c.ArtifactsBucket != ""
}

// LogValue renders the config for slog with credentials redacted.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", logutil.RedactURL(c.BaseURL)),
		slog.String("user_email", c.UserEmail),
		slog.String("user_password", logutil.RedactValue(EnvUserPassword, c.UserPassword)),
		slog.String("storage_state", c.StorageStatePath),
		slog.String("results_dir", c.ResultsDir),
		slog.String("browser", c.Browser),
		slog.Bool("headless", c.Headless),
		slog.Duration("action_timeout", c.ActionTimeout),
		slog.Duration("dashboard_timeout", c.DashboardTimeout),
		slog.Duration("setup_timeout", c.SetupTimeout),
		slog.Bool("upload", c.UploadEnabled()),
	)
}

func parseBoolOrDefault(raw string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("must be a boolean (got %q)", raw)
	}
	return v, nil
}

func parseDurationOrDefault(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("must be a duration like 5s (got %q)", raw)
	}
	if d <= 0 {
		return def, fmt.Errorf("must be positive (got %q)", raw)
	}
	return d, nil
}

func parseRateOrZero(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("must be a non-negative number (got %q)", raw)
	}
	return v, nil
}
