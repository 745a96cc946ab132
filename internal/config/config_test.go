package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/kuitang/builder-e2e/internal/errs"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func validEnv() map[string]string {
	return map[string]string{
		EnvBaseURL:      "https://app.example.com",
		EnvUserEmail:    "qa@example.com",
		EnvUserPassword: "s3cret-pass",
	}
}

func drawRequired(t *rapid.T) map[string]string {
	return map[string]string{
		EnvBaseURL: rapid.StringMatching(` {0,2}`).Draw(t, "lead") +
			rapid.SampledFrom([]string{"http", "https"}).Draw(t, "scheme") + "://" +
			rapid.StringMatching(`[a-z]{3,10}\.(com|dev|test)`).Draw(t, "host") +
			rapid.StringMatching(`(/[a-z]{1,6}){0,2}/{0,2}`).Draw(t, "path") +
			rapid.StringMatching(` {0,2}`).Draw(t, "trail"),
		EnvUserEmail:    rapid.StringMatching(` {0,1}[a-z0-9.]{1,12}@[a-z]{3,8}\.com {0,1}`).Draw(t, "email"),
		EnvUserPassword: rapid.StringMatching(` {0,2}[A-Za-z0-9!@#$%^&*][A-Za-z0-9!@#$%^&* ]{0,30} {0,2}`).Draw(t, "password"),
	}
}

func testFromLookup_ExposesRequiredValuesUnchanged(t *rapid.T) {
	env := drawRequired(t)

	cfg, err := FromLookup(lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != env[EnvBaseURL] {
		t.Fatalf("BaseURL mismatch: got=%q want=%q", cfg.BaseURL, env[EnvBaseURL])
	}
	if cfg.UserEmail != env[EnvUserEmail] {
		t.Fatalf("UserEmail mismatch: got=%q want=%q", cfg.UserEmail, env[EnvUserEmail])
	}
	if cfg.UserPassword != env[EnvUserPassword] {
		t.Fatalf("UserPassword mismatch: got=%q want=%q", cfg.UserPassword, env[EnvUserPassword])
	}
}

func TestFromLookup_ExposesRequiredValuesUnchanged(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testFromLookup_ExposesRequiredValuesUnchanged)
}

func testFromLookup_MissingVariableIsNamed(t *rapid.T) {
	env := drawRequired(t)
	missing := rapid.SampledFrom(RequiredVars).Draw(t, "missing")
	if rapid.Bool().Draw(t, "blank") {
		env[missing] = "   "
	} else {
		delete(env, missing)
	}

	cfg, err := FromLookup(lookupFrom(env))
	if err == nil {
		t.Fatalf("expected error when %s is absent", missing)
	}
	if cfg != nil {
		t.Fatal("no config may be returned alongside an error")
	}
	want := "Required environment variable " + missing + " is missing"
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("error does not name %s: %v", missing, err)
	}
	if errs.CodeOf(err) != errs.MissingConfig {
		t.Fatalf("code mismatch: %q", errs.CodeOf(err))
	}
	for _, other := range RequiredVars {
		if other != missing && strings.Contains(err.Error(), "variable "+other+" ") {
			t.Fatalf("error names %s which is present: %v", other, err)
		}
	}
}

func TestFromLookup_MissingVariableIsNamed(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testFromLookup_MissingVariableIsNamed)
}

func TestFromLookup_AllMissingListsEach(t *testing.T) {
	t.Parallel()
	_, err := FromLookup(lookupFrom(map[string]string{}))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range RequiredVars {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in error: %v", name, err)
		}
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := FromLookup(lookupFrom(validEnv()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorageStatePath != "storageState.json" {
		t.Errorf("StorageStatePath = %q", cfg.StorageStatePath)
	}
	if cfg.ResultsDir != "./test-results" {
		t.Errorf("ResultsDir = %q", cfg.ResultsDir)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Browser != "chromium" {
		t.Errorf("Browser = %q", cfg.Browser)
	}
	if cfg.ActionTimeout != 5*time.Second || cfg.DashboardTimeout != 10*time.Second || cfg.SetupTimeout != 60*time.Second {
		t.Errorf("unexpected timeouts: %v %v %v", cfg.ActionTimeout, cfg.DashboardTimeout, cfg.SetupTimeout)
	}
	if cfg.UploadEnabled() {
		t.Error("upload should be off without ARTIFACTS_BUCKET")
	}
	if cfg.ArtifactsUploadRPS != 0 {
		t.Errorf("ArtifactsUploadRPS = %v", cfg.ArtifactsUploadRPS)
	}
}

func TestFromLookup_RejectsMalformedValues(t *testing.T) {
	t.Parallel()
	env := validEnv()
	env[EnvBaseURL] = "app.example.com"
	env["HEADLESS"] = "maybe"
	env["ACTION_TIMEOUT"] = "five"
	env["SETUP_TIMEOUT"] = "-1s"
	env["BROWSER"] = "netscape"
	env["ARTIFACTS_UPLOAD_RPS"] = "-2"

	_, err := FromLookup(lookupFrom(env))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, expected := range []string{"BASE_URL", "HEADLESS", "ACTION_TIMEOUT", "SETUP_TIMEOUT", "BROWSER", "ARTIFACTS_UPLOAD_RPS"} {
		if !strings.Contains(err.Error(), expected) {
			t.Errorf("expected validation error to mention %q, got: %v", expected, err)
		}
	}
}

func TestFromLookup_KeepsRawValues(t *testing.T) {
	t.Parallel()
	env := validEnv()
	env[EnvBaseURL] = "https://app.example.com/app/"
	env[EnvUserPassword] = " pw "
	cfg, err := FromLookup(lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://app.example.com/app/" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.UserPassword != " pw " {
		t.Errorf("UserPassword = %q", cfg.UserPassword)
	}
}

func TestFromLookup_BucketWithoutEndpointUsesAWS(t *testing.T) {
	t.Parallel()
	env := validEnv()
	env["ARTIFACTS_BUCKET"] = "results"
	cfg, err := FromLookup(lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.UploadEnabled() || cfg.AWSEndpointS3 != "" {
		t.Fatalf("upload=%v endpoint=%q", cfg.UploadEnabled(), cfg.AWSEndpointS3)
	}
}

func TestLogValue_RedactsPassword(t *testing.T) {
	t.Parallel()
	cfg, err := FromLookup(lookupFrom(validEnv()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("config", "cfg", *cfg)

	out := buf.String()
	if strings.Contains(out, "s3cret-pass") {
		t.Fatalf("password leaked: %s", out)
	}
	if !strings.Contains(out, "qa@example.com") || !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestLoad_ReadsEnvFileWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "suite.env")
	content := "BASE_URL=https://from-file.example.com\nUSER_EMAIL=file@example.com\nUSER_PASSWORD=file-pass\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("ENV_FILE", envFile)
	t.Setenv(EnvBaseURL, "https://from-process.example.com")
	// Unset so the file supplies them; t.Setenv restores afterwards.
	t.Setenv(EnvUserEmail, "")
	t.Setenv(EnvUserPassword, "")
	os.Unsetenv(EnvUserEmail)
	os.Unsetenv(EnvUserPassword)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "https://from-process.example.com" {
		t.Errorf("process env should win, got %q", cfg.BaseURL)
	}
	if cfg.UserEmail != "file@example.com" || cfg.UserPassword != "file-pass" {
		t.Errorf("file values not loaded: %q %q", cfg.UserEmail, cfg.UserPassword)
	}
}

func TestLoad_ExplicitEnvFileMustExist(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit ENV_FILE")
	}
}
