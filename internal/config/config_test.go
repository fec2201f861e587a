package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != defaultShutdownTimeout {
		t.Errorf("unexpected shutdown timeout: %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Data.Source != defaultDataSource {
		t.Errorf("expected default data source, got %s", cfg.Data.Source)
	}
	if cfg.Data.HTTPTimeout != 0 {
		t.Errorf("expected no http timeout by default, got %s", cfg.Data.HTTPTimeout)
	}
	if cfg.Site.DefaultLang != "en" || len(cfg.Site.Languages) != 2 {
		t.Errorf("unexpected languages: %s %v", cfg.Site.DefaultLang, cfg.Site.Languages)
	}
	if cfg.IsProd() || cfg.Session.Secure {
		t.Errorf("local environment must not mark cookies secure")
	}
}

func TestLoadPortFallsBackToCloudRunPort(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{"PORT": "9000"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected :9000, got %s", cfg.Server.Addr)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"TRAVEL_WEB_PORT":                "9090",
		"TRAVEL_WEB_ENV":                 "PROD",
		"TRAVEL_WEB_DEV":                 "true",
		"TRAVEL_WEB_READ_TIMEOUT":        "20s",
		"TRAVEL_WEB_DATA_SOURCE":         "s3://travel/data.json",
		"TRAVEL_WEB_DATA_HTTP_TIMEOUT":   "3s",
		"TRAVEL_WEB_S3_ENDPOINT":         "minio.local:9000",
		"TRAVEL_WEB_S3_USE_SSL":          "1",
		"TRAVEL_WEB_SESSION_SIGNING_KEY": "k",
		"TRAVEL_WEB_BASE_URL":            "https://travel.example.com/",
		"TRAVEL_WEB_LANGUAGES":           "ja, en, ja",
		"TRAVEL_WEB_DEFAULT_LANG":        "JA",
	}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Server.Addr)
	}
	if !cfg.IsProd() || !cfg.Session.Secure {
		t.Errorf("prod environment must mark cookies secure")
	}
	if !cfg.Server.Dev {
		t.Errorf("expected dev mode")
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Data.HTTPTimeout != 3*time.Second {
		t.Errorf("unexpected http timeout: %s", cfg.Data.HTTPTimeout)
	}
	if !cfg.S3.UseSSL {
		t.Errorf("expected S3 SSL")
	}
	if cfg.Site.BaseURL != "https://travel.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Site.BaseURL)
	}
	if len(cfg.Site.Languages) != 2 || cfg.Site.Languages[0] != "ja" || cfg.Site.DefaultLang != "ja" {
		t.Errorf("unexpected languages: %v / %s", cfg.Site.Languages, cfg.Site.DefaultLang)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"TRAVEL_WEB_ENV":          "prod",
		"TRAVEL_WEB_READ_TIMEOUT": "soon",
		"TRAVEL_WEB_DATA_SOURCE":  "s3://travel/data.json",
		"TRAVEL_WEB_BASE_URL":     "not a url",
		"TRAVEL_WEB_DEFAULT_LANG": "fr",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{
		"TRAVEL_WEB_READ_TIMEOUT":        true,
		"TRAVEL_WEB_S3_ENDPOINT":         true,
		"TRAVEL_WEB_BASE_URL":            true,
		"TRAVEL_WEB_DEFAULT_LANG":        true,
		"TRAVEL_WEB_SESSION_SIGNING_KEY": true,
	}
	fields := vErr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected invalid field %s", f)
		}
	}
}

func TestLoadReadsDotEnvWithLowestPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "TRAVEL_WEB_DATA_SOURCE=from-dotenv.json\nTRAVEL_WEB_SITE_NAME=Dotenv Travels\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	env := map[string]string{"TRAVEL_WEB_SITE_NAME": "Explicit Travels"}
	cfg, err := Load(WithEnvFile(path), WithEnvMap(env), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Data.Source != "from-dotenv.json" {
		t.Errorf("expected dotenv source, got %s", cfg.Data.Source)
	}
	if cfg.Site.Name != "Explicit Travels" {
		t.Errorf("explicit values must win over dotenv, got %s", cfg.Site.Name)
	}
}

func TestLoadIgnoresMissingDotEnv(t *testing.T) {
	_, err := Load(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("missing .env must be ignored, got %v", err)
	}
}
