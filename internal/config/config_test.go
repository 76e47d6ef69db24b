package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setRequiredEnv points required settings at test values and clears the
// port overrides so file-based cases see only the yaml file.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("UI_PORT", "")
	t.Setenv("HEALTH_PORT", "")
	t.Setenv("API_BASE_URL", "https://restaurants.example.test/api/v1")
	t.Setenv("MENU_LANGUAGE", "")
	t.Setenv("STATE_DIR", "")
	t.Setenv("ALLOWED_ORIGINS", "")
}

func TestLoad_ErrorWhenNoFileAndNoEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nonexistent.yaml"))
	setRequiredEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when no config source provides required ports")
	}
}

func TestLoad_ErrorWhenPartialConfig(t *testing.T) {
	path := writeTempConfig(t, `ui_port: "9000"`)
	t.Setenv("CONFIG_PATH", path)
	setRequiredEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when health_port is missing")
	}
}

func TestLoad_ErrorWhenAPIBaseURLMissing(t *testing.T) {
	path := writeTempConfig(t, `ui_port: "9000"
health_port: "9001"
`)
	t.Setenv("CONFIG_PATH", path)
	setRequiredEnv(t)
	t.Setenv("API_BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when api_base_url is missing")
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	path := writeTempConfig(t, `ui_port: "9000"
health_port: "9001"
api_base_url: "https://restaurants.example.test/api/v1"
menu_language: "en"
state_dir: "/tmp/state"
allowed_origins:
  - "http://localhost:5173"
`)
	t.Setenv("CONFIG_PATH", path)
	setRequiredEnv(t)
	t.Setenv("API_BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.UIPort != "9000" {
		t.Errorf("expected UIPort=9000, got %s", cfg.UIPort)
	}
	if cfg.HealthPort != "9001" {
		t.Errorf("expected HealthPort=9001, got %s", cfg.HealthPort)
	}
	if cfg.APIBaseURL != "https://restaurants.example.test/api/v1" {
		t.Errorf("unexpected APIBaseURL %s", cfg.APIBaseURL)
	}
	if cfg.MenuLanguage != "en" {
		t.Errorf("expected MenuLanguage=en, got %s", cfg.MenuLanguage)
	}
	if cfg.StateDir != "/tmp/state" {
		t.Errorf("expected StateDir=/tmp/state, got %s", cfg.StateDir)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("unexpected AllowedOrigins %v", cfg.AllowedOrigins)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, `ui_port: "9000"
health_port: "9001"
menu_language: "fi"
`)
	t.Setenv("CONFIG_PATH", path)
	setRequiredEnv(t)
	t.Setenv("UI_PORT", "7000")
	t.Setenv("HEALTH_PORT", "7001")
	t.Setenv("MENU_LANGUAGE", "en")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.UIPort != "7000" {
		t.Errorf("expected UIPort=7000 (env override), got %s", cfg.UIPort)
	}
	if cfg.HealthPort != "7001" {
		t.Errorf("expected HealthPort=7001 (env override), got %s", cfg.HealthPort)
	}
	if cfg.MenuLanguage != "en" {
		t.Errorf("expected MenuLanguage=en (env override), got %s", cfg.MenuLanguage)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected AllowedOrigins %v", cfg.AllowedOrigins)
	}
}

func TestLoad_PartialEnvOverride(t *testing.T) {
	path := writeTempConfig(t, `ui_port: "9000"
health_port: "9001"
`)
	t.Setenv("CONFIG_PATH", path)
	setRequiredEnv(t)
	t.Setenv("UI_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.UIPort != "7000" {
		t.Errorf("expected UIPort=7000 (env override), got %s", cfg.UIPort)
	}
	if cfg.HealthPort != "9001" {
		t.Errorf("expected HealthPort=9001 (from file), got %s", cfg.HealthPort)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `ui_port: "9000"
health_port: "9001"
`)
	t.Setenv("CONFIG_PATH", path)
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MenuLanguage != "fi" {
		t.Errorf("expected default MenuLanguage=fi, got %s", cfg.MenuLanguage)
	}
	if cfg.StateDir != "data" {
		t.Errorf("expected default StateDir=data, got %s", cfg.StateDir)
	}
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	path := writeTempConfig(t, "{{invalid yaml}}")
	t.Setenv("CONFIG_PATH", path)
	setRequiredEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestLoad_RateLimitDefaults(t *testing.T) {
	path := writeTempConfig(t, `ui_port: "9000"
health_port: "9001"
rate_limit_requests: 50
`)
	t.Setenv("CONFIG_PATH", path)
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rl := cfg.RateLimitConfig()
	if rl.Requests != 50 {
		t.Errorf("expected Requests=50, got %d", rl.Requests)
	}
	if rl.Window != time.Minute {
		t.Errorf("expected default Window=1m, got %v", rl.Window)
	}
}

func TestAddr_Methods(t *testing.T) {
	cfg := &Config{UIPort: "3000", HealthPort: "3001"}

	if cfg.UIAddr() != ":3000" {
		t.Errorf("expected :3000, got %s", cfg.UIAddr())
	}
	if cfg.HealthAddr() != ":3001" {
		t.Errorf("expected :3001, got %s", cfg.HealthAddr())
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}
