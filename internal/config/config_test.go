package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"ATTENDANCE_API_URL", "ATTENDANCE_STORE", "HTTP_TIMEOUT", "HTTP_RATE_LIMIT", "DEFAULT_SESSION_DURATION_MINUTES", "NOTICE_DURATION"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.APIBaseURL != "http://localhost:8080/api" {
		t.Fatalf("api url default: %s", cfg.APIBaseURL)
	}
	if cfg.State.Store != StoreFile {
		t.Fatalf("store default: %s", cfg.State.Store)
	}
	if cfg.HTTP.Timeout != 30*time.Second || cfg.HTTP.RateLimit != 0 {
		t.Fatalf("http defaults: %+v", cfg.HTTP)
	}
	if cfg.UI.DefaultSessionDuration != 60 || cfg.UI.NoticeDuration != 4*time.Second {
		t.Fatalf("ui defaults: %+v", cfg.UI)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ATTENDANCE_API_URL", "https://school.example/api/")
	t.Setenv("ATTENDANCE_STORE", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "7")
	t.Setenv("HTTP_RATE_LIMIT", "2.5")
	t.Setenv("LOGIN_MAX_FAILS", "not-a-number")
	t.Setenv("DEFAULT_SESSION_DURATION_MINUTES", "90")

	cfg := FromEnv()
	if cfg.APIBaseURL != "https://school.example/api" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.State.Store != StoreRedis || cfg.State.RedisDB != 3 {
		t.Fatalf("state overrides: %+v", cfg.State)
	}
	if cfg.HTTP.Timeout != 7*time.Second || cfg.HTTP.RateLimit != 2.5 {
		t.Fatalf("http overrides: %+v", cfg.HTTP)
	}
	if cfg.Login.MaxFails != 5 {
		t.Fatalf("bad int must fall back, got %d", cfg.Login.MaxFails)
	}
	if cfg.UI.DefaultSessionDuration != 90 {
		t.Fatalf("duration override: %d", cfg.UI.DefaultSessionDuration)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ATTENDANCE_STATE_NAMESPACE=from-dotenv\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATTENDANCE_STATE_NAMESPACE", "")
	os.Unsetenv("ATTENDANCE_STATE_NAMESPACE")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.State.Namespace != "from-dotenv" {
		t.Fatalf("namespace from .env, got %q", cfg.State.Namespace)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("environment must win over .env, got %q", cfg.LogLevel)
	}

	_, err = Load(filepath.Join(dir, "missing.env"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("explicit missing file must fail with ErrNotExist, got %v", err)
	}
}

func TestLoadDefaultDotEnvOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load(); err != nil {
		t.Fatalf("missing default .env must be ignored: %v", err)
	}
}
