package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEBUG", "true")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("port = %q, want 3000", cfg.Port)
	}
	if cfg.ReminderHour != 22 {
		t.Errorf("reminder hour = %d, want 22", cfg.ReminderHour)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("token ttl = %v", cfg.TokenTTL)
	}
	if cfg.JWTSecret != devJWTSecret {
		t.Errorf("expected the development secret in debug mode")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresSecretOutsideDebug(t *testing.T) {
	t.Setenv("DEBUG", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("err = %v, want JWT_SECRET error", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("REMINDER_HOUR", "25")
	t.Setenv("ACCESS_TOKEN_EXPIRE_DAYS", "abc")
	t.Setenv("REMINDER_TZ", "Mars/Olympus")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"REMINDER_HOUR", "ACCESS_TOKEN_EXPIRE_DAYS", "REMINDER_TZ"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("REMINDER_HOUR", "0")
	t.Setenv("REMINDER_TZ", "Asia/Jerusalem")
	t.Setenv("CORS_ORIGINS", " https://a.example/ ,https://b.example,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.ReminderHour != 0 {
		t.Errorf("port %q hour %d", cfg.Port, cfg.ReminderHour)
	}
	if cfg.ReminderLocation.String() != "Asia/Jerusalem" {
		t.Errorf("location = %v", cfg.ReminderLocation)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FAMILIST_TEST_A=from-file\nFAMILIST_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("FAMILIST_TEST_A", "from-env")
	t.Cleanup(func() { os.Unsetenv("FAMILIST_TEST_B") })

	if got := LoadDotenv(); got != ".env" {
		t.Fatalf("loaded %q", got)
	}
	if os.Getenv("FAMILIST_TEST_A") != "from-env" {
		t.Error("environment should win over .env")
	}
	if os.Getenv("FAMILIST_TEST_B") != "from-file" {
		t.Error(".env value not loaded")
	}
}
