// Package config loads the server configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "familist-dev-secret-change-me"

type Config struct {
	Port        string
	DBPath      string
	Debug       bool
	LogLevel    string
	LogFormat   string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	ReminderHour     int
	ReminderLocation *time.Location

	Email  EmailConfig
	Push   PushConfig
	Backup BackupConfig
}

// EmailConfig selects the mail provider: Postmark when a token is set,
// else SES when a region is set, else log only.
type EmailConfig struct {
	From          string
	FromName      string
	PostmarkToken string
	SESRegion     string
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

type BackupConfig struct {
	S3Endpoint    string
	S3Bucket      string
	S3Region      string
	S3AccessKey   string
	S3SecretKey   string
	S3Prefix      string
	Passphrase    string
	Hour          int
	RetentionDays int
}

// LoadDotenv loads the first .env found in the working directory or its
// parent. Values already in the environment win.
func LoadDotenv() string {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      envOr("PORT", "3000"),
		DBPath:    envOr("DB_PATH", "familist.db"),
		Debug:     envBool("DEBUG"),
		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(envOr("CORS_ORIGINS",
			"http://localhost:5173,http://localhost:3000")),
		Email: EmailConfig{
			From:          envOr("EMAIL_FROM", "no-reply@familist.local"),
			FromName:      envOr("EMAIL_FROM_NAME", "FamiList"),
			PostmarkToken: os.Getenv("POSTMARK_TOKEN"),
			SESRegion:     os.Getenv("SES_REGION"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
			Subscriber:      envOr("VAPID_SUBSCRIBER", "mailto:no-reply@familist.local"),
		},
		Backup: BackupConfig{
			S3Endpoint:  os.Getenv("BACKUP_S3_ENDPOINT"),
			S3Bucket:    os.Getenv("BACKUP_S3_BUCKET"),
			S3Region:    envOr("BACKUP_S3_REGION", "us-east-1"),
			S3AccessKey: os.Getenv("BACKUP_S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("BACKUP_S3_SECRET_KEY"),
			S3Prefix:    os.Getenv("BACKUP_S3_PREFIX"),
			Passphrase:  os.Getenv("BACKUP_PASSPHRASE"),
		},
	}

	var errs []error

	days, err := envInt("ACCESS_TOKEN_EXPIRE_DAYS", 7)
	errs = append(errs, err)
	cfg.TokenTTL = time.Duration(days) * 24 * time.Hour

	cfg.ReminderHour, err = envHour("REMINDER_HOUR", 22)
	errs = append(errs, err)

	cfg.Backup.Hour, err = envHour("BACKUP_HOUR", 3)
	errs = append(errs, err)

	cfg.Backup.RetentionDays, err = envInt("BACKUP_RETENTION_DAYS", 30)
	errs = append(errs, err)

	cfg.ReminderLocation = time.Local
	if tz := os.Getenv("REMINDER_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			errs = append(errs, fmt.Errorf("REMINDER_TZ: %w", err))
		} else {
			cfg.ReminderLocation = loc
		}
	}

	if cfg.JWTSecret == "" {
		if !cfg.Debug {
			errs = append(errs, errors.New("JWT_SECRET must be set unless DEBUG is enabled"))
		}
		cfg.JWTSecret = devJWTSecret
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def, fmt.Errorf("%s: want a positive integer, got %q", key, v)
	}
	return n, nil
}

func envHour(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 23 {
		return def, fmt.Errorf("%s: want an hour 0-23, got %q", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
