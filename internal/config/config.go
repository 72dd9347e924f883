package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds runtime settings read from SGC_* environment variables.
type Config struct {
	Addr   string
	Env    string
	DBPath string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	// CSRFKey is the 32-byte gorilla/csrf auth key. Empty outside production
	// means a random per-process key.
	CSRFKey []byte
	// TrustedOrigins are extra hosts allowed to post forms, e.g. a reverse proxy name.
	TrustedOrigins []string

	ResendKey string
	EmailFrom string
	ReplyTo   string

	TelegramToken  string
	TelegramChatID int64

	AttendanceThreshold float64
	WeekdaysOnly        bool
	DigestSchedule      string
	OutboxInterval      time.Duration

	SlowQueryMs   int
	SlowRequestMs int
	RateLimit     int
	LogLevel      slog.Level
}

// Load reads a .env file when present, then the process environment.
// PRE: none
// POST: returns a Config with defaults applied, or an error naming the first bad value
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Addr:           get("SGC_ADDR", ":8080"),
		Env:            get("SGC_ENV", EnvDevelopment),
		DBPath:         get("SGC_DB_PATH", "sgc.db"),
		AdminEmail:     get("SGC_ADMIN_EMAIL", "admin@sgc.local"),
		AdminPassword:  get("SGC_ADMIN_PASSWORD", ""),
		AdminName:      get("SGC_ADMIN_NAME", "SGC Administrator"),
		ResendKey:      get("SGC_RESEND_KEY", ""),
		EmailFrom:      get("SGC_EMAIL_FROM", "SGC Attendance <noreply@sgc.local>"),
		ReplyTo:        get("SGC_REPLY_TO", ""),
		TelegramToken:  get("SGC_TELEGRAM_TOKEN", ""),
		DigestSchedule: get("SGC_DIGEST_SCHEDULE", "0 8 1 * *"),
	}
	for _, origin := range strings.Split(get("SGC_TRUSTED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, origin)
		}
	}
	if getenv("SGC_DIGEST_SCHEDULE") == "off" {
		cfg.DigestSchedule = ""
	}

	var err error
	if cfg.TelegramChatID, err = parseInt64(get("SGC_TELEGRAM_CHAT_ID", "0")); err != nil {
		return Config{}, fmt.Errorf("SGC_TELEGRAM_CHAT_ID: %w", err)
	}
	if cfg.AttendanceThreshold, err = strconv.ParseFloat(get("SGC_ATTENDANCE_THRESHOLD", "75"), 64); err != nil || cfg.AttendanceThreshold < 0 || cfg.AttendanceThreshold > 100 {
		return Config{}, fmt.Errorf("SGC_ATTENDANCE_THRESHOLD must be a number between 0 and 100")
	}
	if cfg.WeekdaysOnly, err = strconv.ParseBool(get("SGC_WEEKDAYS_ONLY", "false")); err != nil {
		return Config{}, fmt.Errorf("SGC_WEEKDAYS_ONLY: %w", err)
	}
	if cfg.OutboxInterval, err = time.ParseDuration(get("SGC_OUTBOX_INTERVAL", "30s")); err != nil || cfg.OutboxInterval <= 0 {
		return Config{}, fmt.Errorf("SGC_OUTBOX_INTERVAL must be a positive duration")
	}
	if cfg.SlowQueryMs, err = positiveInt(get("SGC_SLOW_QUERY_MS", "50")); err != nil {
		return Config{}, fmt.Errorf("SGC_SLOW_QUERY_MS: %w", err)
	}
	if cfg.SlowRequestMs, err = positiveInt(get("SGC_SLOW_REQUEST_MS", "500")); err != nil {
		return Config{}, fmt.Errorf("SGC_SLOW_REQUEST_MS: %w", err)
	}
	if cfg.RateLimit, err = positiveInt(get("SGC_RATE_LIMIT", "10")); err != nil {
		return Config{}, fmt.Errorf("SGC_RATE_LIMIT: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("SGC_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("SGC_LOG_LEVEL: %w", err)
	}

	if key := get("SGC_CSRF_KEY", ""); key != "" {
		cfg.CSRFKey, err = hex.DecodeString(key)
		if err != nil || len(cfg.CSRFKey) != 32 {
			return Config{}, fmt.Errorf("SGC_CSRF_KEY must be 64 hex characters")
		}
	}

	if cfg.IsProduction() {
		if cfg.CSRFKey == nil {
			return Config{}, errors.New("SGC_CSRF_KEY is required in production")
		}
		if cfg.AdminPassword == "" {
			return Config{}, errors.New("SGC_ADMIN_PASSWORD is required in production")
		}
	}
	return cfg, nil
}

// IsProduction reports whether SGC_ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// TelegramEnabled reports whether a bot token and target chat are configured.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
