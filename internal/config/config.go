package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr     string // API bind address, e.g., "127.0.0.1:8080" (local) or ":8080" (Docker)
	LogDir   string // logs directory
	LogLevel string // debug|info|warn|error
	APIKeys  []string

	// Sweep cadence
	SweepInterval time.Duration // pause between the end of one sweep and the next
	SweepBackoff  time.Duration // cool-down after a failed sweep

	// Prober
	StorefrontBaseURL string
	ProbeTimeout      time.Duration
	RetryAttempts     int // total attempts on transient failure (1 initial + retries)
	RetryBackoff      time.Duration

	// Confirmation engine
	ConfirmSamples        int
	ConfirmInterval       time.Duration
	ConfirmThreshold      int // 0 means majority of ConfirmSamples
	MaxConcurrentConfirms int // per-app probe/confirmation parallelism

	// Stores. SheetsAppsID selects the sheets backend, DatabaseURL selects
	// postgres; with neither set the in-memory store is used.
	SheetsBaseURL string
	SheetsAppsID  string
	SheetsDestsID string
	SheetsToken   string
	DatabaseURL   string

	// Notification ledger (optional; empty RedisAddr means in-memory)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LedgerTTL     time.Duration

	// Channels
	TelegramToken string
	WebhookURLs   []string
}

func FromEnv() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	base := os.Getenv("STOREFRONT_BASE_URL")
	if base == "" {
		base = "https://apps.apple.com"
	}

	sheetsBase := os.Getenv("SHEETS_BASE_URL")
	if sheetsBase == "" {
		sheetsBase = "https://sheets.googleapis.com"
	}

	return Config{
		Addr:     addr,
		LogDir:   logDir,
		LogLevel: level,
		APIKeys:  envList("API_KEYS"),

		SweepInterval: envDurMS("SWEEP_INTERVAL_MS", 5*time.Minute),
		SweepBackoff:  envDurMS("SWEEP_BACKOFF_MS", 60*time.Second),

		StorefrontBaseURL: base,
		ProbeTimeout:      envDurMS("PROBE_TIMEOUT_MS", 10*time.Second),
		RetryAttempts:     envInt("RETRY_ATTEMPTS", 3),
		RetryBackoff:      envDurMS("RETRY_BACKOFF_MS", 5*time.Second),

		ConfirmSamples:        envInt("CONFIRM_SAMPLES", 5),
		ConfirmInterval:       envDurMS("CONFIRM_INTERVAL_MS", 36*time.Second),
		ConfirmThreshold:      envInt("CONFIRM_THRESHOLD", 0),
		MaxConcurrentConfirms: envInt("MAX_CONCURRENT_CONFIRMS", 4),

		SheetsBaseURL: sheetsBase,
		SheetsAppsID:  os.Getenv("SHEETS_APPS_ID"),
		SheetsDestsID: os.Getenv("SHEETS_DESTS_ID"),
		SheetsToken:   os.Getenv("SHEETS_TOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		LedgerTTL:     envDurMS("LEDGER_TTL_MS", 7*24*time.Hour),

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		WebhookURLs:   envList("WEBHOOK_URLS"),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envDurMS(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
