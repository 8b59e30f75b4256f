package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                string
	GinMode             string
	LogLevel            slog.Level
	ScriptURL           string
	AllowedOrigins      string
	StateDBPath         string
	SubmitInterval      time.Duration
	GatewayTimeout      time.Duration
	RecordsCacheTTL     time.Duration
	FirebaseProjectID   string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
}

// Load reads environment variables into a Config with sensible defaults.
// A missing GOOGLE_SCRIPT_URL is not an error here: reads fall back to an empty
// dataset and writes report a configuration error per call.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "release"),
		ScriptURL:           firstEnv("GOOGLE_SCRIPT_URL", "NEXT_PUBLIC_GOOGLE_SCRIPT_URL"),
		AllowedOrigins:      strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
		StateDBPath:         getEnv("STATE_DB_PATH", "data/laisee.db"),
		FirebaseProjectID:   strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseCredsBase64: strings.TrimSpace(os.Getenv("FIREBASE_CREDS_BASE64")),
		FirebaseCredsFile:   strings.TrimSpace(os.Getenv("FIREBASE_CREDS_FILE")),
	}

	var err error
	if cfg.SubmitInterval, err = parseDurationEnv("SUBMIT_INTERVAL", 30*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse SUBMIT_INTERVAL: %w", err)
	}
	if cfg.GatewayTimeout, err = parseDurationEnv("GATEWAY_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse GATEWAY_TIMEOUT: %w", err)
	}
	if cfg.RecordsCacheTTL, err = parseDurationEnv("RECORDS_CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse RECORDS_CACHE_TTL: %w", err)
	}
	if cfg.LogLevel, err = parseLevelEnv("LOG_LEVEL", slog.LevelInfo); err != nil {
		return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present and consistent.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SubmitInterval < 0 {
		return errors.New("SUBMIT_INTERVAL must not be negative")
	}
	if c.GatewayTimeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}
	if c.RecordsCacheTTL < 0 {
		return errors.New("RECORDS_CACHE_TTL must not be negative")
	}
	if c.FirebaseProjectID != "" && c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
		return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE when FIREBASE_PROJECT_ID is set")
	}
	return nil
}

// EndpointConfigured reports whether the sheet endpoint URL is set.
func (c Config) EndpointConfigured() bool {
	return c.ScriptURL != ""
}

// FirestoreEnabled reports whether stats snapshots can be persisted.
func (c Config) FirestoreEnabled() bool {
	return c.FirebaseProjectID != ""
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := strings.TrimSpace(os.Getenv(k)); val != "" {
			return val
		}
	}
	return ""
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	// Bare integers are seconds.
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(val)
}

func parseLevelEnv(key string, defaultVal slog.Level) (slog.Level, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(val)); err != nil {
		return defaultVal, err
	}
	return lvl, nil
}
