package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data sources for properties and location scores.
const (
	DataSourceFixture   = "fixture"
	DataSourceFirestore = "firestore"
)

// Durable state backends for favorites, portfolio, settings and reports.
const (
	StateBackendMemory    = "memory"
	StateBackendFirestore = "firestore"
	StateBackendRedis     = "redis"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                string
	GinMode             string
	AppEnv              string
	DataSource          string
	StateBackend        string
	FirebaseProjectID   string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
	RedisURL            string
	StateNamespace      string
	AllowedOrigins      string
	RateLimitRPS        float64
	RateLimitBurst      int
	APIBaseURL          string
	APITimeout          time.Duration
}

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "release"),
		AppEnv:              getEnv("APP_ENV", "production"),
		DataSource:          strings.ToLower(getEnv("DATA_SOURCE", DataSourceFixture)),
		StateBackend:        strings.ToLower(getEnv("STATE_BACKEND", StateBackendMemory)),
		FirebaseProjectID:   strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseCredsBase64: strings.TrimSpace(os.Getenv("FIREBASE_CREDS_BASE64")),
		FirebaseCredsFile:   strings.TrimSpace(os.Getenv("FIREBASE_CREDS_FILE")),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		StateNamespace:      getEnv("STATE_NAMESPACE", "propertymap"),
		AllowedOrigins:      strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
		APIBaseURL:          strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
	}

	rps, err := parseFloatEnv("RATE_LIMIT_RPS", 20)
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_RPS: %w", err)
	}
	cfg.RateLimitRPS = rps

	burst, err := parseIntEnv("RATE_LIMIT_BURST", 40)
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_BURST: %w", err)
	}
	cfg.RateLimitBurst = burst

	timeout, err := parseDurationEnv("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_TIMEOUT: %w", err)
	}
	cfg.APITimeout = timeout

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present for the selected backends.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.DataSource {
	case DataSourceFixture, DataSourceFirestore:
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", DataSourceFixture, DataSourceFirestore, c.DataSource)
	}
	switch c.StateBackend {
	case StateBackendMemory, StateBackendFirestore:
	case StateBackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when STATE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("STATE_BACKEND must be memory, firestore or redis, got %q", c.StateBackend)
	}
	if c.NeedsFirestore() {
		if err := c.ValidateFirestore(); err != nil {
			return err
		}
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	return nil
}

// ValidateFirestore checks the Firestore project and credentials are set.
func (c Config) ValidateFirestore() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
		return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE for Firestore auth")
	}
	return nil
}

// NeedsFirestore reports whether any selected backend is Firestore.
func (c Config) NeedsFirestore() bool {
	return c.DataSource == DataSourceFirestore || c.StateBackend == StateBackendFirestore
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
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

func parseFloatEnv(key string, defaultVal float64) (float64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(val, 64)
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(val)
}
