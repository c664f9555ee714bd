// Package config loads dialer settings from the environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the typed configuration of the dialer.
type Config struct {
	// LogLevel is a zap level name: debug, info, warn or error.
	LogLevel string

	// Devices lists the available devices as name:type pairs.
	Devices []string

	// DialTimeout bounds each dial attempt.
	DialTimeout time.Duration

	// Metrics enables resolution metrics for the container.
	Metrics bool
}

// Load reads .env (if present) and populates a Config from DIALER_*
// environment variables.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist
	_ = godotenv.Load(files...)

	return &Config{
		LogLevel:    env("DIALER_LOG_LEVEL", "info"),
		Devices:     envList("DIALER_DEVICES", []string{"modem0:modem", "vpn0:vpn"}),
		DialTimeout: envDuration("DIALER_DIAL_TIMEOUT", 30*time.Second),
		Metrics:     envBool("DIALER_METRICS", false),
	}
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
