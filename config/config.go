// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/flyagile/miro-mcp-server/security"
)

// Config holds the full server configuration.
type Config struct {
	// MiroClientID is the OAuth client ID of the Miro application
	MiroClientID string

	// MiroClientSecret is the OAuth client secret
	MiroClientSecret string

	// BaseURL is the externally visible base URL of this server, used as
	// the resource identifier and to build the redirect URI
	BaseURL string

	// RedirectURI is where Miro redirects after consent. Defaults to
	// BaseURL + "/oauth/callback".
	RedirectURI string

	// EncryptionKey is the 32-byte master key for cookie encryption
	EncryptionKey []byte

	// Port the HTTP server listens on
	Port int

	// LogFormat selects "json" or "text" slog output
	LogFormat string

	// RateLimitRPS is requests per second allowed per client IP. Zero
	// disables rate limiting.
	RateLimitRPS int

	// RateLimitBurst is the per-IP burst size
	RateLimitBurst int

	// TrustProxy enables trusting X-Forwarded-For from a reverse proxy
	TrustProxy bool

	// InstrumentationEnabled turns on OpenTelemetry instrumentation
	InstrumentationEnabled bool
}

// FromEnv builds a Config from environment variables. Required variables
// are MIRO_CLIENT_ID, MIRO_CLIENT_SECRET and ENCRYPTION_KEY; everything
// else has a default.
func FromEnv() (*Config, error) {
	cfg := &Config{
		MiroClientID:           os.Getenv("MIRO_CLIENT_ID"),
		MiroClientSecret:       os.Getenv("MIRO_CLIENT_SECRET"),
		BaseURL:                os.Getenv("BASE_URL"),
		RedirectURI:            os.Getenv("MIRO_REDIRECT_URI"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                   8080,
		RateLimitRPS:           10,
		RateLimitBurst:         30,
		TrustProxy:             getBoolEnv("TRUST_PROXY", false),
		InstrumentationEnabled: getBoolEnv("INSTRUMENTATION_ENABLED", false),
	}

	if cfg.MiroClientID == "" {
		return nil, fmt.Errorf("MIRO_CLIENT_ID is required")
	}
	if cfg.MiroClientSecret == "" {
		return nil, fmt.Errorf("MIRO_CLIENT_SECRET is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("PORT must be a valid port number, got %q", portStr)
		}
		cfg.Port = port
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.RedirectURI == "" {
		cfg.RedirectURI = cfg.BaseURL + "/oauth/callback"
	}

	keyB64 := os.Getenv("ENCRYPTION_KEY")
	if keyB64 == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required (32 bytes, base64-encoded)")
	}
	key, err := security.KeyFromBase64(keyB64)
	if err != nil {
		return nil, fmt.Errorf("invalid ENCRYPTION_KEY: %w", err)
	}
	cfg.EncryptionKey = key

	if rpsStr := os.Getenv("RATE_LIMIT_RPS"); rpsStr != "" {
		rps, err := strconv.Atoi(rpsStr)
		if err != nil || rps < 0 {
			return nil, fmt.Errorf("RATE_LIMIT_RPS must be a non-negative integer, got %q", rpsStr)
		}
		cfg.RateLimitRPS = rps
	}
	if burstStr := os.Getenv("RATE_LIMIT_BURST"); burstStr != "" {
		burst, err := strconv.Atoi(burstStr)
		if err != nil || burst < 1 {
			return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer, got %q", burstStr)
		}
		cfg.RateLimitBurst = burst
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"json\" or \"text\", got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// Secure reports whether cookies should carry the Secure attribute, based
// on the externally visible scheme.
func (c *Config) Secure() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
