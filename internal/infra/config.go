package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables once at process start. Business logic never reads the
// environment; everything flows through this struct.
type Config struct {
	AppEnv           string
	Port             string
	StrapiBaseURL    string
	StrapiToken      string
	PartnerBaseURL   string
	PartnerKey       string
	APIKeyPassphrase string
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	UpstreamTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		StrapiBaseURL:    os.Getenv("STRAPI_BASE_URL"),
		StrapiToken:      os.Getenv("STRAPI_API_TOKEN"),
		PartnerBaseURL:   os.Getenv("PARTNER_BASE_URL"),
		PartnerKey:       os.Getenv("PARTNER_API_KEY"),
		APIKeyPassphrase: os.Getenv("APIKEY_PASSPHRASE"),
		CORSOrigins:      splitCSV(os.Getenv("CORS_ORIGINS")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		UpstreamTimeout:  time.Second * time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 30)),
	}

	if cfg.StrapiBaseURL == "" {
		return nil, fmt.Errorf("STRAPI_BASE_URL is required")
	}
	if cfg.StrapiToken == "" {
		return nil, fmt.Errorf("STRAPI_API_TOKEN is required")
	}
	if cfg.PartnerBaseURL == "" {
		return nil, fmt.Errorf("PARTNER_BASE_URL is required")
	}
	if cfg.PartnerKey == "" {
		return nil, fmt.Errorf("PARTNER_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
