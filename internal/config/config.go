package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	ServiceName    string
	HTTPListenAddr string
	LogLevel       string

	// Automation backend settings.
	N8nBaseURL string
	N8nAPIKey  string
	// EnvPrefix is the first element of every canonical webhook path,
	// e.g. "v1" in /v1/acme/support.
	EnvPrefix string

	// BackendTimeout bounds each individual backend call.
	BackendTimeout time.Duration
	// ProvisionTimeout bounds a whole clone/patch/activate sequence.
	ProvisionTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:      getEnv("SERVICE_NAME", "flowgate-api"),
		HTTPListenAddr:   getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		N8nBaseURL:       getEnv("N8N_BASE_URL", "http://localhost:5678"),
		N8nAPIKey:        getEnv("N8N_API_KEY", ""),
		EnvPrefix:        getEnv("N8N_ENV_PREFIX", "v1"),
		BackendTimeout:   getDurationEnv("BACKEND_TIMEOUT", 30*time.Second),
		ProvisionTimeout: getDurationEnv("PROVISION_TIMEOUT", 2*time.Minute),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.N8nBaseURL == "" {
		return fmt.Errorf("N8N_BASE_URL is required")
	}
	u, err := url.Parse(c.N8nBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("N8N_BASE_URL %q is not a valid URL", c.N8nBaseURL)
	}
	if c.EnvPrefix == "" {
		return fmt.Errorf("N8N_ENV_PREFIX must not be empty")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.ProvisionTimeout <= 0 {
		return fmt.Errorf("PROVISION_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
