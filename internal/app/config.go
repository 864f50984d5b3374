package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the console client.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:8080/api"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	ProbeInterval time.Duration `envconfig:"PROBE_INTERVAL" default:"5m"`

	// SingleFlightRefresh collapses concurrent token refreshes into one
	// shared call.
	SingleFlightRefresh bool `envconfig:"SINGLE_FLIGHT_REFRESH" default:"false"`

	RedisAddr        string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	StorageNamespace string `envconfig:"STORAGE_NAMESPACE" default:"opsboard"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, errors.New("api base url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the client runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
