// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load(ctx) layers .env, an optional YAML file and ATTRITION_* env vars on top.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"fmt"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, mirrors logs into a rotating file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// ModelDir holds the exported scaler and classifier artifacts.
	ModelDir string `koanf:"model_dir"`

	// RateLimitRPS and RateLimitBurst shape the token bucket in front of the
	// prediction routes. Zero RPS disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// OTelEndpoint is the OTLP/HTTP collector address. Tracing is off when empty.
	OTelEndpoint string `koanf:"otel_endpoint"`

	// ServiceName is reported to the tracing backend.
	ServiceName string `koanf:"service_name"`
}

// New creates a Config holding the defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":8000",
		ModelDir:       "models",
		RateLimitRPS:   100,
		RateLimitBurst: 200,
		ServiceName:    "attrition",
	}
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ModelDir == "":
		return fmt.Errorf("%w: model_dir must not be empty", ErrInvalidConfig)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must not be negative", ErrInvalidConfig)
	case c.RateLimitBurst < 0:
		return fmt.Errorf("%w: rate_limit_burst must not be negative", ErrInvalidConfig)
	}
	return nil
}
