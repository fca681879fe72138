package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidConfig marks a loaded configuration that fails Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a source (.env, YAML file, env) that could not be read or decoded.
	ErrLoadConfig = errors.New("load config failed")
)
