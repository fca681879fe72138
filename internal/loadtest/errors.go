package loadtest

import "errors"

var (
	// ErrNotReady is returned when /readyz never reports ready.
	ErrNotReady = errors.New("service not ready")
	// ErrInvariantViolation is returned when any response breaks the ensemble contract.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrInvalidConfig is returned when the run configuration cannot be used.
	ErrInvalidConfig = errors.New("invalid load test config")
	// ErrNoSamples is returned when there is nothing to save.
	ErrNoSamples = errors.New("no samples")
)
