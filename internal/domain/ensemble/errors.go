package ensemble

import (
	"errors"

	"github.com/okian/attrition/internal/domain/employee"
)

// Sentinel error kinds for the decision engine. These allow errors.Is/As from callers.
var (
	// ErrModelUnavailable means a classifier or the scaler is missing or failed to load.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInvalidInput is shared with the employee package so one check covers both layers.
	ErrInvalidInput = employee.ErrInvalidInput
	// ErrComputation wraps an unexpected failure inside a classifier or the scaler.
	ErrComputation = errors.New("computation error")
)
