package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	// ErrUnknownLabel is returned when a label value is outside the fixed set a metric accepts.
	ErrUnknownLabel = errors.New("metrics unknown label value")
)
