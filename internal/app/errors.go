package service

import (
	"github.com/okian/attrition/internal/domain/ensemble"
)

// Sentinel error kinds re-exported so HTTP adapters need only this package.
var (
	ErrModelUnavailable = ensemble.ErrModelUnavailable
	ErrInvalidInput     = ensemble.ErrInvalidInput
	ErrComputation      = ensemble.ErrComputation
)
