package employee

import "errors"

// ErrInvalidInput marks a record that is missing fields or outside the documented ranges.
var ErrInvalidInput = errors.New("invalid input")
