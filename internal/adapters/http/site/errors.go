package site

import "errors"

// Error constants
var (
	ErrRender = errors.New("ui render failed")
	ErrForm   = errors.New("invalid form input")
)
