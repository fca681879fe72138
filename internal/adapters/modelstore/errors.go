package modelstore

import (
	"errors"
	"fmt"

	"github.com/okian/attrition/internal/domain/ensemble"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrModelUnavailable is ensemble.ErrModelUnavailable, returned for missing or corrupt artifacts.
	ErrModelUnavailable = ensemble.ErrModelUnavailable
	// ErrInference marks a failure while walking a loaded model.
	ErrInference = errors.New("inference failed")
)

// ArtifactError describes which artifact failed to load.
type ArtifactError struct {
	Artifact string
	Err      error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrModelUnavailable, e.Artifact, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ArtifactError) Unwrap() []error {
	return []error{ErrModelUnavailable, e.Err}
}

func artifactErr(artifact string, err error) error {
	return &ArtifactError{Artifact: artifact, Err: err}
}
