// Package types contains common types used across the application
package types

import "github.com/okian/attrition/internal/domain/ensemble"

// Assessment is a complete prediction: the ensemble verdict plus its explanation.
// Either both are present or the prediction failed.
type Assessment struct {
	Result      ensemble.Result
	Explanation []string
}
