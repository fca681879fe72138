package modelstore

import (
	"fmt"
	"math"
)

// LogisticRegression is a binary logistic model: p1 = sigmoid(coef·x + intercept).
type LogisticRegression struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
}

func (m *LogisticRegression) validate() error {
	if err := checkFeatureNames(m.FeatureNames); err != nil {
		return err
	}
	return checkLength("coef", m.Coef)
}

// PredictProba returns [p0, p1].
func (m *LogisticRegression) PredictProba(features []float64) ([]float64, error) {
	if len(features) != len(m.Coef) {
		return nil, fmt.Errorf("%w: logistic regression expects %d features, got %d", ErrInference, len(m.Coef), len(features))
	}
	z := m.Intercept
	for i, x := range features {
		z += m.Coef[i] * x
	}
	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
