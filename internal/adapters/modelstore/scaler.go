package modelstore

import "fmt"

// StandardScaler applies (x - mean) / scale per feature.
type StandardScaler struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

func (s *StandardScaler) validate() error {
	if err := checkFeatureNames(s.FeatureNames); err != nil {
		return err
	}
	if err := checkLength("mean", s.Mean); err != nil {
		return err
	}
	return checkLength("scale", s.Scale)
}

// Transform returns a new scaled vector; the input is not modified.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler expects %d features, got %d", ErrInference, len(s.Mean), len(features))
	}
	out := make([]float64, len(features))
	for i, x := range features {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (x - s.Mean[i]) / scale
	}
	return out, nil
}
