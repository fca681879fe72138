package modelstore

import (
	"errors"
	"fmt"
)

// RandomForest averages the class distributions of its trees.
type RandomForest struct {
	FeatureNames []string       `json:"feature_names,omitempty"`
	Trees        []DecisionTree `json:"trees"`
}

func (f *RandomForest) validate() error {
	if err := checkFeatureNames(f.FeatureNames); err != nil {
		return err
	}
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// PredictProba returns the mean [p0, p1] across all trees.
func (f *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInference)
	}
	sum := []float64{0, 0}
	for i := range f.Trees {
		p, err := f.Trees[i].PredictProba(features)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		sum[0] += p[0]
		sum[1] += p[1]
	}
	n := float64(len(f.Trees))
	return []float64{sum[0] / n, sum[1] / n}, nil
}
