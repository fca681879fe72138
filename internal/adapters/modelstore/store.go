// Package modelstore loads the pre-trained scaler and classifiers from JSON
// artifacts exported by the training pipeline. Loaded models are read-only and
// safe for concurrent inference.
package modelstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/ensemble"
	"github.com/okian/attrition/pkg/logger"
)

type loader struct {
	dir    string
	files  Files
	logger logger.Logger
}

type validator interface {
	validate() error
}

// Load reads all four artifacts from dir. Any missing or malformed artifact
// fails the whole load with ErrModelUnavailable.
func Load(ctx context.Context, dir string, opts ...Option) (ensemble.Models, error) {
	ld := &loader{dir: dir, files: DefaultFiles()}
	for _, opt := range opts {
		opt(ld)
	}

	if dir == "" {
		return ensemble.Models{}, artifactErr("model_dir", fmt.Errorf("model directory not configured"))
	}

	scaler := &StandardScaler{}
	logistic := &LogisticRegression{}
	tree := &DecisionTree{}
	forest := &RandomForest{}

	steps := []struct {
		file   string
		target validator
	}{
		{ld.files.Scaler, scaler},
		{ld.files.Logistic, logistic},
		{ld.files.DecisionTree, tree},
		{ld.files.RandomForest, forest},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return ensemble.Models{}, artifactErr(step.file, err)
		}
		if err := ld.read(step.file, step.target); err != nil {
			return ensemble.Models{}, err
		}
		if ld.logger != nil {
			ld.logger.Debug(ctx, "model artifact loaded", logger.String("artifact", step.file))
		}
	}

	models := ensemble.Models{
		Logistic:     logistic,
		DecisionTree: tree,
		RandomForest: forest,
		Scaler:       scaler,
	}
	if ld.logger != nil {
		ld.logger.Info(ctx, "models loaded",
			logger.String("dir", dir),
			logger.Int("forestTrees", len(forest.Trees)),
			logger.Int("treeNodes", len(tree.Nodes)),
		)
	}
	return models, nil
}

func (ld *loader) read(name string, target validator) error {
	path := filepath.Join(ld.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return artifactErr(name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return artifactErr(name, fmt.Errorf("decode: %w", err))
	}
	if err := target.validate(); err != nil {
		return artifactErr(name, err)
	}
	return nil
}

// checkFeatureNames verifies an artifact was trained on the canonical feature order.
// Artifacts without names are accepted.
func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != employee.FeatureCount {
		return fmt.Errorf("expected %d feature names, got %d", employee.FeatureCount, len(names))
	}
	for i, name := range names {
		if name != employee.FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, expected %q", i, name, employee.FeatureNames[i])
		}
	}
	return nil
}

func checkLength(field string, v []float64) error {
	if len(v) != employee.FeatureCount {
		return fmt.Errorf("%s has %d values, expected %d", field, len(v), employee.FeatureCount)
	}
	return nil
}
