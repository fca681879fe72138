package modelstore

import "github.com/okian/attrition/pkg/logger"

// Artifact file names relative to the model directory.
const (
	DefaultScalerFile       = "scaler.json"
	DefaultLogisticFile     = "logistic_model.json"
	DefaultDecisionTreeFile = "decision_tree.json"
	DefaultRandomForestFile = "random_forest.json"
)

// Files names the four artifacts inside the model directory.
type Files struct {
	Scaler       string
	Logistic     string
	DecisionTree string
	RandomForest string
}

// DefaultFiles returns the file names written by the training pipeline.
func DefaultFiles() Files {
	return Files{
		Scaler:       DefaultScalerFile,
		Logistic:     DefaultLogisticFile,
		DecisionTree: DefaultDecisionTreeFile,
		RandomForest: DefaultRandomForestFile,
	}
}

// Option configures Load.
type Option func(*loader)

// WithLogger sets the logger used to report loaded artifacts.
func WithLogger(l logger.Logger) Option {
	return func(ld *loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithFiles overrides artifact file names. Empty names keep their defaults.
func WithFiles(f Files) Option {
	return func(ld *loader) {
		if f.Scaler != "" {
			ld.files.Scaler = f.Scaler
		}
		if f.Logistic != "" {
			ld.files.Logistic = f.Logistic
		}
		if f.DecisionTree != "" {
			ld.files.DecisionTree = f.DecisionTree
		}
		if f.RandomForest != "" {
			ld.files.RandomForest = f.RandomForest
		}
	}
}
