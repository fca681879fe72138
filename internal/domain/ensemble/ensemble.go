// Package ensemble combines the three attrition classifiers into one verdict by
// thresholding each probability and taking a majority vote.
package ensemble

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/okian/attrition/internal/domain/employee"
)

// Decision constants.
const (
	// RiskThreshold is deliberately below 0.5 to bias the models toward flagging risk.
	RiskThreshold = 0.25
	// MajorityVotes is the number of High votes out of three needed for a High verdict.
	MajorityVotes = 2
	// DecisionLogic describes the aggregation rule to API consumers.
	DecisionLogic = "Majority voting among three models"

	positiveClass     = 1
	probabilityLength = 2
	roundingDigits    = 4
)

// Risk is a binary attrition risk label.
type Risk string

// Risk labels.
const (
	High Risk = "High"
	Low  Risk = "Low"
)

// Classifier is a trained binary classifier. PredictProba returns [p0, p1].
type Classifier interface {
	PredictProba(features []float64) ([]float64, error)
}

// Scaler normalises raw features into the space a classifier was trained on.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
}

// Models bundles the artifacts loaded at startup. It is never mutated after load.
type Models struct {
	Logistic     Classifier // trained on scaled input
	DecisionTree Classifier
	RandomForest Classifier
	Scaler       Scaler
}

// Validate reports ErrModelUnavailable when any artifact is missing.
func (m Models) Validate() error {
	switch {
	case m.Logistic == nil:
		return fmt.Errorf("%w: logistic regression not loaded", ErrModelUnavailable)
	case m.DecisionTree == nil:
		return fmt.Errorf("%w: decision tree not loaded", ErrModelUnavailable)
	case m.RandomForest == nil:
		return fmt.Errorf("%w: random forest not loaded", ErrModelUnavailable)
	case m.Scaler == nil:
		return fmt.Errorf("%w: scaler not loaded", ErrModelUnavailable)
	}
	return nil
}

// Verdict is one classifier's thresholded output.
type Verdict struct {
	Risk        Risk
	Probability float64 // rounded to 4 decimal places
}

// Result is the aggregate of the three verdicts.
type Result struct {
	LogisticRegression Verdict
	DecisionTree       Verdict
	RandomForest       Verdict

	Votes              int
	FinalRisk          Risk
	AverageProbability float64 // rounded to 4 decimal places
}

// Verdicts returns the per-model verdicts keyed by model name, in response order.
func (r Result) Verdicts() []NamedVerdict {
	return []NamedVerdict{
		{Model: ModelLogisticRegression, Verdict: r.LogisticRegression},
		{Model: ModelDecisionTree, Verdict: r.DecisionTree},
		{Model: ModelRandomForest, Verdict: r.RandomForest},
	}
}

// Model names as exposed on the wire.
const (
	ModelLogisticRegression = "logistic_regression"
	ModelDecisionTree       = "decision_tree"
	ModelRandomForest       = "random_forest"
)

// NamedVerdict pairs a verdict with its model name.
type NamedVerdict struct {
	Model   string
	Verdict Verdict
}

// Engine runs the ensemble over a read-only model bundle.
type Engine struct {
	models Models
}

// NewEngine validates the bundle and returns an engine bound to it.
func NewEngine(models Models) (*Engine, error) {
	if err := models.Validate(); err != nil {
		return nil, err
	}
	return &Engine{models: models}, nil
}

// Decide scores a feature vector built by employee.Record.Vector.
func (e *Engine) Decide(_ context.Context, features []float64) (Result, error) {
	if len(features) != employee.FeatureCount {
		return Result{}, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, employee.FeatureCount, len(features))
	}
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Result{}, fmt.Errorf("%w: feature %s is not a finite number", ErrInvalidInput, employee.FeatureNames[i])
		}
	}

	scaled, err := e.models.Scaler.Transform(features)
	if err != nil {
		return Result{}, fmt.Errorf("%w: scaler: %w", ErrComputation, err)
	}

	lr, err := positiveProbability(ModelLogisticRegression, e.models.Logistic, scaled)
	if err != nil {
		return Result{}, err
	}
	dt, err := positiveProbability(ModelDecisionTree, e.models.DecisionTree, features)
	if err != nil {
		return Result{}, err
	}
	rf, err := positiveProbability(ModelRandomForest, e.models.RandomForest, features)
	if err != nil {
		return Result{}, err
	}

	return Aggregate(lr, dt, rf), nil
}

func positiveProbability(name string, c Classifier, features []float64) (float64, error) {
	proba, err := c.PredictProba(features)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrComputation, name, err)
	}
	if len(proba) != probabilityLength {
		return 0, fmt.Errorf("%w: %s returned %d class probabilities", ErrComputation, name, len(proba))
	}
	p := proba[positiveClass]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: %s probability %v outside [0,1]", ErrComputation, name, p)
	}
	return p, nil
}

// Aggregate applies the threshold and majority vote to the three positive-class
// probabilities. The average is taken over the unrounded values.
func Aggregate(lr, dt, rf float64) Result {
	res := Result{
		LogisticRegression: verdictFor(lr),
		DecisionTree:       verdictFor(dt),
		RandomForest:       verdictFor(rf),
	}
	for _, v := range []Verdict{res.LogisticRegression, res.DecisionTree, res.RandomForest} {
		if v.Risk == High {
			res.Votes++
		}
	}
	res.FinalRisk = Low
	if res.Votes >= MajorityVotes {
		res.FinalRisk = High
	}
	res.AverageProbability = Round4((lr + dt + rf) / 3)
	return res
}

// RiskFor maps a probability to a label; the comparison is inclusive.
func RiskFor(p float64) Risk {
	if p >= RiskThreshold {
		return High
	}
	return Low
}

func verdictFor(p float64) Verdict {
	return Verdict{Risk: RiskFor(p), Probability: Round4(p)}
}

// Round4 rounds the exact binary value to four decimal places, half to even.
// Scaling by 10^4 first would shift values such as 0.28885 across the midpoint.
func Round4(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', roundingDigits, 64), 64)
	if err != nil {
		return v
	}
	return r
}
