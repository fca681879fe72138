package loadtest

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/okian/attrition/internal/adapters/http/api"
	"github.com/okian/attrition/internal/domain/ensemble"
	"github.com/okian/attrition/internal/domain/explain"
	"github.com/okian/attrition/pkg/logger"
)

var modelNames = []string{
	ensemble.ModelLogisticRegression,
	ensemble.ModelDecisionTree,
	ensemble.ModelRandomForest,
}

// verifySamples checks every successful response and records violations on the sample.
func verifySamples(ctx context.Context, cfg *Config, samples []Sample, stats *Stats) error {
	logger.Get().Info(ctx, "verifying responses")

	for i := range samples {
		s := &samples[i]
		if s.Response == nil {
			continue
		}
		s.Violations = Verify(s.Employee, *s.Response)
		if len(s.Violations) > 0 {
			stats.Violations++
			if cfg.Verbose {
				logger.Get().Warn(ctx, "invariant violated",
					logger.String("requestId", s.ID),
					logger.Any("violations", s.Violations))
			}
		}
		if s.Response.FinalDecision.EnsembleRisk == string(ensemble.High) {
			stats.HighRisk++
		} else if explain.HasRiskFactors(s.Response.Explanation.TopRiskFactors) {
			stats.Contradictions++
		}
	}

	if stats.Violations > 0 {
		return fmt.Errorf("%w: %d of %d responses", ErrInvariantViolation, stats.Violations, stats.Succeeded)
	}
	logger.Get().Info(ctx, "all responses consistent", logger.Int("checked", stats.Succeeded))
	return nil
}

// Verify returns every way resp disagrees with the ensemble contract for e.
// An empty result means the response is consistent.
func Verify(e Employee, resp api.PredictResponse) []string {
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	if len(resp.IndividualPredictions) != len(modelNames) {
		add("expected %d model predictions, got %d", len(modelNames), len(resp.IndividualPredictions))
	}

	votes := 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, name := range modelNames {
		p, ok := resp.IndividualPredictions[name]
		if !ok {
			add("missing prediction for %s", name)
			continue
		}
		if p.Probability < 0 || p.Probability > 1 {
			add("%s probability %v outside [0, 1]", name, p.Probability)
		}
		if !fourDecimals(p.Probability) {
			add("%s probability %v not rounded to 4 decimals", name, p.Probability)
		}
		// A rounded value of exactly the threshold may come from either side.
		switch {
		case p.Probability > ensemble.RiskThreshold && p.Risk != string(ensemble.High):
			add("%s probability %v above threshold but risk %s", name, p.Probability, p.Risk)
		case p.Probability < ensemble.RiskThreshold && p.Risk != string(ensemble.Low):
			add("%s probability %v below threshold but risk %s", name, p.Probability, p.Risk)
		}
		if p.Risk == string(ensemble.High) {
			votes++
		}
		lo, hi = math.Min(lo, p.Probability), math.Max(hi, p.Probability)
	}

	fd := resp.FinalDecision
	want := ensemble.Low
	if votes >= ensemble.MajorityVotes {
		want = ensemble.High
	}
	if fd.EnsembleRisk != string(want) {
		add("%d high votes but ensemble risk %s", votes, fd.EnsembleRisk)
	}
	if !fourDecimals(fd.AverageProbability) {
		add("average probability %v not rounded to 4 decimals", fd.AverageProbability)
	}
	if lo <= hi && (fd.AverageProbability < lo-probabilityTolerance || fd.AverageProbability > hi+probabilityTolerance) {
		add("average probability %v outside [%v, %v]", fd.AverageProbability, lo, hi)
	}
	if fd.DecisionLogic != ensemble.DecisionLogic {
		add("unexpected decision logic %q", fd.DecisionLogic)
	}

	rec, err := e.record()
	if err != nil {
		add("generated record rejected locally: %v", err)
		return out
	}
	if expected := explain.Explain(rec); !slices.Equal(expected, resp.Explanation.TopRiskFactors) {
		add("explanation %q, expected %q", resp.Explanation.TopRiskFactors, expected)
	}
	return out
}

func fourDecimals(v float64) bool {
	scaled := v * 10000
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}
