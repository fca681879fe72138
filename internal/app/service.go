// Package service provides the prediction service that backs both the JSON API
// and the form UI. It owns the read-only model bundle loaded at startup and is
// the single place where the ensemble decision and the explanation are produced.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/attrition/internal/adapters/modelstore"
	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/ensemble"
	"github.com/okian/attrition/internal/domain/explain"
	"github.com/okian/attrition/internal/domain/types"
	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
	"github.com/okian/attrition/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultModelDir = "models"

// Service implements the API dependencies for the attrition predictor.
type Service struct {
	mu sync.RWMutex

	// Configuration
	modelDir string
	models   *ensemble.Models

	// Built once by Start, read-only afterwards.
	engine *ensemble.Engine

	// State
	started bool

	predictions atomic.Int64
	highRisk    atomic.Int64
	failures    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModelDir sets the directory Start loads artifacts from.
func WithModelDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.modelDir = dir
		}
	}
}

// WithModels injects an already loaded model bundle; Start then skips disk.
func WithModels(m ensemble.Models) Option {
	return func(s *Service) {
		s.models = &m
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelDir: defaultModelDir,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the models and builds the ensemble engine. Any failure is
// reported as ErrModelUnavailable and leaves the service not ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting attrition service...", logger.String("modelDir", s.modelDir))

	begin := time.Now()
	models, source, err := s.loadModels(ctx)
	if err == nil {
		s.engine, err = ensemble.NewEngine(models)
	}
	loadMs := float64(time.Since(begin).Microseconds()) / 1000
	metrics.RecordModelLoad(loadMs, err == nil)
	if err != nil {
		s.logger.Error(ctx, "model load failed", logger.String("modelDir", s.modelDir), logger.Error(err))
		if !errors.Is(err, ErrModelUnavailable) {
			err = fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
		return err
	}

	s.started = true
	s.logger.Info(ctx, "attrition service started",
		logger.String("source", source),
		logger.Float64("loadMs", loadMs),
		logger.Float64("riskThreshold", ensemble.RiskThreshold),
	)
	return nil
}

func (s *Service) loadModels(ctx context.Context) (ensemble.Models, string, error) {
	if s.models != nil {
		return *s.models, "injected", nil
	}
	m, err := modelstore.Load(ctx, s.modelDir, modelstore.WithLogger(s.logger.Named("modelstore")))
	return m, s.modelDir, err
}

// Stop marks the service as not ready. Models stay in memory for in-flight requests.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	metrics.SetModelsLoaded(false)
	s.logger.Info(context.Background(), "attrition service stopped")
}

// Ready reports whether models are loaded and predictions can be served.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Predict scores one employee and explains the result. It returns either a
// complete Assessment or an error, never a partial result.
func (s *Service) Predict(ctx context.Context, r employee.Record) (types.Assessment, error) {
	ctx, span := tracing.Start(ctx, "service.predict")
	defer span.End()

	begin := time.Now()
	assessment, err := s.predict(ctx, r)
	if err != nil {
		s.failures.Add(1)
		kind := errorKind(err)
		if mErr := metrics.RecordPredictionError(kind); mErr != nil {
			s.log().Debug(ctx, "unlabelled prediction error", logger.Error(mErr))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		return types.Assessment{}, err
	}

	res := assessment.Result
	votes := make(map[string]string, 3)
	for _, v := range res.Verdicts() {
		votes[v.Model] = string(v.Verdict.Risk)
	}
	metrics.RecordPrediction(string(res.FinalRisk), votes, res.AverageProbability,
		float64(time.Since(begin).Microseconds())/1000)
	metrics.RecordExplanation(assessment.Explanation)

	s.predictions.Add(1)
	if res.FinalRisk == ensemble.High {
		s.highRisk.Add(1)
	} else if explain.HasRiskFactors(assessment.Explanation) {
		// Explanation rules are independent of the ensemble and may disagree.
		metrics.RecordContradiction()
	}

	span.SetAttributes(
		attribute.String("attrition.final_risk", string(res.FinalRisk)),
		attribute.Int("attrition.votes", res.Votes),
		attribute.Float64("attrition.average_probability", res.AverageProbability),
	)
	s.log().Debug(ctx, "prediction served",
		logger.String("finalRisk", string(res.FinalRisk)),
		logger.Int("votes", res.Votes),
		logger.Float64("averageProbability", res.AverageProbability),
		logger.Int("factors", len(assessment.Explanation)),
	)
	return assessment, nil
}

func (s *Service) predict(ctx context.Context, r employee.Record) (types.Assessment, error) {
	s.mu.RLock()
	engine, started := s.engine, s.started
	s.mu.RUnlock()
	if !started || engine == nil {
		return types.Assessment{}, fmt.Errorf("%w: service not started", ErrModelUnavailable)
	}

	if err := r.Validate(); err != nil {
		return types.Assessment{}, err
	}

	decideCtx, span := tracing.Start(ctx, "ensemble.decide")
	result, err := engine.Decide(decideCtx, r.Vector())
	span.End()
	if err != nil {
		return types.Assessment{}, err
	}

	return types.Assessment{
		Result:      result,
		Explanation: explain.Explain(r),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":       s.started,
		"modelDir":      s.modelDir,
		"riskThreshold": ensemble.RiskThreshold,
		"decisionLogic": ensemble.DecisionLogic,
		"predictions":   s.predictions.Load(),
		"highRisk":      s.highRisk.Load(),
		"failures":      s.failures.Load(),
	}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return metrics.ErrorKindInvalidInput
	case errors.Is(err, ErrModelUnavailable):
		return metrics.ErrorKindModelUnavailable
	case errors.Is(err, ErrComputation):
		return metrics.ErrorKindComputation
	default:
		return "unknown"
	}
}
