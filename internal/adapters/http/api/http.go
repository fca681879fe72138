// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/types"
	"github.com/okian/attrition/pkg/logger"
	"golang.org/x/time/rate"
)

// RootMessage is returned by GET /.
const RootMessage = "HR Attrition Ensemble Prediction API is running"

const defaultMaxBodyBytes = 1 << 20

// Predictor is the prediction service both presentation layers call.
type Predictor interface {
	Predict(ctx context.Context, r employee.Record) (types.Assessment, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predictor

	// Ready reports whether models are loaded.
	Ready() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	rootHandler    *RootHandler
	healthHandler  *HealthHandler
	readyHandler   *ReadyHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler

	limiter *rate.Limiter
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger       logger.Logger
	limiter      *rate.Limiter
	maxBodyBytes int64
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRateLimiter guards POST /predict with limiter. Nil disables limiting.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(o *serverOptions) { o.limiter = l }
}

// WithMaxBodyBytes caps the size of a prediction request body.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	return &Server{
		rootHandler:    NewRootHandler(),
		healthHandler:  NewHealthHandler(),
		readyHandler:   NewReadyHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider, deps),
		predictHandler: NewPredictHandler(deps, o.logger, o.maxBodyBytes),
		limiter:        o.limiter,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.readyHandler.HandleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(
		RateLimitMiddleware(s.predictHandler.HandlePredict, s.limiter, "predict", http.MethodPost), "predict"))
	mux.HandleFunc("/", MetricsMiddleware(s.rootHandler.HandleRoot, "root"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, op string, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}
