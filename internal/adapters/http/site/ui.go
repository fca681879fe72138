// Package site serves the interactive HTML form: an alternate presentation of
// the same prediction the JSON API returns.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/ensemble"
	"github.com/okian/attrition/internal/domain/types"
	"github.com/okian/attrition/pkg/logger"
)

// Path is where the form is served.
const Path = "/ui"

// Form bounds and defaults.
const (
	AgeMin     = 18
	AgeMax     = 60
	IncomeMin  = 1000
	IncomeMax  = 20000
	IncomeStep = 500
	YearsMin   = 0
	YearsMax   = 40

	DefaultAge             = 28
	DefaultMonthlyIncome   = 3500
	DefaultYearsAtCompany  = 1
	DefaultJobSatisfaction = 2
	DefaultWorkLifeBalance = 2
	DefaultOverTime        = true
)

var modelLabels = map[string]string{
	ensemble.ModelLogisticRegression: "Logistic Regression",
	ensemble.ModelDecisionTree:       "Decision Tree",
	ensemble.ModelRandomForest:       "Random Forest",
}

// Predictor is the prediction service shared with the JSON API.
type Predictor interface {
	Predict(ctx context.Context, r employee.Record) (types.Assessment, error)
}

type bounds struct {
	AgeMin, AgeMax       int
	IncomeMin, IncomeMax int
	IncomeStep           int
	YearsMin, YearsMax   int
}

type modelView struct {
	Name        string
	Risk        string
	Probability float64
}

type resultView struct {
	FinalRisk          string
	AverageProbability float64
	Models             []modelView
	Reasons            []string
}

type page struct {
	Form    employee.Record
	Bounds  bounds
	Ratings []int
	Result  *resultView
	Error   string
}

// Handler renders the form and its results.
type Handler struct {
	deps   Predictor
	logger logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates the form handler.
func New(deps Predictor, opts ...Option) *Handler {
	h := &Handler{deps: deps}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get()
	}
	return h
}

// Register attaches the form route to mux. Middleware is applied in order,
// the first one outermost.
func Register(_ context.Context, mux *http.ServeMux, h *Handler, middleware ...func(http.HandlerFunc) http.HandlerFunc) {
	if mux == nil {
		panic("mux is nil")
	}
	handler := http.HandlerFunc(h.HandleUI)
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	mux.HandleFunc(Path, handler)
}

// DefaultForm returns the values the form starts with.
func DefaultForm() employee.Record {
	return employee.Record{
		Age:             DefaultAge,
		MonthlyIncome:   DefaultMonthlyIncome,
		JobSatisfaction: DefaultJobSatisfaction,
		WorkLifeBalance: DefaultWorkLifeBalance,
		YearsAtCompany:  DefaultYearsAtCompany,
		OverTime:        DefaultOverTime,
	}
}

// HandleUI handles GET /ui (empty form) and POST /ui (form plus prediction).
func (h *Handler) HandleUI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, r, http.StatusOK, newPage(DefaultForm()))
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	rec, err := ParseForm(r)
	if err != nil {
		p := newPage(rec)
		p.Error = err.Error()
		h.render(w, r, http.StatusUnprocessableEntity, p)
		return
	}

	p := newPage(rec)
	assessment, err := h.deps.Predict(r.Context(), rec)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, employee.ErrInvalidInput):
			status = http.StatusUnprocessableEntity
			p.Error = err.Error()
		case errors.Is(err, ensemble.ErrModelUnavailable):
			status = http.StatusServiceUnavailable
			p.Error = "Models are not loaded. Please try again later."
		default:
			p.Error = "Prediction failed. Please try again."
			h.logger.Error(r.Context(), "ui prediction failed", logger.Error(err))
		}
		h.render(w, r, status, p)
		return
	}

	p.Result = newResultView(assessment)
	h.render(w, r, http.StatusOK, p)
}

// ParseForm reads the six form fields and checks them against the form bounds.
// On error the returned record still holds whatever parsed, for re-rendering.
func ParseForm(r *http.Request) (employee.Record, error) {
	rec := DefaultForm()
	if err := r.ParseForm(); err != nil {
		return rec, fmt.Errorf("%w: %w", ErrForm, err)
	}

	fields := []struct {
		key      string
		label    string
		min, max int
		dst      *int
	}{
		{"age", "Age", AgeMin, AgeMax, &rec.Age},
		{"monthly_income", "Monthly Income", IncomeMin, IncomeMax, &rec.MonthlyIncome},
		{"years_at_company", "Years at Company", YearsMin, YearsMax, &rec.YearsAtCompany},
		{"job_satisfaction", "Job Satisfaction", employee.MinRating, employee.MaxRating, &rec.JobSatisfaction},
		{"work_life_balance", "Work Life Balance", employee.MinRating, employee.MaxRating, &rec.WorkLifeBalance},
	}
	var errs []error
	for _, f := range fields {
		raw := strings.TrimSpace(r.PostForm.Get(f.key))
		v, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s must be a whole number", f.label))
			continue
		case v < f.min || v > f.max:
			errs = append(errs, fmt.Errorf("%s must be between %d and %d", f.label, f.min, f.max))
		}
		*f.dst = v
	}

	switch r.PostForm.Get("overtime") {
	case "Yes":
		rec.OverTime = true
	case "No":
		rec.OverTime = false
	default:
		errs = append(errs, errors.New("overtime answer must be Yes or No"))
	}

	if len(errs) > 0 {
		return rec, fmt.Errorf("%w: %w", ErrForm, errors.Join(errs...))
	}
	return rec, nil
}

func newPage(form employee.Record) page {
	return page{
		Form: form,
		Bounds: bounds{
			AgeMin: AgeMin, AgeMax: AgeMax,
			IncomeMin: IncomeMin, IncomeMax: IncomeMax, IncomeStep: IncomeStep,
			YearsMin: YearsMin, YearsMax: YearsMax,
		},
		Ratings: []int{1, 2, 3, 4},
	}
}

func newResultView(a types.Assessment) *resultView {
	v := &resultView{
		FinalRisk:          string(a.Result.FinalRisk),
		AverageProbability: a.Result.AverageProbability,
		Reasons:            a.Explanation,
	}
	for _, nv := range a.Result.Verdicts() {
		v.Models = append(v.Models, modelView{
			Name:        modelLabels[nv.Model],
			Risk:        string(nv.Verdict.Risk),
			Probability: nv.Verdict.Probability,
		})
	}
	return v
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		h.logger.Error(r.Context(), "ui render failed", logger.Error(fmt.Errorf("%w: %w", ErrRender, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
