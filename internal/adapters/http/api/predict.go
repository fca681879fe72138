package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/ensemble"
	"github.com/okian/attrition/internal/domain/types"
	"github.com/okian/attrition/pkg/logger"
)

// PredictRequest mirrors the OpenAPI schema for POST /predict. Fields are
// pointers so a missing field can be told apart from a zero.
type PredictRequest struct {
	Age             *int `json:"Age"`
	MonthlyIncome   *int `json:"MonthlyIncome"`
	JobSatisfaction *int `json:"JobSatisfaction"`
	WorkLifeBalance *int `json:"WorkLifeBalance"`
	YearsAtCompany  *int `json:"YearsAtCompany"`
	OverTime        *int `json:"OverTime"`
}

// Record validates the request and converts it to an employee record.
func (p PredictRequest) Record() (employee.Record, error) {
	fields := []struct {
		name string
		v    *int
	}{
		{employee.FeatureNames[employee.IdxAge], p.Age},
		{employee.FeatureNames[employee.IdxMonthlyIncome], p.MonthlyIncome},
		{employee.FeatureNames[employee.IdxJobSatisfaction], p.JobSatisfaction},
		{employee.FeatureNames[employee.IdxWorkLifeBalance], p.WorkLifeBalance},
		{employee.FeatureNames[employee.IdxYearsAtCompany], p.YearsAtCompany},
		{employee.FeatureNames[employee.IdxOverTime], p.OverTime},
	}
	for _, f := range fields {
		if f.v == nil {
			return employee.Record{}, fmt.Errorf("%w: missing field %s", employee.ErrInvalidInput, f.name)
		}
	}
	return employee.FromInts(*p.Age, *p.MonthlyIncome, *p.JobSatisfaction, *p.WorkLifeBalance, *p.YearsAtCompany, *p.OverTime)
}

// ModelPrediction is one model's verdict on the wire.
type ModelPrediction struct {
	Risk        string  `json:"risk"`
	Probability float64 `json:"probability"`
}

// FinalDecision is the ensemble verdict on the wire.
type FinalDecision struct {
	EnsembleRisk       string  `json:"ensemble_risk"`
	AverageProbability float64 `json:"average_probability"`
	DecisionLogic      string  `json:"decision_logic"`
}

// Explanation carries the rule-based risk factors.
type Explanation struct {
	TopRiskFactors []string `json:"top_risk_factors"`
}

// PredictResponse is the body of a successful POST /predict.
type PredictResponse struct {
	IndividualPredictions map[string]ModelPrediction `json:"individual_predictions"`
	FinalDecision         FinalDecision              `json:"final_decision"`
	Explanation           Explanation                `json:"explanation"`
}

// NewPredictResponse renders an assessment in the wire shape.
func NewPredictResponse(a types.Assessment) PredictResponse {
	individual := make(map[string]ModelPrediction, 3)
	for _, v := range a.Result.Verdicts() {
		individual[v.Model] = ModelPrediction{Risk: string(v.Verdict.Risk), Probability: v.Verdict.Probability}
	}
	return PredictResponse{
		IndividualPredictions: individual,
		FinalDecision: FinalDecision{
			EnsembleRisk:       string(a.Result.FinalRisk),
			AverageProbability: a.Result.AverageProbability,
			DecisionLogic:      ensemble.DecisionLogic,
		},
		Explanation: Explanation{TopRiskFactors: a.Explanation},
	}
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps         Predictor
	logger       logger.Logger
	maxBodyBytes int64
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Predictor, l logger.Logger, maxBodyBytes int64) *PredictHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &PredictHandler{deps: deps, logger: l, maxBodyBytes: maxBodyBytes}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}

	var req PredictRequest
	if err := decodeBody(http.MaxBytesReader(w, r.Body, h.maxBodyBytes), &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", WrapKind(op, ErrInvalidInput, decodeError(err)))
		return
	}
	rec, err := req.Record()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", WrapKind(op, ErrInvalidInput, err))
		return
	}

	assessment, err := h.deps.Predict(r.Context(), rec)
	if err != nil {
		status, code, kind := classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "prediction failed",
				logger.String("requestId", RequestIDFromContext(r.Context())),
				logger.Error(err),
			)
		}
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}
	writeJSON(w, http.StatusOK, NewPredictResponse(assessment))
}

// classify maps service errors to an HTTP status, wire code and API kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, employee.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input", ErrInvalidInput
	case errors.Is(err, ensemble.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "model_unavailable", ErrModelUnavailable
	default:
		return http.StatusInternalServerError, "internal_error", ErrInternal
	}
}

// decodeError turns JSON decoding failures into messages naming the field.
// errTrailingData rejects bodies holding more than one JSON value.
var errTrailingData = errors.New("unexpected data after JSON object")

// decodeBody decodes exactly one JSON value from body; only whitespace may follow it.
func decodeBody(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	switch _, err := dec.Token(); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: %w", errTrailingData, err)
	default:
		return errTrailingData
	}
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("field %s must be an integer, got %s", typeErr.Field, typeErr.Value)
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
	}
	return fmt.Errorf("malformed JSON body: %w", err)
}
