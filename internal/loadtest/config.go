package loadtest

import (
	"time"

	"github.com/okian/attrition/internal/adapters/http/api"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of prediction requests to send
	Workers    int           // Number of concurrent workers
	RPS        float64       // Client-side request rate; 0 disables pacing
	Timeout    time.Duration // HTTP request timeout
	ReadyWait  time.Duration // How long to wait for /readyz before giving up
	OutputFile string        // Output file for samples
	Seed       uint64        // Seed for the record generator; 0 picks one
	Verbose    bool          // Log every invariant violation
}

// Employee is the JSON body sent to POST /predict.
type Employee struct {
	Age             int `json:"Age"`
	MonthlyIncome   int `json:"MonthlyIncome"`
	JobSatisfaction int `json:"JobSatisfaction"`
	WorkLifeBalance int `json:"WorkLifeBalance"`
	YearsAtCompany  int `json:"YearsAtCompany"`
	OverTime        int `json:"OverTime"`
}

// Sample is one request and what came back.
type Sample struct {
	ID         string               `json:"id"`
	Employee   Employee             `json:"employee"`
	Status     int                  `json:"status"`
	LatencyMs  float64              `json:"latency_ms"`
	Response   *api.PredictResponse `json:"response,omitempty"`
	Error      string               `json:"error,omitempty"`
	Violations []string             `json:"violations,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	RunID          string
	Generated      int
	Submitted      int
	Succeeded      int
	Failed         int
	RateLimited    int
	HighRisk       int
	Contradictions int
	Violations     int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
