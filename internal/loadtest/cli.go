package loadtest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/attrition/pkg/logger"
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "loadtest_" + time.Now().Format("20060102_150405") + ".log"
	}
	if err := logger.Init(logger.WithFile(logFile, 0)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Attrition Load Test Tool
========================

Sends random employee records to a running prediction service and checks
every response for ensemble consistency.

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -requests int
        Number of predictions to request (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -rps float
        Client-side request rate, 0 for unlimited (default 50)
  -timeout duration
        HTTP request timeout (default 10s)
  -ready-wait duration
        How long to wait for /readyz (default 30s)
  -seed uint
        Generator seed, 0 for a random seed
  -output string
        Output file for samples (default: loadtest_samples_TIMESTAMP.json)
  -log string
        Log file for test output (default: loadtest_TIMESTAMP.log)
  -verbose
        Log every invariant violation
  -help
        Show this help message

Examples:
  # Test with default settings
  go run ./cmd/loadtest

  # Push harder against a remote instance
  go run ./cmd/loadtest -requests 20000 -workers 32 -rps 0 -url http://attrition:8000

  # Reproducible run
  go run ./cmd/loadtest -seed 42 -verbose
`)
}
