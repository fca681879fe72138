package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/attrition/internal/loadtest"
	"github.com/okian/attrition/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests    = 1000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultRPS         = 50
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8000", "Base URL of the service")
		requests   = flag.Int("requests", defaultRequests, "Number of predictions to request")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		rps        = flag.Float64("rps", defaultRPS, "Client-side request rate, 0 for unlimited")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		readyWait  = flag.Duration("ready-wait", loadtest.DefaultReadyWait, "How long to wait for /readyz")
		seed       = flag.Uint64("seed", 0, "Generator seed, 0 for a random seed")
		outputFile = flag.String("output", "", "Output file for samples (default: loadtest_samples_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for test output (default: loadtest_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Log every invariant violation")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := loadtest.SetupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	if *outputFile == "" {
		*outputFile = "loadtest_samples_" + time.Now().Format("20060102_150405") + ".json"
	}

	cfg := &loadtest.Config{
		BaseURL:    *baseURL,
		Requests:   *requests,
		Workers:    *workers,
		RPS:        *rps,
		Timeout:    *timeout,
		ReadyWait:  *readyWait,
		OutputFile: *outputFile,
		Seed:       *seed,
		Verbose:    *verbose,
	}

	if _, err := loadtest.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		_ = logger.Sync()
		cancel()
		os.Exit(1) //nolint:gocritic // flushed and cancelled above
	}
}
