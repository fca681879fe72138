package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/attrition/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete load test: wait for readiness, generate records,
// submit them concurrently, verify every response and save the samples.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	if cfg.Requests < 0 {
		return stats, fmt.Errorf("%w: requests must not be negative, got %d", ErrInvalidConfig, cfg.Requests)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ReadyWait <= 0 {
		cfg.ReadyWait = DefaultReadyWait
	}

	logger.Get().Info(ctx, "starting attrition load test",
		logger.String("runId", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Wait for the models to load
	if err := client.WaitReady(ctx, cfg.ReadyWait); err != nil {
		return stats, err
	}

	// Step 2: Generate records
	samples, err := generateSamples(ctx, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("record generation failed: %w", err)
	}

	// Step 3: Submit concurrently
	submitSamples(ctx, cfg, client, samples, stats)

	// Step 4: Verify
	verifyErr := verifySamples(ctx, cfg, samples, stats)

	// Step 5: Save samples
	if cfg.OutputFile != "" {
		if err := saveSamples(ctx, cfg.OutputFile, samples); err != nil {
			logger.Get().Warn(ctx, "failed to save samples", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	logger.Get().Info(ctx, "load test completed successfully")
	return stats, nil
}

// saveSamples writes the samples to filename as a JSON array.
func saveSamples(ctx context.Context, filename string, samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal samples: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}

	logger.Get().Info(ctx, "samples saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Succeeded) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("runId", stats.RunID),
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed),
		logger.Int("highRisk", stats.HighRisk),
		logger.Int("contradictions", stats.Contradictions),
		logger.Int("violations", stats.Violations),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
