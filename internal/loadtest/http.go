package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/okian/attrition/internal/adapters/http/api"
	"github.com/okian/attrition/pkg/logger"
	"golang.org/x/time/rate"
)

// Client talks to a running prediction service.
type Client struct {
	rc *resty.Client
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{rc: rc}
}

// WaitReady polls /readyz with exponential backoff until it returns 200 or
// maxWait elapses.
func (c *Client) WaitReady(ctx context.Context, maxWait time.Duration) error {
	op := func() error {
		resp, err := c.rc.R().SetContext(ctx).Get("/readyz")
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("%w: readyz returned %d", ErrNotReady, resp.StatusCode())
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = readyInitialInterval
	b.MaxElapsedTime = maxWait
	notify := func(err error, next time.Duration) {
		logger.Get().Debug(ctx, "service not ready yet", logger.Error(err), logger.String("retryIn", next.String()))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

// Predict posts one employee record. Non-2xx statuses are not errors; the
// status is returned for the caller to classify.
func (c *Client) Predict(ctx context.Context, requestID string, e Employee) (*api.PredictResponse, int, error) {
	var (
		out    api.PredictResponse
		failed apiError
	)
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader(api.RequestIDHeader, requestID).
		SetBody(e).
		SetResult(&out).
		SetError(&failed).
		Post("/predict")
	if err != nil {
		return nil, 0, fmt.Errorf("post /predict: %w", err)
	}
	if resp.IsError() {
		return nil, resp.StatusCode(), fmt.Errorf("%s: %s", failed.Code, failed.Message)
	}
	return &out, resp.StatusCode(), nil
}

// submitSamples sends every sample through a worker pool and fills in the
// response fields in place.
func submitSamples(ctx context.Context, cfg *Config, client *Client, samples []Sample, stats *Stats) {
	logger.Get().Info(ctx, "submitting predictions",
		logger.Int("requests", len(samples)),
		logger.Int("workers", cfg.Workers),
		logger.Float64("rps", cfg.RPS))

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(1, cfg.Workers))
	}

	var submitted, succeeded, failed, limited int64

	indexes := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						samples[i].Error = err.Error()
						atomic.AddInt64(&failed, 1)
						continue
					}
				}
				submitOne(ctx, client, &samples[i])
				atomic.AddInt64(&submitted, 1)
				switch {
				case samples[i].Response != nil:
					atomic.AddInt64(&succeeded, 1)
				case samples[i].Status == http.StatusTooManyRequests:
					atomic.AddInt64(&limited, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range samples {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Succeeded = int(atomic.LoadInt64(&succeeded))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.RateLimited = int(atomic.LoadInt64(&limited))

	logger.Get().Info(ctx, "submission completed",
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed))
}

func submitOne(ctx context.Context, client *Client, s *Sample) {
	start := time.Now()
	resp, status, err := client.Predict(ctx, s.ID, s.Employee)
	s.LatencyMs = float64(time.Since(start).Microseconds()) / 1000
	s.Status = status
	if err != nil {
		s.Error = err.Error()
		return
	}
	s.Response = resp
}
