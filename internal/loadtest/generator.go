package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/pkg/logger"
)

// Generator produces valid employee records. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed. A zero seed uses the clock.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Next returns a random record inside the accepted ranges.
func (g *Generator) Next() Employee {
	return Employee{
		Age:             between(g.rng, minAge, maxAge),
		MonthlyIncome:   between(g.rng, minIncome, maxIncome),
		JobSatisfaction: between(g.rng, employee.MinRating, employee.MaxRating),
		WorkLifeBalance: between(g.rng, employee.MinRating, employee.MaxRating),
		YearsAtCompany:  between(g.rng, 0, maxTenureYears),
		OverTime:        g.rng.IntN(2),
	}
}

// between returns a value in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// generateSamples creates cfg.Requests samples, each with its own request ID.
func generateSamples(ctx context.Context, cfg *Config, stats *Stats) ([]Sample, error) {
	if cfg.Requests < 0 {
		return nil, fmt.Errorf("%w: requests must not be negative, got %d", ErrInvalidConfig, cfg.Requests)
	}
	logger.Get().Info(ctx, "generating employee records", logger.Int("requests", cfg.Requests))

	gen := NewGenerator(cfg.Seed)
	samples := make([]Sample, cfg.Requests)
	for i := range samples {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		samples[i] = Sample{ID: uuid.NewString(), Employee: gen.Next()}
	}

	stats.Generated = len(samples)
	return samples, nil
}

// record converts the wire body into a domain record.
func (e Employee) record() (employee.Record, error) {
	return employee.FromInts(e.Age, e.MonthlyIncome, e.JobSatisfaction, e.WorkLifeBalance, e.YearsAtCompany, e.OverTime)
}
