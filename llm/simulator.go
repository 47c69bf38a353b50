package llm

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// SimulatorConfig shapes the simulated backend.
type SimulatorConfig struct {
	// Each call sleeps a random duration in [MinLatency, MaxLatency).
	MinLatency time.Duration `mapstructure:"min_latency"`
	MaxLatency time.Duration `mapstructure:"max_latency"`

	// FailureRate is the probability in [0, 1] that a call fails.
	FailureRate float64 `mapstructure:"failure_rate"`

	// RateLimit is the provider quota in calls per second. Zero means unlimited.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`

	// MaxConcurrent bounds generations running at once. Zero means unbounded.
	MaxConcurrent int64 `mapstructure:"max_concurrent"`
}

// DefaultSimulatorConfig mirrors a slow but healthy model.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		MinLatency:    300 * time.Millisecond,
		MaxLatency:    500 * time.Millisecond,
		RateLimit:     20,
		Burst:         5,
		MaxConcurrent: 8,
	}
}

/*
Simulator is a Generator that behaves like a remote model:

- waits for the provider quota (token bucket)
- waits for a free concurrency slot
- sleeps a random latency
- fails at the configured rate

Every wait honours ctx, so a caller that gives up frees its slot.
*/
type Simulator struct {
	cfg     SimulatorConfig
	limiter *rate.Limiter
	sem     *semaphore.Weighted // nil when unbounded
	log     *logrus.Entry

	// chance returns a number in [0, 1); replaced in tests.
	chance func() float64
}

func NewSimulator(cfg SimulatorConfig, log *logrus.Entry) *Simulator {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Simulator{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
		chance:  rand.Float64,
	}
	if cfg.MaxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return s
}

func (s *Simulator) Generate(ctx context.Context, prompt Prompt) (Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("llm: waiting for quota: %w", err)
	}

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return Response{}, fmt.Errorf("llm: waiting for a slot: %w", err)
		}
		defer s.sem.Release(1)
	}

	delay := s.latency()
	s.log.WithFields(logrus.Fields{"prompt": prompt, "latency": delay}).Debug("generating")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	if s.cfg.FailureRate > 0 && s.chance() < s.cfg.FailureRate {
		return Response{}, fmt.Errorf("%w: prompt %q", ErrGenerationFailed, prompt)
	}

	return Response{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		Answer:    "Answer to: " + string(prompt),
		CreatedAt: time.Now(),
	}, nil
}

func (s *Simulator) latency() time.Duration {
	spread := s.cfg.MaxLatency - s.cfg.MinLatency
	if spread <= 0 {
		return s.cfg.MinLatency
	}
	return s.cfg.MinLatency + time.Duration(s.chance()*float64(spread))
}
