package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerConfig configures the circuit breaker in front of a Generator.
type BreakerConfig struct {
	Name                string        `mapstructure:"name"`
	MaxRequests         uint32        `mapstructure:"max_requests"` // probes allowed while half-open
	Interval            time.Duration `mapstructure:"interval"`     // closed-state counting window
	Timeout             time.Duration `mapstructure:"timeout"`      // open-state duration
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "llm",
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

/*
Breaker decorates a Generator with a gobreaker circuit breaker.

After ConsecutiveFailures failed generations it rejects calls with
gobreaker.ErrOpenState until Timeout has passed. A caller giving up
(context cancelled or timed out) is not held against the backend.
*/
type Breaker struct {
	next Generator
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next Generator, cfg BreakerConfig, log *logrus.Entry) *Breaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 1
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	}

	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) Generate(ctx context.Context, prompt Prompt) (Response, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, prompt)
	})
	if err != nil {
		return Response{}, err
	}
	return out.(Response), nil
}

func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// Healthy reports whether calls are currently let through.
func (b *Breaker) Healthy() bool { return b.cb.State() != gobreaker.StateOpen }

// IsRejected reports whether err came from the breaker refusing the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
