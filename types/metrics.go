package types

import "time"

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when the cache returns a live entry without loading.
	Hit()

	// Miss is called when a lookup finds no live entry.
	Miss()

	// LoadSuccess is called once per successful load with the time it took.
	LoadSuccess(elapsed time.Duration)

	// LoadFailure is called once per failed load with the time it took.
	LoadFailure(elapsed time.Duration)

	// Eviction is called when a key is removed because the cache is over capacity.
	Eviction(weight int64)

	// Expire is called when a key is removed because it has passed its TTL.
	Expire()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

If someone does not care about metrics, the cache still works without
nil checks on every call path.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()                      {}
func (NoopMetrics) Miss()                     {}
func (NoopMetrics) LoadSuccess(time.Duration) {}
func (NoopMetrics) LoadFailure(time.Duration) {}
func (NoopMetrics) Eviction(int64)            {}
func (NoopMetrics) Expire()                   {}

// MultiMetrics fans every event out to each of its members in order.
type MultiMetrics []Metrics

func (m MultiMetrics) Hit() {
	for _, s := range m {
		s.Hit()
	}
}

func (m MultiMetrics) Miss() {
	for _, s := range m {
		s.Miss()
	}
}

func (m MultiMetrics) LoadSuccess(elapsed time.Duration) {
	for _, s := range m {
		s.LoadSuccess(elapsed)
	}
}

func (m MultiMetrics) LoadFailure(elapsed time.Duration) {
	for _, s := range m {
		s.LoadFailure(elapsed)
	}
}

func (m MultiMetrics) Eviction(weight int64) {
	for _, s := range m {
		s.Eviction(weight)
	}
}

func (m MultiMetrics) Expire() {
	for _, s := range m {
		s.Expire()
	}
}
