// Package stats keeps the cache's lifetime counters.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/krisalay/expiring-cache/types"
)

/*
Counter records cache events with one atomic per counter.

Counters only ever grow. Nothing in the cache resets them, invalidation
included, so a Snapshot taken later is never smaller field by field than one
taken earlier.
*/
type Counter struct {
	hitCount         atomic.Int64
	missCount        atomic.Int64
	loadSuccessCount atomic.Int64
	loadFailureCount atomic.Int64
	totalLoadTime    atomic.Int64 // nanoseconds
	evictionCount    atomic.Int64
	evictionWeight   atomic.Int64
	expirationCount  atomic.Int64
}

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Hit()  { c.hitCount.Add(1) }
func (c *Counter) Miss() { c.missCount.Add(1) }

func (c *Counter) LoadSuccess(elapsed time.Duration) {
	c.loadSuccessCount.Add(1)
	c.totalLoadTime.Add(int64(elapsed))
}

func (c *Counter) LoadFailure(elapsed time.Duration) {
	c.loadFailureCount.Add(1)
	c.totalLoadTime.Add(int64(elapsed))
}

func (c *Counter) Eviction(weight int64) {
	c.evictionCount.Add(1)
	c.evictionWeight.Add(weight)
}

func (c *Counter) Expire() { c.expirationCount.Add(1) }

// Snapshot reads every counter once. Each field is a valid value on its own;
// fields are not read at one instant together.
func (c *Counter) Snapshot() Snapshot {
	s := Snapshot{
		HitCount:           c.hitCount.Load(),
		MissCount:          c.missCount.Load(),
		LoadSuccessCount:   c.loadSuccessCount.Load(),
		LoadFailureCount:   c.loadFailureCount.Load(),
		TotalLoadTimeNanos: c.totalLoadTime.Load(),
		EvictionCount:      c.evictionCount.Load(),
		EvictionWeight:     c.evictionWeight.Load(),
		ExpirationCount:    c.expirationCount.Load(),
	}
	s.HitRate = ratio(s.HitCount, s.RequestCount())
	return s
}

var _ types.Metrics = (*Counter)(nil)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	HitCount           int64   `json:"hit_count"`
	MissCount          int64   `json:"miss_count"`
	LoadSuccessCount   int64   `json:"load_success_count"`
	LoadFailureCount   int64   `json:"load_failure_count"`
	TotalLoadTimeNanos int64   `json:"total_load_time_nanos"`
	EvictionCount      int64   `json:"eviction_count"`
	EvictionWeight     int64   `json:"eviction_weight"`
	ExpirationCount    int64   `json:"expiration_count"`
	HitRate            float64 `json:"hit_rate"`
}

// RequestCount is hits plus misses: one per lookup.
func (s Snapshot) RequestCount() int64 { return s.HitCount + s.MissCount }

// MissRate is 0 when nothing was requested, like HitRate.
func (s Snapshot) MissRate() float64 { return ratio(s.MissCount, s.RequestCount()) }

func (s Snapshot) LoadCount() int64 { return s.LoadSuccessCount + s.LoadFailureCount }

// AverageLoadPenalty is the mean time spent per load, successful or not.
func (s Snapshot) AverageLoadPenalty() time.Duration {
	if n := s.LoadCount(); n > 0 {
		return time.Duration(s.TotalLoadTimeNanos / n)
	}
	return 0
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
