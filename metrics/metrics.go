// Package metrics exports cache events as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/krisalay/expiring-cache/types"
)

const namespace = "llmcache"

/*
Collector implements types.Metrics on top of Prometheus counters.

It is handed to the cache through Config.Metrics and runs next to the
cache's own stats.Counter, so /metrics and /api/stats see the same events.
Every metric is registered on the Registerer passed to NewCollector, which
keeps tests free to use a private registry.
*/
type Collector struct {
	requests     *prometheus.CounterVec
	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	evictions    prometheus.Counter
	evictWeight  prometheus.Counter
	expirations  prometheus.Counter

	reg prometheus.Registerer
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		reg: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of cache lookups",
			},
			[]string{"result"}, // result: hit, miss
		),
		loads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of loader invocations",
			},
			[]string{"result"}, // result: success, failure
		),
		loadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Wall-clock duration of loader invocations in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"result"},
		),
		evictions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evictions_total",
				Help:      "Total number of entries evicted for capacity",
			},
		),
		evictWeight: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "eviction_weight_total",
				Help:      "Total weight of entries evicted for capacity",
			},
		),
		expirations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expirations_total",
				Help:      "Total number of entries removed after their TTL",
			},
		),
	}
}

func (c *Collector) Hit()  { c.requests.WithLabelValues("hit").Inc() }
func (c *Collector) Miss() { c.requests.WithLabelValues("miss").Inc() }

func (c *Collector) LoadSuccess(elapsed time.Duration) {
	c.loads.WithLabelValues("success").Inc()
	c.loadDuration.WithLabelValues("success").Observe(elapsed.Seconds())
}

func (c *Collector) LoadFailure(elapsed time.Duration) {
	c.loads.WithLabelValues("failure").Inc()
	c.loadDuration.WithLabelValues("failure").Observe(elapsed.Seconds())
}

func (c *Collector) Eviction(weight int64) {
	c.evictions.Inc()
	c.evictWeight.Add(float64(weight))
}

func (c *Collector) Expire() { c.expirations.Inc() }

// TrackSize exports the current entry count, read on every scrape.
func (c *Collector) TrackSize(size func() int) {
	promauto.With(c.reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Number of entries currently stored",
		},
		func() float64 { return float64(size()) },
	)
}

// Requests exposes the lookup counter for one result label.
func (c *Collector) Requests(result string) prometheus.Counter {
	return c.requests.WithLabelValues(result)
}

func (c *Collector) Evictions() prometheus.Counter { return c.evictions }

var _ types.Metrics = (*Collector)(nil)
