// Package janitor runs periodic cache maintenance on cron schedules.
package janitor

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/krisalay/expiring-cache/stats"
)

// Cleaner removes expired entries and reports how many went.
type Cleaner interface {
	CleanUp() int
}

// StatsSource is what the stats report reads.
type StatsSource interface {
	Stats() stats.Snapshot
	Len() int
}

/*
Janitor owns a cron scheduler with second-level specs.

Expired entries are otherwise only removed when someone touches them, so an
idle cache would keep dead answers around; the cleanup job sweeps them. The
stats job logs the counters for operators without a Prometheus scraper.

A panicking job is recovered and logged, and a job still running when its
next tick arrives is skipped.
*/
type Janitor struct {
	cron *cron.Cron
	log  *logrus.Entry
}

func New(log *logrus.Entry) *Janitor {
	cl := cron.PrintfLogger(log)
	return &Janitor{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// AddCleanup schedules c.CleanUp on spec, e.g. "@every 30s".
func (j *Janitor) AddCleanup(spec string, c Cleaner) error {
	_, err := j.cron.AddFunc(spec, func() {
		if n := c.CleanUp(); n > 0 {
			j.log.WithField("removed", n).Info("expired entries cleaned up")
		}
	})
	if err != nil {
		return fmt.Errorf("janitor: cleanup schedule %q: %w", spec, err)
	}
	return nil
}

// AddStatsReport logs the counters of src on spec.
func (j *Janitor) AddStatsReport(spec string, src StatsSource) error {
	_, err := j.cron.AddFunc(spec, func() {
		s := src.Stats()
		j.log.WithFields(logrus.Fields{
			"entries":      src.Len(),
			"hits":         s.HitCount,
			"misses":       s.MissCount,
			"hit_rate":     s.HitRate,
			"load_success": s.LoadSuccessCount,
			"load_failure": s.LoadFailureCount,
			"avg_load":     s.AverageLoadPenalty().String(),
			"evictions":    s.EvictionCount,
			"expirations":  s.ExpirationCount,
		}).Info("cache stats")
	})
	if err != nil {
		return fmt.Errorf("janitor: stats schedule %q: %w", spec, err)
	}
	return nil
}

// Jobs returns the number of scheduled jobs.
func (j *Janitor) Jobs() int { return len(j.cron.Entries()) }

func (j *Janitor) Start() { j.cron.Start() }

// Stop halts scheduling. The returned context is done once running jobs finish.
func (j *Janitor) Stop() context.Context { return j.cron.Stop() }
