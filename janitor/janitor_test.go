package janitor_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/expiring-cache"
	"github.com/krisalay/expiring-cache/janitor"
	"github.com/krisalay/expiring-cache/logger"
	"github.com/krisalay/expiring-cache/types"
)

type countingCleaner struct{ runs atomic.Int64 }

func (c *countingCleaner) CleanUp() int {
	c.runs.Add(1)
	return 0
}

func TestJanitor_RejectsBadSpec(t *testing.T) {
	j := janitor.New(logger.Discard())

	assert.Error(t, j.AddCleanup("every now and then", &countingCleaner{}))
	assert.Error(t, j.AddStatsReport("* * *", nil))
	assert.Zero(t, j.Jobs())
}

func TestJanitor_RunsCleanup(t *testing.T) {
	j := janitor.New(logger.Discard())
	cleaner := &countingCleaner{}

	require.NoError(t, j.AddCleanup("@every 1s", cleaner))
	assert.Equal(t, 1, j.Jobs())

	j.Start()
	defer j.Stop()

	require.Eventually(t, func() bool { return cleaner.runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestJanitor_SweepsExpiredEntriesAndReports(t *testing.T) {
	clock := types.NewManualClock(time.Now())
	c, err := cache.New(cache.Config[string, int]{
		MaxSize: 10,
		TTL:     time.Second,
		Clock:   clock,
		Logger:  logger.Discard(),
	})
	require.NoError(t, err)
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2)
	clock.Advance(2 * time.Second)

	log, hook := test.NewNullLogger()
	j := janitor.New(logrus.NewEntry(log))
	require.NoError(t, j.AddCleanup("@every 1s", c))
	require.NoError(t, j.AddStatsReport("@every 1s", c))

	j.Start()
	require.Eventually(t, func() bool { return c.Len() == 0 }, 3*time.Second, 20*time.Millisecond)
	<-j.Stop().Done()

	assert.Equal(t, int64(2), c.Stats().ExpirationCount)

	var sawStats bool
	for _, e := range hook.AllEntries() {
		if e.Message == "cache stats" {
			sawStats = true
		}
	}
	assert.True(t, sawStats)
}
