package types_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krisalay/expiring-cache/stats"
	"github.com/krisalay/expiring-cache/types"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := types.NewManualClock(start)

	assert.Equal(t, start, c.Now())
	c.Advance(15 * time.Second)
	assert.Equal(t, start.Add(15*time.Second), c.Now())
	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestRemovalCause_WasEvicted(t *testing.T) {
	assert.True(t, types.CauseSize.WasEvicted())
	assert.True(t, types.CauseExpired.WasEvicted())
	assert.False(t, types.CauseExplicit.WasEvicted())
	assert.False(t, types.CauseReplaced.WasEvicted())
	assert.Equal(t, "REPLACED", types.CauseReplaced.String())
}

func TestMultiMetrics_FansOut(t *testing.T) {
	a, b := stats.NewCounter(), stats.NewCounter()
	m := types.MultiMetrics{a, b, types.NoopMetrics{}}

	m.Hit()
	m.Miss()
	m.LoadSuccess(time.Millisecond)
	m.LoadFailure(time.Millisecond)
	m.Eviction(1)
	m.Expire()

	for _, c := range []*stats.Counter{a, b} {
		s := c.Snapshot()
		assert.Equal(t, int64(1), s.HitCount)
		assert.Equal(t, int64(1), s.MissCount)
		assert.Equal(t, int64(2), s.LoadCount())
		assert.Equal(t, int64(1), s.EvictionCount)
		assert.Equal(t, int64(1), s.ExpirationCount)
	}
}

func TestLoaderFunc(t *testing.T) {
	l := types.LoaderFunc[string, int](func(_ context.Context, k string) (int, error) { return len(k), nil })
	v, err := l.Load(context.Background(), "four")
	assert.NoError(t, err)
	assert.Equal(t, 4, v)
}
