package expiration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/expiring-cache/types"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestExpireAfterWrite_Boundary(t *testing.T) {
	s := &ExpireAfterWrite{TTL: 15 * time.Second}
	var ts types.Timestamps
	s.OnWrite(&ts, t0)

	assert.False(t, s.IsExpired(&ts, t0))
	assert.False(t, s.IsExpired(&ts, t0.Add(15*time.Second-time.Nanosecond)))
	assert.True(t, s.IsExpired(&ts, t0.Add(15*time.Second)))
	assert.True(t, s.IsExpired(&ts, t0.Add(time.Minute)))
}

func TestExpireAfterWrite_ReadsDoNotExtend(t *testing.T) {
	s := &ExpireAfterWrite{TTL: 10 * time.Second}
	var ts types.Timestamps
	s.OnWrite(&ts, t0)
	s.OnAccess(&ts, t0.Add(9*time.Second))

	assert.Equal(t, t0.Add(9*time.Second), ts.AccessedAt)
	assert.True(t, s.IsExpired(&ts, t0.Add(10*time.Second)))
}

func TestExpireAfterAccess_Slides(t *testing.T) {
	s := &ExpireAfterAccess{TTL: 10 * time.Second}
	var ts types.Timestamps
	s.OnWrite(&ts, t0)
	s.OnAccess(&ts, t0.Add(9*time.Second))

	assert.False(t, s.IsExpired(&ts, t0.Add(18*time.Second)))
	assert.True(t, s.IsExpired(&ts, t0.Add(19*time.Second)))
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &ExpireAfterWrite{}, s)

	s, err = NewStrategy(AfterAccess, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &ExpireAfterAccess{}, s)

	_, err = NewStrategy("forever", time.Second)
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = NewStrategy(AfterWrite, 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}
