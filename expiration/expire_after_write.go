package expiration

import (
	"time"

	"github.com/krisalay/expiring-cache/types"
)

/*
ExpireAfterWrite gives every entry a fixed lifetime measured from its last write.

An entry written at T is alive for every read at T' with T' - T < TTL and dead
from T + TTL on. Reading it does not buy it more time; only a reload does.
*/
type ExpireAfterWrite struct {
	TTL time.Duration
}

func (e *ExpireAfterWrite) IsExpired(ts *types.Timestamps, now time.Time) bool {
	return expiredSince(ts.WrittenAt, now, e.TTL)
}

// OnAccess only records the read time; it never moves the deadline.
func (e *ExpireAfterWrite) OnAccess(ts *types.Timestamps, now time.Time) {
	ts.AccessedAt = now
}

func (e *ExpireAfterWrite) OnWrite(ts *types.Timestamps, now time.Time) {
	ts.WrittenAt = now
	ts.AccessedAt = now
}
