package expiration

import (
	"time"

	"github.com/krisalay/expiring-cache/types"
)

/*
ExpireAfterAccess implements a very common cache behavior called "expire after access" or "sliding TTL".
Every time someone reads the data, the expiration timer is pushed forward. As long as the data keeps
getting used, it stays alive. If nobody touches it for a while, it expires.
*/
type ExpireAfterAccess struct {

	// TTL (Time-To-Live) defines how long the entry should remain valid AFTER it is accessed.
	TTL time.Duration
}

// IsExpired checks whether the entry has been idle for at least TTL.
func (e *ExpireAfterAccess) IsExpired(ts *types.Timestamps, now time.Time) bool {
	return expiredSince(ts.AccessedAt, now, e.TTL)
}

// OnAccess pushes the deadline forward by resetting the access time.
func (e *ExpireAfterAccess) OnAccess(ts *types.Timestamps, now time.Time) {
	ts.AccessedAt = now
}

// OnWrite counts as an access as well.
func (e *ExpireAfterAccess) OnWrite(ts *types.Timestamps, now time.Time) {
	ts.WrittenAt = now
	ts.AccessedAt = now
}
