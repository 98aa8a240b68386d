package sessions

import (
	"context"
	"time"
)

// keyPrefix is the stable cache key scheme: session:{login_id}.
const keyPrefix = "session:"

// Key returns the cache key for a login.
func Key(loginID string) string {
	return keyPrefix + loginID
}

// Repo is the session cache contract.
//
// Put overwrites any existing entry and resets its TTL; two concurrent
// puts for the same login resolve last-write-wins, both writes being
// equally valid fresh sessions. Get returns (nil, nil) both when the
// entry was never set and when its TTL elapsed - callers must not
// distinguish the two. Delete is idempotent.
//
// Backend failures surface as errors.ErrCacheUnavailable. Callers using
// the cache as a fast path treat that identically to absent.
type Repo interface {
	Put(ctx context.Context, loginID string, rec *Record, ttl time.Duration) error
	Get(ctx context.Context, loginID string) (*Record, error)
	Delete(ctx context.Context, loginID string) error
}
