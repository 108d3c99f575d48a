// Package lock provides the short-lived exclusive leases guarding the
// reservation critical section. Leases live in an external store with atomic
// set-if-absent and compare-and-delete primitives; nothing here relies on
// in-process mutual exclusion.
package lock

import (
	"context"
	"fmt"
	"time"
)

// Locker hands out TTL-bounded exclusive leases on string keys.
//
// Acquire is non-blocking: it either obtains a fresh lease and returns its
// owner token, or reports the key as held. Callers decide their own retry
// policy. Release deletes the lease only while the supplied token still owns
// it, so a late release never evicts another holder.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

const slotKeyTimeLayout = "200601021504"

// SlotKey names the lease contended by reservation attempts for one table
// and one exact interval. Minute granularity matches the reservation grid;
// overlapping-but-different intervals are settled by the in-lease overlap
// query, not by the lease itself.
func SlotKey(tableID string, start, end time.Time) string {
	return fmt.Sprintf("lock:reservation:table:%s:%s-%s",
		tableID,
		start.UTC().Format(slotKeyTimeLayout),
		end.UTC().Format(slotKeyTimeLayout),
	)
}
