package lock

import (
	"context"
	"sync"
	"time"
)

// DefaultName is the lease name used by the sync engine.
const DefaultName = "inventory-sync"

// Acquisition is the outcome of TryAcquire.
type Acquisition struct {
	// Acquired reports whether the caller now holds the lease.
	Acquired bool
	// Holder is the current owner when Acquired is false.
	Holder string
	// Expired is the previous owner whose lease ran out and was taken over.
	Expired string
}

// Locker grants an exclusive, expiring lease.
type Locker interface {
	// TryAcquire takes the lease for owner if it is free, expired or already held by
	// owner. When the lease is held by someone else it reports the holder.
	TryAcquire(ctx context.Context, owner string, ttl time.Duration) (Acquisition, error)

	// Release frees the lease if owner holds it. Releasing a lease held by someone
	// else is a no-op.
	Release(ctx context.Context, owner string) error
}

// MemoryLocker is an in-process Locker.
type MemoryLocker struct {
	mu      sync.Mutex
	owner   string
	expires time.Time
	now     func() time.Time
}

// NewMemoryLocker creates a free in-process lock.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{now: time.Now}
}

func (l *MemoryLocker) TryAcquire(ctx context.Context, owner string, ttl time.Duration) (Acquisition, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.owner != "" && l.owner != owner && now.Before(l.expires) {
		return Acquisition{Holder: l.owner}, nil
	}

	acq := Acquisition{Acquired: true, Holder: owner}
	if l.owner != "" && l.owner != owner {
		acq.Expired = l.owner
	}
	l.owner = owner
	l.expires = now.Add(ttl)
	return acq, nil
}

func (l *MemoryLocker) Release(ctx context.Context, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owner == owner {
		l.owner = ""
		l.expires = time.Time{}
	}
	return nil
}
