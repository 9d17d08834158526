package service

import (
	"context"
	"fmt"
	"time"

	"peergrade/internal/model"
	"peergrade/internal/repository"
)

// DefaultLockTimeout is how long a holder keeps the artifact lock without
// re-acquiring it. A holder that never returns is recovered by expiry alone.
const DefaultLockTimeout = 5 * time.Minute

// LockManager implements the per-artifact mutual exclusion used when
// team-based reviewing is enabled. The lock is a persisted record; expiry is
// checked on every access, there is no background sweep and no blocking wait.
type LockManager struct {
	locks   repository.LockRepo
	timeout time.Duration
	now     func() time.Time
}

// NewLockManager creates a lock manager. A timeout of zero selects
// DefaultLockTimeout.
func NewLockManager(locks repository.LockRepo, timeout time.Duration) *LockManager {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &LockManager{
		locks:   locks,
		timeout: timeout,
		now:     time.Now,
	}
}

// Acquire takes the lock for the mapping on behalf of holderID. Re-acquiring
// a lock you already hold succeeds and refreshes the expiry. An unexpired
// lock held by someone else yields ErrLocked.
func (m *LockManager) Acquire(ctx context.Context, mapID, holderID string) (*model.ResponseLock, error) {
	existing, err := m.locks.Get(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to read lock: %w", err)
	}
	now := m.now()
	if existing != nil && !existing.ExpiredAt(now) && existing.HolderID != holderID {
		return nil, ErrLocked
	}

	lock := &model.ResponseLock{
		MapID:      mapID,
		HolderID:   holderID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(m.timeout),
	}
	if err := m.locks.Put(ctx, lock); err != nil {
		return nil, fmt.Errorf("failed to write lock: %w", err)
	}
	return lock, nil
}

// Held reports whether holderID currently owns an unexpired lock on the
// mapping.
func (m *LockManager) Held(ctx context.Context, mapID, holderID string) (bool, error) {
	existing, err := m.locks.Get(ctx, mapID)
	if err != nil {
		return false, fmt.Errorf("failed to read lock: %w", err)
	}
	if existing == nil || existing.ExpiredAt(m.now()) {
		return false, nil
	}
	return existing.HolderID == holderID, nil
}

// Release drops the lock unconditionally. Deleting a lock that is already
// gone is not an error.
func (m *LockManager) Release(ctx context.Context, mapID string) error {
	return m.locks.Delete(ctx, mapID)
}
