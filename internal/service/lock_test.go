package service

import (
	"context"
	"testing"
	"time"

	"peergrade/internal/model"
)

func TestLockManagerAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("first holder wins", func(t *testing.T) {
		f := newFixture()
		if _, err := f.locks.Acquire(ctx, "map_1", "alice"); err != nil {
			t.Fatalf("first acquire: %v", err)
		}
		if _, err := f.locks.Acquire(ctx, "map_1", "bob"); err != ErrLocked {
			t.Fatalf("second holder got %v, want ErrLocked", err)
		}
	})

	t.Run("re-acquire refreshes expiry", func(t *testing.T) {
		f := newFixture()
		first, err := f.locks.Acquire(ctx, "map_1", "alice")
		if err != nil {
			t.Fatalf("first acquire: %v", err)
		}
		f.locks.now = func() time.Time { return first.AcquiredAt.Add(time.Minute) }
		second, err := f.locks.Acquire(ctx, "map_1", "alice")
		if err != nil {
			t.Fatalf("re-acquire by holder: %v", err)
		}
		if !second.ExpiresAt.After(first.ExpiresAt) {
			t.Errorf("expiry not refreshed: %v then %v", first.ExpiresAt, second.ExpiresAt)
		}
	})

	t.Run("expired lock falls to a new holder", func(t *testing.T) {
		f := newFixture()
		first, err := f.locks.Acquire(ctx, "map_1", "alice")
		if err != nil {
			t.Fatalf("first acquire: %v", err)
		}
		f.locks.now = func() time.Time { return first.ExpiresAt.Add(time.Second) }
		lock, err := f.locks.Acquire(ctx, "map_1", "bob")
		if err != nil {
			t.Fatalf("acquire after expiry: %v", err)
		}
		if lock.HolderID != "bob" {
			t.Errorf("holder = %s, want bob", lock.HolderID)
		}
	})

	t.Run("independent artifacts do not contend", func(t *testing.T) {
		f := newFixture()
		if _, err := f.locks.Acquire(ctx, "map_1", "alice"); err != nil {
			t.Fatalf("acquire map_1: %v", err)
		}
		if _, err := f.locks.Acquire(ctx, "map_2", "bob"); err != nil {
			t.Fatalf("acquire map_2: %v", err)
		}
	})
}

func TestLockManagerHeld(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	held, err := f.locks.Held(ctx, "map_1", "alice")
	if err != nil || held {
		t.Fatalf("Held on untaken lock = (%v, %v), want (false, nil)", held, err)
	}

	lock, err := f.locks.Acquire(ctx, "map_1", "alice")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if held, _ = f.locks.Held(ctx, "map_1", "alice"); !held {
		t.Error("holder not reported as holding")
	}
	if held, _ = f.locks.Held(ctx, "map_1", "bob"); held {
		t.Error("non-holder reported as holding")
	}

	f.locks.now = func() time.Time { return lock.ExpiresAt.Add(time.Second) }
	if held, _ = f.locks.Held(ctx, "map_1", "alice"); held {
		t.Error("expired lock still reported as held")
	}
}

func TestLockManagerRelease(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.locks.Acquire(ctx, "map_1", "alice"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := f.locks.Release(ctx, "map_1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := f.locks.Acquire(ctx, "map_1", "bob"); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}

	// Releasing a lock that is already gone is fine.
	if err := f.locks.Release(ctx, "map_other"); err != nil {
		t.Fatalf("release of absent lock: %v", err)
	}
}

func TestResponseLockExpiredAt(t *testing.T) {
	at := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	lock := &model.ResponseLock{ExpiresAt: at}

	if lock.ExpiredAt(at.Add(-time.Second)) {
		t.Error("lock expired before its deadline")
	}
	if !lock.ExpiredAt(at) {
		t.Error("lock not expired exactly at its deadline")
	}
	if !lock.ExpiredAt(at.Add(time.Second)) {
		t.Error("lock not expired after its deadline")
	}
}
