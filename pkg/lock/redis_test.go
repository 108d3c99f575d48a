package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"reservio/pkg/logger"
)

func newRedisLocker(t *testing.T) (*Redis, *miniredis.Miniredis, context.Context) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.New(logger.Config{Level: logger.ERROR, Service: "test"})
	return NewRedis(client, log), mr, context.Background()
}

func TestAcquireRelease(t *testing.T) {
	l, _, ctx := newRedisLocker(t)

	token, ok, err := l.Acquire(ctx, "k", time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if token == "" {
		t.Fatal("acquire returned empty token")
	}

	// Second acquisition on a held key must fail fast without waiting.
	if _, ok, err := l.Acquire(ctx, "k", time.Second); err != nil || ok {
		t.Fatalf("expected lease held, ok=%v err=%v", ok, err)
	}

	if err := l.Release(ctx, "k", token); err != nil {
		t.Fatalf("release: %v", err)
	}

	// Released key is immediately acquirable again.
	if _, ok, err := l.Acquire(ctx, "k", time.Second); err != nil || !ok {
		t.Fatalf("reacquire after release: ok=%v err=%v", ok, err)
	}
}

func TestReleaseWrongTokenKeepsLease(t *testing.T) {
	l, _, ctx := newRedisLocker(t)

	token, ok, err := l.Acquire(ctx, "k", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	// A stale or foreign token must never evict the current holder.
	if err := l.Release(ctx, "k", "not-the-token"); err != nil {
		t.Fatalf("release with wrong token: %v", err)
	}
	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); ok {
		t.Fatal("lease was deleted by a non-owner release")
	}

	if err := l.Release(ctx, "k", token); err != nil {
		t.Fatalf("owner release: %v", err)
	}
}

func TestLeaseExpiresOnItsOwn(t *testing.T) {
	l, mr, ctx := newRedisLocker(t)

	if _, ok, err := l.Acquire(ctx, "k", 10*time.Second); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	// Crash-safety: the holder never releases, the store expires the lease.
	mr.FastForward(11 * time.Second)

	if _, ok, err := l.Acquire(ctx, "k", time.Second); err != nil || !ok {
		t.Fatalf("expected lease expired and reacquirable, ok=%v err=%v", ok, err)
	}
}

func TestReleaseAfterExpiryIsNoop(t *testing.T) {
	l, mr, ctx := newRedisLocker(t)

	oldToken, ok, err := l.Acquire(ctx, "k", time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	mr.FastForward(2 * time.Second)

	// A different caller re-acquires after expiry.
	if _, ok, err := l.Acquire(ctx, "k", time.Minute); err != nil || !ok {
		t.Fatalf("reacquire after expiry: ok=%v err=%v", ok, err)
	}

	// The first holder's late release must not delete the new lease.
	if err := l.Release(ctx, "k", oldToken); err != nil {
		t.Fatalf("late release: %v", err)
	}
	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); ok {
		t.Fatal("late release deleted the new holder's lease")
	}
}

func TestAcquireDistinctKeysInParallel(t *testing.T) {
	l, _, ctx := newRedisLocker(t)

	a := SlotKey("65a1b2c3d4e5f60718293a4b",
		time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 10, 19, 0, 0, 0, time.UTC))
	b := SlotKey("65a1b2c3d4e5f60718293a4b",
		time.Date(2025, 6, 10, 19, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC))
	if a == b {
		t.Fatal("distinct intervals produced the same slot key")
	}

	if _, ok, err := l.Acquire(ctx, a, time.Minute); err != nil || !ok {
		t.Fatalf("acquire a: ok=%v err=%v", ok, err)
	}
	if _, ok, err := l.Acquire(ctx, b, time.Minute); err != nil || !ok {
		t.Fatalf("acquire b: ok=%v err=%v", ok, err)
	}
}

func TestSlotKeyShape(t *testing.T) {
	start := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 19, 30, 0, 0, time.UTC)

	got := SlotKey("65a1b2c3d4e5f60718293a4b", start, end)
	want := "lock:reservation:table:65a1b2c3d4e5f60718293a4b:202506101800-202506101930"
	if got != want {
		t.Errorf("SlotKey() = %q, want %q", got, want)
	}
}
