package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"mailcraft/pkg/domain"
)

func newTestGuard(t *testing.T) (*Guard, *miniredis.Miniredis) {
	t.Helper()
	redis := miniredis.RunT(t)
	g, err := New(Config{Addr: redis.Addr(), Prefix: "test:guard", LeaseTTL: time.Second, GateTTL: time.Minute})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g, redis
}

func TestGuardRejectsOverlappingAcquire(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	first, err := g.Acquire(ctx, "sid:a")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := g.Acquire(ctx, "sid:a"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("second acquire err = %v, want ErrInFlight", err)
	}
	if _, err := g.Acquire(ctx, "sid:b"); err != nil {
		t.Fatalf("other session should not be blocked: %v", err)
	}
	if err := g.Release(ctx, first); err != nil {
		t.Fatalf("release: %v", err)
	}
	second, err := g.Acquire(ctx, "sid:a")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if second.Token <= first.Token {
		t.Fatalf("tokens must increase: first=%d second=%d", first.Token, second.Token)
	}
}

func TestGuardStaleReleaseKeepsNewLease(t *testing.T) {
	g, redis := newTestGuard(t)
	ctx := context.Background()

	stale, err := g.Acquire(ctx, "sid:a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	redis.FastForward(2 * time.Second)
	if _, err := g.Acquire(ctx, "sid:a"); err != nil {
		t.Fatalf("acquire after lease expiry: %v", err)
	}
	if err := g.Release(ctx, stale); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if _, err := g.Acquire(ctx, "sid:a"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("stale release must not free the new lease, err = %v", err)
	}
}

func TestGuardFailureGate(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()
	draft := domain.Draft{Thoughts: "need more time", Tone: domain.ToneConcise, Locale: "en-US"}

	if err := g.Check(ctx, "sid:a", draft); err != nil {
		t.Fatalf("fresh session should pass: %v", err)
	}
	if err := g.Record(ctx, "sid:a", draft, domain.Outcome{Err: errors.New("boom")}); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if err := g.Check(ctx, "sid:a", draft); !errors.Is(err, ErrDraftUnchanged) {
		t.Fatalf("unchanged draft err = %v, want ErrDraftUnchanged", err)
	}

	edited := draft
	edited.Thoughts = "need more time, sorry"
	if err := g.Check(ctx, "sid:a", edited); err != nil {
		t.Fatalf("edited draft should pass: %v", err)
	}
	retoned := draft
	retoned.Tone = domain.ToneWarm
	if err := g.Check(ctx, "sid:a", retoned); err != nil {
		t.Fatalf("tone change should pass: %v", err)
	}

	if err := g.Record(ctx, "sid:a", edited, domain.Outcome{Email: "ok"}); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if err := g.Check(ctx, "sid:a", draft); err != nil {
		t.Fatalf("success should clear the gate: %v", err)
	}
}

func TestGuardFailsClosedOnRedisError(t *testing.T) {
	g, redis := newTestGuard(t)
	redis.Close()
	if _, err := g.Acquire(context.Background(), "sid:a"); err == nil || errors.Is(err, ErrInFlight) {
		t.Fatalf("expected redis error, got %v", err)
	}
	if err := g.Check(context.Background(), "sid:a", domain.Draft{Thoughts: "x"}); err == nil {
		t.Fatalf("expected redis error from check")
	}
}

func TestGuardRequiresRedisAddr(t *testing.T) {
	g, err := New(Config{})
	if err == nil || g != nil {
		t.Fatalf("expected constructor error for empty redis addr")
	}
}

func TestFingerprintSeparatesFields(t *testing.T) {
	a := Fingerprint(domain.Draft{Thoughts: "ab", Context: "c"})
	b := Fingerprint(domain.Draft{Thoughts: "a", Context: "bc"})
	if a == b {
		t.Fatalf("fingerprints must not collide across field boundaries")
	}
	if Fingerprint(domain.Draft{Thoughts: "x"}) != Fingerprint(domain.Draft{Thoughts: "x"}) {
		t.Fatalf("fingerprint must be deterministic")
	}
}
