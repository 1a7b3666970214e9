package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTierTest(t *testing.T) (*RedisTier, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tier := NewRedisTier(rdb, "gg", "client-1")
	return tier, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisTierPrimaryTTLFollowsExpiry(t *testing.T) {
	tier, mr, done := newRedisTierTest(t)
	defer done()
	ctx := context.Background()

	now := time.Unix(1_700_000_000, 0)
	tier.WithClock(func() time.Time { return now })

	if err := tier.WritePrimary(ctx, "tok", now.Add(90*time.Second)); err != nil {
		t.Fatalf("write primary: %v", err)
	}
	if ttl := mr.TTL("gg:client-1:token"); ttl != 90*time.Second {
		t.Fatalf("expected 90s ttl, got %v", ttl)
	}

	tok, ok, err := tier.ReadPrimary(ctx)
	if err != nil || !ok || tok != "tok" {
		t.Fatalf("expected tok, got %q ok=%v err=%v", tok, ok, err)
	}

	mr.FastForward(91 * time.Second)
	if _, ok, err := tier.ReadPrimary(ctx); ok || err != nil {
		t.Fatalf("expected token expired, got ok=%v err=%v", ok, err)
	}
}

func TestRedisTierPrimaryPastExpiryDeletes(t *testing.T) {
	tier, mr, done := newRedisTierTest(t)
	defer done()
	ctx := context.Background()

	if err := tier.WritePrimary(ctx, "tok", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("write primary: %v", err)
	}
	if err := tier.WritePrimary(ctx, "old", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("write expired primary: %v", err)
	}
	if mr.Exists("gg:client-1:token") {
		t.Fatal("expected token key removed")
	}
}

func TestRedisTierFallbackHasNoExpiry(t *testing.T) {
	tier, mr, done := newRedisTierTest(t)
	defer done()
	ctx := context.Background()

	if err := tier.WriteFallback(ctx, Record{IsAuthenticated: true, Role: "admin", UserID: "42"}); err != nil {
		t.Fatalf("write fallback: %v", err)
	}
	for _, key := range []string{"gg:client-1:isAuthenticated", "gg:client-1:userRole", "gg:client-1:userId"} {
		if !mr.Exists(key) {
			t.Fatalf("expected %s to exist", key)
		}
		if ttl := mr.TTL(key); ttl != 0 {
			t.Fatalf("expected no ttl on %s, got %v", key, ttl)
		}
	}
	if v, _ := mr.Get("gg:client-1:isAuthenticated"); v != "true" {
		t.Fatalf("expected isAuthenticated=true, got %q", v)
	}

	mr.FastForward(365 * 24 * time.Hour)
	rec, ok, err := tier.ReadFallback(ctx)
	if err != nil || !ok {
		t.Fatalf("read fallback: ok=%v err=%v", ok, err)
	}
	if rec != (Record{IsAuthenticated: true, Role: "admin", UserID: "42"}) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRedisTierFallbackPartialAndClear(t *testing.T) {
	tier, mr, done := newRedisTierTest(t)
	defer done()
	ctx := context.Background()

	if _, ok, err := tier.ReadFallback(ctx); ok || err != nil {
		t.Fatalf("expected empty fallback, got ok=%v err=%v", ok, err)
	}

	if err := tier.WriteFallback(ctx, Record{IsAuthenticated: true, Role: "user"}); err != nil {
		t.Fatalf("write fallback: %v", err)
	}
	if mr.Exists("gg:client-1:userId") {
		t.Fatal("expected empty user id to leave no key")
	}

	if err := tier.ClearFallback(ctx); err != nil {
		t.Fatalf("clear fallback: %v", err)
	}
	if err := tier.ClearFallback(ctx); err != nil {
		t.Fatalf("second clear fallback: %v", err)
	}
	if _, ok, _ := tier.ReadFallback(ctx); ok {
		t.Fatal("expected fallback cleared")
	}
}

func TestRedisTierRandomClientNamespace(t *testing.T) {
	a := NewRedisTier(nil, "", "")
	b := NewRedisTier(nil, "", "")
	if a.ClientID() == "" || a.ClientID() == b.ClientID() {
		t.Fatalf("expected distinct generated client ids, got %q and %q", a.ClientID(), b.ClientID())
	}
}

func TestRedisTierUnavailable(t *testing.T) {
	tier, mr, done := newRedisTierTest(t)
	defer done()
	mr.Close()

	ctx := context.Background()
	if _, _, err := tier.ReadPrimary(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := tier.ClearFallback(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
