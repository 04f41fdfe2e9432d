package inmemory

import (
	"context"
	"testing"
	"time"
)

func TestCacheServesValueWithinTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewCache(clock)
	ctx := context.Background()

	if err := c.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(59 * time.Second)
	value, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get within TTL: %v", err)
	}
	if value != "value" {
		t.Errorf("expected cached value, got %q", value)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewCache(clock)
	ctx := context.Background()

	if err := c.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := c.Get(ctx, "key"); err == nil {
		t.Error("expected miss after TTL expiry")
	}

	exists, err := c.Exists(ctx, "key")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("expected expired key to not exist")
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewCache(clock)
	ctx := context.Background()

	if err := c.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(24 * time.Hour)
	value, err := c.Get(ctx, "key")
	if err != nil || value != "value" {
		t.Errorf("expected permanent entry, got %q, %v", value, err)
	}
}

func TestCacheDelete(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()

	if err := c.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "key"); err == nil {
		t.Error("expected miss after delete")
	}
}
