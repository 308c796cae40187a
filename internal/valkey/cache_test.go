package valkey

import (
	"context"
	"os"
	"testing"
	"time"
)

// Runs against a real server when DIGMAP_TEST_VALKEY_ADDR is set.
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	addr := os.Getenv("DIGMAP_TEST_VALKEY_ADDR")
	if addr == "" {
		t.Skip("DIGMAP_TEST_VALKEY_ADDR not set")
	}
	c, err := New(addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := "digmap:test:" + t.Name()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	if v, err := c.Get(ctx, key); err != nil || v != nil {
		t.Fatalf("expected missing key, got %q, %v", v, err)
	}
	if err := c.Set(ctx, key, []byte("клад"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := c.Get(ctx, key); err != nil || string(v) != "клад" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

func TestCacheList(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := "digmap:test:" + t.Name()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	for _, v := range []string{"a", "b", "c"} {
		if err := c.Append(ctx, key, []byte(v), time.Minute); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	items, err := c.List(ctx, key)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 || string(items[0]) != "a" || string(items[2]) != "c" {
		t.Errorf("unexpected list %q", items)
	}
}

func TestStorageReset(t *testing.T) {
	c := newTestCache(t)
	s := NewStorage(c)

	if err := s.Set("sid-1", []byte("data"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if v, err := s.Get("sid-1"); err != nil || v != nil {
		t.Errorf("expected session to be gone, got %q, %v", v, err)
	}
}

func TestCacheExpire(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := "digmap:test:" + t.Name()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	if err := c.Set(ctx, key, []byte("route"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Expire(ctx, key, time.Minute); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	time.Sleep(1500 * time.Millisecond)
	if v, err := c.Get(ctx, key); err != nil || string(v) != "route" {
		t.Errorf("expected key to outlive its original ttl, got %q, %v", v, err)
	}
}
