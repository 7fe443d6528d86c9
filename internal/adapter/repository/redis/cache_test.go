package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetIfNewerAndGet(t *testing.T) {
	client, mr := newTestRedis(t)

	cache := NewCache(client)
	ctx := context.Background()

	stored, err := cache.SetIfNewer(ctx, "account:alice", 1, []byte(`{"identity":"alice"}`), time.Minute)
	if err != nil || !stored {
		t.Fatalf("expected first write to be stored, got stored=%v err=%v", stored, err)
	}

	val, err := cache.Get(ctx, "account:alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `{"identity":"alice"}` {
		t.Fatalf("unexpected value %s", val)
	}

	if !mr.Exists(cacheKey("account:alice")) {
		t.Fatalf("expected key to be namespaced with %q", CachePrefix)
	}
	if ttl := mr.TTL(cacheKey("account:alice")); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %s", ttl)
	}
}

func TestCacheSetIfNewerRejectsOlderVersion(t *testing.T) {
	client, _ := newTestRedis(t)

	cache := NewCache(client)
	ctx := context.Background()

	if _, err := cache.SetIfNewer(ctx, "account:alice", 3, []byte("v3"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	stored, err := cache.SetIfNewer(ctx, "account:alice", 2, []byte("v2"), time.Minute)
	if err != nil || stored {
		t.Fatalf("expected older version to be rejected, got stored=%v err=%v", stored, err)
	}

	if val, _ := cache.Get(ctx, "account:alice"); string(val) != "v3" {
		t.Fatalf("expected v3 to survive, got %s", val)
	}

	stored, err = cache.SetIfNewer(ctx, "account:alice", 3, []byte("v3-again"), time.Minute)
	if err != nil || !stored {
		t.Fatalf("expected equal version to overwrite, got stored=%v err=%v", stored, err)
	}

	stored, err = cache.SetIfNewer(ctx, "account:alice", 4, []byte("v4"), time.Minute)
	if err != nil || !stored {
		t.Fatalf("expected newer version to be stored, got stored=%v err=%v", stored, err)
	}

	if val, _ := cache.Get(ctx, "account:alice"); string(val) != "v4" {
		t.Fatalf("expected v4, got %s", val)
	}
}

func TestCacheMissIsNotAnError(t *testing.T) {
	client, _ := newTestRedis(t)

	val, err := NewCache(client).Get(context.Background(), "account:nobody")
	if err != nil {
		t.Fatalf("expected miss without error, got %v", err)
	}
	if val != nil {
		t.Fatalf("expected nil value on miss, got %s", val)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedis(t)

	cache := NewCache(client)
	ctx := context.Background()

	if _, err := cache.SetIfNewer(ctx, "k", 1, []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if val, _ := cache.Get(ctx, "k"); val != nil {
		t.Fatalf("expected key to expire, got %s", val)
	}

	// an expired entry no longer blocks older versions
	stored, err := cache.SetIfNewer(ctx, "k", 0, []byte("v0"), time.Second)
	if err != nil || !stored {
		t.Fatalf("expected write after expiry, got stored=%v err=%v", stored, err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, _ := newTestRedis(t)

	cache := NewCache(client)
	ctx := context.Background()

	if _, err := cache.SetIfNewer(ctx, "foo", 1, []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if val, err := cache.Get(ctx, "foo"); err != nil || val != nil {
		t.Fatalf("expected deleted key to miss, got val=%s err=%v", val, err)
	}
}

func TestCacheServerDown(t *testing.T) {
	client, mr := newTestRedis(t)
	mr.Close()

	cache := NewCache(client)
	if _, err := cache.Get(context.Background(), "foo"); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
	if _, err := cache.SetIfNewer(context.Background(), "foo", 1, []byte("v"), time.Minute); err == nil {
		t.Fatalf("expected write error when redis is unreachable")
	}
}
