package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "foo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if !bytes.Equal(val, []byte("bar")) {
		t.Fatalf("expected bar, got %s", val)
	}
}

func TestCacheGetMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)

	_, err := cache.Get(context.Background(), "missing")
	if err != redislib.Nil {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "foo"); err != redislib.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := cache.Get(ctx, "foo"); err != redislib.Nil {
		t.Fatalf("expected redis.Nil after expiry, got %v", err)
	}
}
