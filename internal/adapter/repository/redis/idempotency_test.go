package redis

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestIdempotencyCheckAndSetNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "req-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exists {
		t.Fatal("expected new key to be claimed")
	}
}

func TestIdempotencyCheckAndSetExistingKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "req-1", []byte("response"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, cached, err := store.CheckAndSet(ctx, "req-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !exists {
		t.Fatal("expected replay to be detected")
	}

	if !bytes.Equal(cached, []byte("response")) {
		t.Fatalf("expected cached response, got %s", cached)
	}
}

func TestIdempotencyUpdate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "req-1", nil, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Update(ctx, "req-1", []byte("final"), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	exists, cached, err := store.CheckAndSet(ctx, "req-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !exists || !bytes.Equal(cached, []byte("final")) {
		t.Fatalf("expected final response, got exists=%v cached=%s", exists, cached)
	}
}
