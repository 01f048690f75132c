package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "idempotency:"

	// placeholder claims a key while the first request is still in
	// flight, so concurrent retries replay instead of re-executing.
	placeholder = "processing"
)

// IdempotencyStore implements usecase.IdempotencyStore on Redis.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// CheckAndSet returns the stored response when the key was seen before.
// Otherwise it claims the key, with the given response or with a
// placeholder when response is nil, and reports it as new.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	k := idempotencyPrefix + key

	stored, err := s.client.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		return true, stored, nil
	case !errors.Is(err, redis.Nil):
		return false, nil, err
	}

	if response != nil {
		if err := s.client.Set(ctx, k, response, ttl).Err(); err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}

	claimed, err := s.client.SetNX(ctx, k, placeholder, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if claimed {
		return false, nil, nil
	}

	// Lost the race; replay whatever the winner stored.
	stored, err = s.client.Get(ctx, k).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, nil, err
	}
	return true, stored, nil
}

// Update overwrites the claim with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, idempotencyPrefix+key, response, ttl).Err()
}
