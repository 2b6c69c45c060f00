package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// HitStore counts requests per route in a Redis hash.
type HitStore struct {
	client *redis.Client
}

// NewHitStore creates a hit store backed by client.
func NewHitStore(client *redis.Client) *HitStore {
	return &HitStore{client: client}
}

// Incr adds one request to the counter of method+pattern.
func (s *HitStore) Incr(ctx context.Context, method, pattern string) error {
	if err := s.client.HIncrBy(ctx, HitsKey(), HitField(method, pattern), 1).Err(); err != nil {
		return fmt.Errorf("failed to increment hits: %w", err)
	}
	return nil
}

// All returns every counter keyed by "METHOD pattern".
func (s *HitStore) All(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, HitsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read hits: %w", err)
	}

	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hit counter %s=%q: %w", field, v, err)
		}
		out[field] = n
	}
	return out, nil
}

// Reset drops every counter.
func (s *HitStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, HitsKey()).Err(); err != nil {
		return fmt.Errorf("failed to reset hits: %w", err)
	}
	return nil
}
