package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"vapordepot/internal/domain"
)

const snapshotKey = "catalog:snapshot"

// RedisSnapshots is the durable cache tier: one JSON-encoded snapshot
// shared across instances, garbage-collected by redis key TTL.
type RedisSnapshots struct {
	client *redis.Client
}

func NewRedisSnapshots(client *redis.Client) *RedisSnapshots {
	return &RedisSnapshots{client: client}
}

func (r *RedisSnapshots) Get(ctx context.Context) (*domain.CacheSnapshot, error) {
	b, err := r.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap domain.CacheSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *RedisSnapshots) Set(ctx context.Context, snap *domain.CacheSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ttl := time.Until(snap.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, snapshotKey, b, ttl).Err()
}

func (r *RedisSnapshots) Clear(ctx context.Context) error {
	return r.client.Del(ctx, snapshotKey).Err()
}
