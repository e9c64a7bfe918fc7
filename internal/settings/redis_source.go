package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	notificationsKey = "settings:notifications"
	paymentsKey      = "settings:payments"
)

// RedisSource reads the settings blobs the back office writes to Redis.
// Every Load is a fresh read; nothing is cached in-process.
type RedisSource struct {
	rdb *redis.Client
}

func NewRedisSource(rdb *redis.Client) *RedisSource {
	return &RedisSource{rdb: rdb}
}

var _ Source = (*RedisSource)(nil)

func (s *RedisSource) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := s.loadKey(ctx, notificationsKey, &snap.Notifications); err != nil {
		return nil, err
	}
	if err := s.loadKey(ctx, paymentsKey, &snap.Payments); err != nil {
		return nil, err
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *RedisSource) loadKey(ctx context.Context, key string, dst any) error {
	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil // absent blob means defaults
	}
	if err != nil {
		return fmt.Errorf("settings: read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("settings: malformed %s: %w", key, err)
	}
	return nil
}

// StaticSource returns a fixed snapshot. Used in tests and when running
// without Redis.
type StaticSource struct {
	Snapshot Snapshot
}

var _ Source = (*StaticSource)(nil)

func (s *StaticSource) Load(ctx context.Context) (*Snapshot, error) {
	snap := s.Snapshot
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}
