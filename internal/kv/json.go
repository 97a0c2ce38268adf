package kv

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads the key from rdb and unmarshals it into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if absent.
// A nil client behaves as an empty store.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	s, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and writes it under key with no expiry. Values are
// durable application state, not cache entries.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, 0).Err()
}

// Delete removes the key. Best-effort; a nil client is a no-op.
func Delete(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key).Err()
}
