// Package store persists tracks, keyframes, and media items in Redis as
// JSON blobs with membership sets for the project/track indexes. No
// multi-record transactional guarantee is provided; consumers must not
// assume atomicity across edits.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("store: not found")

func getJSON(ctx context.Context, rdb *redis.Client, key string, dest interface{}) error {
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func setJSON(ctx context.Context, rdb *redis.Client, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, 0).Err()
}
