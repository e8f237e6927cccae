// Package redis keeps session scoped values in Redis, one key per (session, name) pair.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "linksplit:session:"

// Store is a Redis backed session store. Take relies on GETDEL, so a value is
// handed out at most once even across service replicas.
type Store struct {
	client goredis.Cmdable
	ttl    time.Duration
}

func NewStore(client goredis.Cmdable, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Put(ctx context.Context, sessionID, key, value string) error {
	const op = "adapter.session.redis.Store.Put"

	if err := s.client.Set(ctx, storeKey(sessionID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}

func (s *Store) Take(ctx context.Context, sessionID, key string) (string, bool, error) {
	const op = "adapter.session.redis.Store.Take"

	value, err := s.client.GetDel(ctx, storeKey(sessionID, key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%s: failed to getdel key: %w", op, err)
	}

	return value, true, nil
}

func storeKey(sessionID, key string) string {
	return keyPrefix + sessionID + ":" + key
}
