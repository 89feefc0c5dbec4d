package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const pendingMarker = "__pending__"

// ErrInProgress means another request with the same key has not finished.
var ErrInProgress = errors.New("idempotent request in progress")

// Store remembers which booking a client key produced.
type Store interface {
	// Begin claims key. When the key already completed it returns the
	// stored result and started=false.
	Begin(ctx context.Context, key string) (result string, started bool, err error)
	Commit(ctx context.Context, key, result string) error
	Abort(ctx context.Context, key string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func Key(customerID, clientKey string) string {
	return fmt.Sprintf("idem:booking:%s:%s", customerID, clientKey)
}

func (s *RedisStore) Begin(ctx context.Context, key string) (string, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, key, pendingMarker, s.ttl).Result()
		if err != nil {
			return "", false, err
		}
		if ok {
			return "", true, nil
		}

		val, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return "", false, err
		}
		if val == pendingMarker {
			return "", false, ErrInProgress
		}
		return val, false, nil
	}
	return "", false, ErrInProgress
}

func (s *RedisStore) Commit(ctx context.Context, key, result string) error {
	return s.client.Set(ctx, key, result, s.ttl).Err()
}

func (s *RedisStore) Abort(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
