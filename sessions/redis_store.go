package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
)

// RedisStore implements Repo on Redis. Each Put is a single atomic SET
// with TTL, so a cancelled request cannot leave a half-written entry.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a RedisStore with the given Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

var _ Repo = (*RedisStore)(nil)

// Put overwrites the entry for loginID and resets its TTL.
func (s *RedisStore) Put(ctx context.Context, loginID string, rec *Record, ttl time.Duration) error {
	data, err := rec.Marshal()
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, Key(loginID), data, ttl).Err(); err != nil {
		return apperrors.Wrapf(apperrors.ErrCacheUnavailable, "redis set: %v", err)
	}
	return nil
}

// Get returns the cached record for loginID, or (nil, nil) when absent.
// An entry that fails to parse or carries a stale schema version is
// treated as absent rather than an error.
func (s *RedisStore) Get(ctx context.Context, loginID string) (*Record, error) {
	data, err := s.client.Get(ctx, Key(loginID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.Wrapf(apperrors.ErrCacheUnavailable, "redis get: %v", err)
	}

	rec, err := UnmarshalRecord(data)
	if err != nil {
		return nil, nil
	}
	return rec, nil
}

// Delete removes the entry immediately regardless of remaining TTL.
// Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, loginID string) error {
	if err := s.client.Del(ctx, Key(loginID)).Err(); err != nil {
		return apperrors.Wrapf(apperrors.ErrCacheUnavailable, "redis del: %v", err)
	}
	return nil
}

// Health checks the health of the Redis connection.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
