package magiclink

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as JSON strings with a native TTL
type RedisStore struct {
	client redis.UniversalClient
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, token string, entry Entry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return apperrors.Wrapf(err, "marshal magic link entry")
	}
	ok, err := s.client.SetNX(ctx, key(token), payload, ttl).Result()
	if err != nil {
		return apperrors.Wrapf(err, "store magic link")
	}
	if !ok {
		return apperrors.ErrDuplicate
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, token string) (*Entry, error) {
	payload, err := s.client.GetDel(ctx, key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrapf(err, "take magic link")
	}
	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, apperrors.Wrapf(err, "decode magic link entry")
	}
	return &entry, nil
}
