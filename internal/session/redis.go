package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fixit-suporte/fixit-gateway/internal/domain"
)

const (
	sessionKeyPrefix  = "fixit:session:"
	loggedInKeyPrefix = "fixit:logged_in:"
)

// RedisStore keeps sessions in Redis with a TTL. It wraps the shared
// client owned by the persistence layer.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.User, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeActor(payload), nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID string, actor *domain.User) error {
	payload, err := json.Marshal(actor)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sessionID, payload, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

func (s *RedisStore) MarkLoggedIn(ctx context.Context, userID string) (bool, error) {
	// No TTL: the welcome message fires once per user, ever.
	return s.client.SetNX(ctx, loggedInKeyPrefix+userID, "1", 0).Result()
}
