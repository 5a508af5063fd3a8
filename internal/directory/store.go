package directory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/fixit-suporte/fixit-gateway/internal/domain"
)

// Store holds the gateway's local account records: the seeded bootstrap
// accounts and technicians created through the users page. It stands in
// for the browser localStorage the old front end used, so writes here are
// deliberately not propagated to the backend.
type Store interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
}

const usersKey = "fixit:users"

// RedisStore keeps local accounts in a Redis hash keyed by user id.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore builds a Redis-backed account store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) List(ctx context.Context) ([]domain.User, error) {
	entries, err := s.client.HGetAll(ctx, usersKey).Result()
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(entries))
	for _, payload := range entries {
		var user domain.User
		if err := json.Unmarshal([]byte(payload), &user); err != nil {
			// Skip undecodable records instead of failing the listing.
			continue
		}
		user.Local = true
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.User, error) {
	payload, err := s.client.HGet(ctx, usersKey, id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, nil
	}
	user.Local = true
	return &user, nil
}

func (s *RedisStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	folded := domain.Fold(email)
	for i := range users {
		if domain.Fold(users[i].Email) == folded {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (s *RedisStore) Put(ctx context.Context, user domain.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, usersKey, user.ID, payload).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.HDel(ctx, usersKey, id).Err()
}

// MemoryStore is the redis-less Store used by tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	order []string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]domain.User)}
}

func (s *MemoryStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, id := range s.order {
		if user, ok := s.users[id]; ok {
			user.Local = true
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	user.Local = true
	return &user, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	folded := domain.Fold(email)
	for _, id := range s.order {
		if user, ok := s.users[id]; ok && domain.Fold(user.Email) == folded {
			user.Local = true
			return &user, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Put(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; !exists {
		s.order = append(s.order, user.ID)
	}
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
