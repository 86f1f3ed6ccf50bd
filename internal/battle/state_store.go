package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned when no state exists for a match id
var ErrStateNotFound = errors.New("battle state not found")

// StateStore persists in-flight battle state keyed by match id. Keeping
// this behind an interface (instead of a process-local map) means state
// survives restarts and multiple instances share it.
type StateStore interface {
	Save(ctx context.Context, matchID string, state []byte) error
	Load(ctx context.Context, matchID string) ([]byte, error)
	Delete(ctx context.Context, matchID string) error
}

type redisStateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStateStore returns a StateStore backed by Redis with the given
// TTL per match.
func NewRedisStateStore(rdb *redis.Client, ttl time.Duration) StateStore {
	return &redisStateStore{rdb: rdb, ttl: ttl}
}

func stateKey(matchID string) string {
	return "battle_state:" + matchID
}

func (s *redisStateStore) Save(ctx context.Context, matchID string, state []byte) error {
	if err := s.rdb.Set(ctx, stateKey(matchID), state, s.ttl).Err(); err != nil {
		return fmt.Errorf("save battle state %s: %w", matchID, err)
	}
	return nil
}

func (s *redisStateStore) Load(ctx context.Context, matchID string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, stateKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load battle state %s: %w", matchID, err)
	}
	return data, nil
}

func (s *redisStateStore) Delete(ctx context.Context, matchID string) error {
	if err := s.rdb.Del(ctx, stateKey(matchID)).Err(); err != nil {
		return fmt.Errorf("delete battle state %s: %w", matchID, err)
	}
	return nil
}

// MemoryStateStore is an in-process StateStore for tests
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string][]byte
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string][]byte)}
}

func (s *MemoryStateStore) Save(ctx context.Context, matchID string, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(state))
	copy(cp, state)
	s.states[matchID] = cp
	return nil
}

func (s *MemoryStateStore) Load(ctx context.Context, matchID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[matchID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return state, nil
}

func (s *MemoryStateStore) Delete(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, matchID)
	return nil
}
