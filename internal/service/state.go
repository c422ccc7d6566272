package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DisplayStateStore holds the optimistic, user-visible state that mutations
// touch before their durable write lands. Backed by Redis in production and
// by an in-memory map in tests or when Redis is not configured.
type DisplayStateStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) DisplayStateStore {
	if client == nil {
		return NewMemoryStateStore()
	}
	return &redisStateStore{client: client}
}

func (s *redisStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStateStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStateStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memoryStateStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStateStore() DisplayStateStore {
	return &memoryStateStore{values: make(map[string]string)}
}

func (s *memoryStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok, nil
}

func (s *memoryStateStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStateStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func followStateKey(followerID, followeeID uuid.UUID) string {
	return fmt.Sprintf("follow_state:%s:%s", followerID, followeeID)
}

func tasteMatchKey(userID, otherID uuid.UUID) string {
	return fmt.Sprintf("taste_match:%s:%s", userID, otherID)
}

func visibilityKey(followerID, followeeID uuid.UUID) string {
	return fmt.Sprintf("visible_activities:%s:%s", followerID, followeeID)
}

func ratingStateKey(userID uuid.UUID, mediaID string) string {
	return fmt.Sprintf("rating_state:%s:%s", userID, mediaID)
}

func statusStateKey(userID uuid.UUID, mediaID string) string {
	return fmt.Sprintf("status_state:%s:%s", userID, mediaID)
}
