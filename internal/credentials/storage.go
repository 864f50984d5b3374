package credentials

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Storage is the durable string key-value store credentials persist into.
// It survives process restarts; absent keys read back as empty strings.
type Storage interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}

// RedisStorage persists credential keys in Redis under a namespace prefix.
type RedisStorage struct {
	client    *redis.Client
	namespace string
}

// NewRedisStorage constructs a RedisStorage.
func NewRedisStorage(client *redis.Client, namespace string) *RedisStorage {
	if namespace == "" {
		namespace = "opsboard"
	}
	return &RedisStorage{client: client, namespace: namespace}
}

func (s *RedisStorage) key(k string) string {
	return s.namespace + ":" + k
}

// Set writes one key without expiry; credentials outlive connections.
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// Get reads one key, mapping a missing key to the empty string.
func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// Delete removes the given keys.
func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = s.key(k)
	}
	err := s.client.Del(ctx, namespaced...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// MemoryStorage is an in-process Storage for tests and offline use.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage constructs an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Set stores a key-value pair.
func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Get retrieves a value; absent keys read back empty.
func (s *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// Delete removes the given keys.
func (s *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
