package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"marketlens/backend-go/internal/config"
)

// ErrStoreUnavailable wraps every failure to reach the backing store.
var ErrStoreUnavailable = errors.New("cache store unavailable")

// Store is the key-value surface the response cache runs on. Get treats
// absent, expired and unreachable identically (a miss); the remaining
// operations surface store failures so administrative callers can report
// them.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	DeleteMatching(ctx context.Context, pattern string) (int, error)
	FlushAll(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

type RedisStore struct {
	client *redis.Client
}

type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memItem
}

type memItem struct {
	val []byte
	exp time.Time
}

// NewStore connects to Redis, falling back to an in-process store when the
// URL is bad or the server does not answer a ping at startup.
func NewStore(cfg config.Config) Store {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return NewMemoryStore()
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return NewMemoryStore()
	}
	return &RedisStore{client: client}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memItem)}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func (r *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := []string{}
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return keys, nil
}

// DeleteMatching sweeps keys matching pattern. Each delete is atomic per
// key; inserts racing the sweep may or may not be included.
func (r *RedisStore) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return count, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		count += int(n)
	}
	if err := iter.Err(); err != nil {
		return count, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

func (r *RedisStore) FlushAll(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !it.exp.IsZero() && time.Now().After(it.exp) {
		delete(m.items, key)
		return nil, false
	}
	return it.val, true
}

func (m *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.items[key] = memItem{val: val, exp: exp}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return false, nil
	}
	delete(m.items, key)
	if !it.exp.IsZero() && time.Now().After(it.exp) {
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	keys := []string{}
	for k, it := range m.items {
		if !it.exp.IsZero() && now.After(it.exp) {
			delete(m.items, k)
			continue
		}
		if matched, err := path.Match(pattern, k); err == nil && matched {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MemoryStore) DeleteMatching(_ context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	count := 0
	for k, it := range m.items {
		if !it.exp.IsZero() && now.After(it.exp) {
			delete(m.items, k)
			continue
		}
		if matched, err := path.Match(pattern, k); err == nil && matched {
			delete(m.items, k)
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) FlushAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]memItem)
	return nil
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
