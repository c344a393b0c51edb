// Package storage Redis backend.
//
// Wraps gofiber/storage/redis so several docsite processes can share one
// visit buffer. Values are stored without expiry; the buffer is bounded by
// the tracker, not by Redis.
package storage

import (
	"fmt"
	"sync"

	"github.com/gofiber/storage/redis/v3"
)

// RedisStore shares one origin store between several processes.
type RedisStore struct {
	db     *redis.Storage
	mu     sync.RWMutex
	closed bool
}

// NewRedisStore connects to the redis:// or rediss:// URL. The driver pings
// on construction and panics when unreachable; that panic is returned as an
// error here.
func NewRedisStore(url string) (store *RedisStore, err error) {
	defer func() {
		if r := recover(); r != nil {
			store = nil
			err = fmt.Errorf("failed to connect to redis: %v", r)
		}
	}()

	db := redis.New(redis.Config{URL: url})
	return &RedisStore{db: db}, nil
}

func (r *RedisStore) Get(key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrUnavailable
	}

	val, err := r.db.Get(key)
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

// Set stores val without expiry; the buffer lives until it is submitted.
func (r *RedisStore) Set(key string, val []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrUnavailable
	}

	if err := r.db.Set(key, val, 0); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(key string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrUnavailable
	}

	if err := r.db.Delete(key); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}
