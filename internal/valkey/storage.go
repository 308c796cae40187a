package valkey

import (
	"context"
	"time"
)

const sessionPrefix = "digmap:session:"

// Storage adapts Cache to fiber.Storage for the session middleware.
type Storage struct {
	cache   *Cache
	timeout time.Duration
}

func NewStorage(c *Cache) *Storage {
	return &Storage{cache: c, timeout: 3 * time.Second}
}

func (s *Storage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Storage) Get(key string) ([]byte, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.cache.Get(ctx, sessionPrefix+key)
}

func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.cache.Set(ctx, sessionPrefix+key, val, exp)
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.cache.Delete(ctx, sessionPrefix+key)
}

// Reset drops every session.
func (s *Storage) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.cache.DeletePrefix(ctx, sessionPrefix)
}

// Close is a no-op; the owner of the Cache closes it.
func (s *Storage) Close() error {
	return nil
}
