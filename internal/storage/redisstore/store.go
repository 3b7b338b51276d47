// Package redisstore implements storage.Store on top of Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/and161185/attendance-client/internal/errs"
	"github.com/and161185/attendance-client/internal/storage"
)

// Cmdable is the subset of *redis.Client used by Store.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store keeps each entry under "<namespace>:<key>" without expiry.
type Store struct {
	rdb       Cmdable
	namespace string
}

var _ storage.Store = (*Store)(nil)

// New constructs a namespaced Redis state store.
func New(rdb Cmdable, namespace string) *Store { return &Store{rdb: rdb, namespace: namespace} }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errs.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

func (s *Store) key(k string) string {
	return fmt.Sprintf("attendance:%s:%s", s.namespace, k)
}
