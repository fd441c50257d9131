// Package redis keeps per-session key-value data in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pcbuilddom "storefront/internal/domain/pcbuild"
)

// Store hands out session namespaces over one Redis client. Keys look like
// <prefix>:session:<id>:<key>.
type Store struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewStore returns a Store; ttl <= 0 keeps keys forever.
func NewStore(client *goredis.Client, prefix string, ttl time.Duration) *Store {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "storefront"
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// Connect builds a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return c, nil
}

// Namespace returns the KV of one session.
func (s *Store) Namespace(sessionID string) pcbuilddom.KV {
	return &KV{store: s, base: s.prefix + ":session:" + strings.TrimSpace(sessionID) + ":"}
}

// KV implements pcbuild.KV inside one session namespace.
type KV struct {
	store *Store
	base  string
}

func (k *KV) key(name string) string { return k.base + name }

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := k.store.client.Get(ctx, k.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, pcbuilddom.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return b, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	ttl := k.store.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := k.store.client.Set(ctx, k.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, key string) error {
	if err := k.store.client.Del(ctx, k.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: del %s: %w", key, err)
	}
	return nil
}
