package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/out/redis"
	pcbuilddom "storefront/internal/domain/pcbuild"
)

func newStore(t *testing.T, ttl time.Duration) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewStore(client, "shop:", ttl), mr
}

func TestKV_GetSetDelete(t *testing.T) {
	store, mr := newStore(t, 0)
	ctx := context.Background()
	kv := store.Namespace("s1")

	_, err := kv.Get(ctx, pcbuilddom.StorageKey)
	assert.ErrorIs(t, err, pcbuilddom.ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, pcbuilddom.StorageKey, []byte(`{"Processor":{}}`)))
	got, err := kv.Get(ctx, pcbuilddom.StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Processor":{}}`, string(got))
	assert.True(t, mr.Exists("shop:session:s1:pcBuilderSelection"))

	require.NoError(t, kv.Delete(ctx, pcbuilddom.StorageKey))
	_, err = kv.Get(ctx, pcbuilddom.StorageKey)
	assert.ErrorIs(t, err, pcbuilddom.ErrKeyNotFound)
}

func TestKV_SessionsAreIsolated(t *testing.T) {
	store, _ := newStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Namespace("a").Set(ctx, "k", []byte("1")))
	_, err := store.Namespace("b").Get(ctx, "k")
	assert.ErrorIs(t, err, pcbuilddom.ErrKeyNotFound)
}

func TestKV_TTL(t *testing.T) {
	store, mr := newStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Namespace("a").Set(ctx, "k", []byte("1")))
	assert.Equal(t, time.Hour, mr.TTL("shop:session:a:k"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Namespace("a").Get(ctx, "k")
	assert.ErrorIs(t, err, pcbuilddom.ErrKeyNotFound)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	c, err := redis.Connect(context.Background(), addr, "", 0)
	require.NoError(t, err)
	_ = c.Close()

	mr.Close()
	_, err = redis.Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
