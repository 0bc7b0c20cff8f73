package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/wgapi/config"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	first := Entry{Data: json.RawMessage(`{"a":1}`)}
	require.NoError(t, m.Put(ctx, "key", first))
	require.NoError(t, m.Put(ctx, "key", Entry{Data: json.RawMessage(`{"a":2}`)}))

	got, ok, err := m.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(got.Data))
	assert.Equal(t, 1, m.Len())

	m.Clear()
	assert.Equal(t, 0, m.Len())
}

func TestMemoryConcurrentPut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Put(ctx, "key", Entry{Data: json.RawMessage(`[]`)})
			_, _, _ = m.Get(ctx, "key")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.Len())
}

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisWithClient(client, "test:"), mr
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	r, mr := setupRedis(t)

	_, ok, err := r.Get(ctx, "https://api.example/wot/account/list/?search=alex")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := Entry{
		Data: json.RawMessage(`[{"account_id":1}]`),
		Meta: json.RawMessage(`{"count":1}`),
	}
	require.NoError(t, r.Put(ctx, "https://api.example/wot/account/list/?search=alex", entry))
	require.NoError(t, r.Put(ctx, "https://api.example/wot/account/list/?search=alex", Entry{Data: json.RawMessage(`[]`)}))

	got, ok, err := r.Get(ctx, "https://api.example/wot/account/list/?search=alex")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"account_id":1}]`, string(got.Data))
	assert.JSONEq(t, `{"count":1}`, string(got.Meta))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "test:", keys[0][:5])
	assert.Len(t, keys[0], len("test:")+64)
	assert.Zero(t, mr.TTL(keys[0]))
}

func TestRedisCorruptEntry(t *testing.T) {
	ctx := context.Background()
	r, mr := setupRedis(t)

	require.NoError(t, mr.Set(r.makeKey("key"), "not json"))

	_, ok, err := r.Get(ctx, "key")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.Same(t, Default(), c)

	_, err = New(config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	c, err = New(config.CacheConfig{
		Backend: "redis",
		Redis:   config.RedisConfig{Addr: mr.Addr()},
	})
	require.NoError(t, err)
	rc, ok := c.(*Redis)
	require.True(t, ok)
	assert.Equal(t, DefaultKeyPrefix, rc.prefix)
	require.NoError(t, rc.Close())

	_, err = New(config.CacheConfig{Backend: "redis"})
	assert.Error(t, err)
}
