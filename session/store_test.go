package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Basics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rec, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Save(ctx, Record{ID: "s1", UserID: 7}, time.Minute))
	rec, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.UserID)

	require.NoError(t, store.Delete(ctx, "s1"))
	rec, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "s1"))
}

func TestMemoryStore_ExpiryAndEmptyID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{items: make(map[string]Record), now: func() time.Time { return now }}

	require.NoError(t, store.Save(ctx, Record{ID: "", UserID: 1}, time.Minute))
	assert.Empty(t, store.items)

	require.NoError(t, store.Save(ctx, Record{ID: "s2", UserID: 1}, time.Minute))
	now = now.Add(2 * time.Minute)

	rec, err := store.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NotContains(t, store.items, "s2")
}

func TestMemoryStore_SaveSweepsExpiredRecords(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{items: make(map[string]Record), now: func() time.Time { return now }}

	for i := 0; i < memorySweepTrigger-1; i++ {
		require.NoError(t, store.Save(ctx, Record{ID: fmt.Sprintf("old-%d", i), UserID: 1}, time.Minute))
	}
	require.NoError(t, store.Save(ctx, Record{ID: "live", UserID: 2}, time.Hour))
	require.Len(t, store.items, memorySweepTrigger)

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Save(ctx, Record{ID: "fresh", UserID: 3}, time.Minute))

	assert.Len(t, store.items, 2)
	assert.Contains(t, store.items, "live")
	assert.Contains(t, store.items, "fresh")
}

func TestMemoryStore_NoSweepBelowTrigger(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{items: make(map[string]Record), now: func() time.Time { return now }}

	require.NoError(t, store.Save(ctx, Record{ID: "old", UserID: 1}, time.Minute))
	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Save(ctx, Record{ID: "new", UserID: 1}, time.Minute))

	// Still held until a Get or a sweep removes it
	assert.Contains(t, store.items, "old")
}

type mockRedisKVClient struct {
	values map[string]string

	lastSetKey string
	lastSetTTL time.Duration
	lastDel    []string

	getErr error
	setErr error
}

func newMockRedis() *mockRedisKVClient {
	return &mockRedisKVClient{values: make(map[string]string)}
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	m.values[key] = string(value.([]byte))
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	v, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mockRedisKVClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	for _, k := range keys {
		delete(m.values, k)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newMockRedis()
	store := newRedisStore(client, "test:session:")

	require.NoError(t, store.Save(ctx, Record{ID: "abc", UserID: 4}, time.Hour))
	assert.Equal(t, "test:session:abc", client.lastSetKey)
	assert.Equal(t, time.Hour, client.lastSetTTL)

	var stored Record
	require.NoError(t, json.Unmarshal([]byte(client.values["test:session:abc"]), &stored))
	assert.Equal(t, int64(4), stored.UserID)
	assert.False(t, stored.ExpiresAt.IsZero())

	rec, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(4), rec.UserID)

	require.NoError(t, store.Delete(ctx, "abc"))
	assert.Equal(t, []string{"test:session:abc"}, client.lastDel)

	rec, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRedisStore_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("get failure surfaces", func(t *testing.T) {
		client := newMockRedis()
		client.getErr = errors.New("connection refused")
		store := newRedisStore(client, "")

		_, err := store.Get(ctx, "abc")
		assert.Error(t, err)
	})

	t.Run("set failure surfaces", func(t *testing.T) {
		client := newMockRedis()
		client.setErr = errors.New("read only replica")
		store := newRedisStore(client, "")

		assert.Error(t, store.Save(ctx, Record{ID: "abc"}, time.Minute))
	})

	t.Run("corrupt payload", func(t *testing.T) {
		client := newMockRedis()
		client.values["session:bad"] = "{not json"
		store := newRedisStore(client, "")

		_, err := store.Get(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("expired payload", func(t *testing.T) {
		client := newMockRedis()
		payload, _ := json.Marshal(Record{ID: "old", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)})
		client.values["session:old"] = string(payload)
		store := newRedisStore(client, "")

		rec, err := store.Get(ctx, "old")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("empty ids are no-ops", func(t *testing.T) {
		client := newMockRedis()
		store := newRedisStore(client, "")

		assert.NoError(t, store.Save(ctx, Record{ID: " "}, time.Minute))
		assert.Empty(t, client.lastSetKey)
		rec, err := store.Get(ctx, "")
		assert.NoError(t, err)
		assert.Nil(t, rec)
		assert.NoError(t, store.Delete(ctx, ""))
		assert.Nil(t, client.lastDel)
	})
}

func TestNewRedisStore_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisStore(nil, "x"))
}
