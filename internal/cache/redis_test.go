package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedisStore(t *testing.T) *RedisStore[record] {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore[record](client)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t)

	_, found, err := store.Load(ctx, "test:records")
	require.NoError(t, err)
	assert.False(t, found)

	slot := Slot[record]{
		Records:       []record{{ID: "1", Name: "a"}},
		LastRefreshed: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Seq:           7,
	}
	require.NoError(t, store.Save(ctx, "test:records", slot))

	loaded, found, err := store.Load(ctx, "test:records")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, slot.Seq, loaded.Seq)
	assert.True(t, slot.LastRefreshed.Equal(loaded.LastRefreshed))
	require.Len(t, loaded.Records, 1)
	assert.Equal(t, "1", loaded.Records[0].ID)

	require.NoError(t, store.Delete(ctx, "test:records"))
	_, found, err = store.Load(ctx, "test:records")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_CacheBehaviorMatchesMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	c := New[record]("test:records", 5*time.Minute, setupRedisStore(t), zap.NewNop())
	c.WithClock(func() time.Time { return now })

	c.Put(ctx, c.NextSeq(), []record{{ID: "1"}})

	records, ok := c.Get(ctx, false)
	require.True(t, ok)
	assert.Len(t, records, 1)

	now = now.Add(6 * time.Minute)
	_, ok = c.Get(ctx, false)
	assert.False(t, ok)

	_, ok = c.Peek(ctx)
	assert.True(t, ok)
}

func TestRedisStore_ErrorDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("test:records").SetErr(errors.New("connection reset"))

	c := New[record]("test:records", 5*time.Minute, NewRedisStore[record](client), zap.NewNop())

	_, ok := c.Get(ctx, false)
	assert.False(t, ok, "store error must read as a miss, not a failure")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_CorruptSlotIsMiss(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set("test:records", "{not json"))

	c := New[record]("test:records", 5*time.Minute, NewRedisStore[record](client), zap.NewNop())
	_, ok := c.Get(ctx, false)
	assert.False(t, ok)
}
