package bot

import (
	"context"
	"testing"
	"time"

	"rukami/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSession)

	first, err := store.Open(ctx, 1, &models.User{ID: 7, Name: "Анна"})
	require.NoError(t, err)
	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, uint(7), got.UserID)

	second, err := store.Open(ctx, 1, &models.User{ID: 7, Name: "Анна"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.sessions, 1, "reopening replaces the old session")

	now = now.Add(time.Hour)
	_, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Empty(t, store.sessions)

	_, err = store.Open(ctx, 2, &models.User{ID: 8})
	require.NoError(t, err)
	require.NoError(t, store.Close(ctx, 2))
	_, err = store.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrNoSession)
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	s, err := store.Open(ctx, 42, &models.User{ID: 3, Name: "Олег"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("bot:session:"+s.ID))
	id, err := mr.Get("bot:chat:42")
	require.NoError(t, err)
	assert.Equal(t, s.ID, id)
	assert.Equal(t, time.Hour, mr.TTL("bot:chat:42"))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, uint(3), got.UserID)
	assert.Equal(t, "Олег", got.UserName)
}

func TestRedisStore_ReopenDropsOldSession(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	first, err := store.Open(ctx, 42, &models.User{ID: 3})
	require.NoError(t, err)
	second, err := store.Open(ctx, 42, &models.User{ID: 3})
	require.NoError(t, err)

	assert.False(t, mr.Exists("bot:session:"+first.ID))
	assert.True(t, mr.Exists("bot:session:"+second.ID))
}

func TestRedisStore_CloseEvictsBothKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	s, err := store.Open(ctx, 42, &models.User{ID: 3})
	require.NoError(t, err)
	require.NoError(t, store.Close(ctx, 42))

	assert.False(t, mr.Exists("bot:session:"+s.ID))
	assert.False(t, mr.Exists("bot:chat:42"))
	_, err = store.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.NoError(t, store.Close(ctx, 42), "closing twice is fine")
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	_, err := store.Open(ctx, 42, &models.User{ID: 3})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNoSession)
}
