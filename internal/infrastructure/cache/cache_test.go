package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
)

func sampleUser() *entity.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &entity.User{
		ID:        "0b8f8e0c-5a43-4c1c-9d0b-2a6c0a2f6f11",
		Name:      "Jane",
		Email:     "jane@example.com",
		Password:  "$2a$10$hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newRedisCache(t *testing.T) (*RedisUserCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisUserCache(rdb), mr
}

func exerciseCache(t *testing.T, c repository.UserCache) {
	ctx := context.Background()
	u := sampleUser()

	got, ok, err := c.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, u, time.Minute))

	got, ok, err = c.Get(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
	assert.Empty(t, got.Password)

	require.NoError(t, c.Delete(ctx, u.ID))
	_, ok, err = c.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisUserCache(t *testing.T) {
	c, _ := newRedisCache(t)
	exerciseCache(t, c)
}

func TestRedisUserCache_TTL(t *testing.T) {
	c, mr := newRedisCache(t)
	u := sampleUser()
	require.NoError(t, c.Set(context.Background(), u, 1800*time.Second))

	assert.Equal(t, 1800*time.Second, mr.TTL("user:"+u.ID))
	mr.FastForward(1801 * time.Second)

	_, ok, err := c.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisUserCache_Unavailable(t *testing.T) {
	c, mr := newRedisCache(t)
	mr.Close()

	_, ok, err := c.Get(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestMemoryUserCache(t *testing.T) {
	exerciseCache(t, NewMemoryUserCache(time.Minute, time.Minute))
}

func TestMemoryUserCache_Expires(t *testing.T) {
	c := NewMemoryUserCache(time.Minute, time.Minute)
	u := sampleUser()
	require.NoError(t, c.Set(context.Background(), u, 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := c.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
