package redis_test

import (
	"context"
	"testing"
	"time"

	"wine-lot-exchange/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitelistCache_SetGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewWhitelistCache(client)
	ctx := context.Background()
	principal := uuid.New()

	// Miss before set
	_, found, err := cache.Get(ctx, principal)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, principal, true, time.Minute))

	member, found, err := cache.Get(ctx, principal)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, member)
}

// Non-membership is cached too, so a repeated negative lookup does not
// hit the database.
func TestWhitelistCache_CachesNegative(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewWhitelistCache(client)
	ctx := context.Background()
	principal := uuid.New()

	require.NoError(t, cache.Set(ctx, principal, false, time.Minute))

	member, found, err := cache.Get(ctx, principal)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, member)
}

func TestWhitelistCache_Invalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewWhitelistCache(client)
	ctx := context.Background()
	principal := uuid.New()

	require.NoError(t, cache.Set(ctx, principal, true, time.Minute))
	require.NoError(t, cache.Invalidate(ctx, principal))

	_, found, err := cache.Get(ctx, principal)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWhitelistCache_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewWhitelistCache(client)
	ctx := context.Background()
	principal := uuid.New()

	require.NoError(t, cache.Set(ctx, principal, true, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, found, err := cache.Get(ctx, principal)
	require.NoError(t, err)
	assert.False(t, found)
}
