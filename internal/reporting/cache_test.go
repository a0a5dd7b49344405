package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheVersionInitialises(t *testing.T) {
	cache := newTestCache(t)
	ver, err := cache.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)
}

func TestCacheBuildKeyChangesAfterBump(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "reporting", "dashboard")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "reporting", "dashboard")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"value": 42}, nil
	}

	var out map[string]int
	require.NoError(t, cache.FetchJSON(ctx, "k", &out, loader))
	require.NoError(t, cache.FetchJSON(ctx, "k", &out, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 42, out["value"])
}

func TestCacheFetchJSONPropagatesLoaderError(t *testing.T) {
	cache := newTestCache(t)
	wantErr := errors.New("boom")

	var out map[string]int
	err := cache.FetchJSON(context.Background(), "k", &out, func(ctx context.Context) (interface{}, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestCacheNilClientFallsThrough(t *testing.T) {
	var cache *Cache

	var out int
	require.NoError(t, cache.FetchJSON(context.Background(), "k", &out, func(ctx context.Context) (interface{}, error) {
		return 7, nil
	}))
	assert.Equal(t, 7, out)
	require.NoError(t, cache.Bump(context.Background()))
}
