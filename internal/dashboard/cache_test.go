package dashboard

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesAndHits(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "summary")
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return ViewModel{Summary: Summary{Orders30: 7}}, nil
	}

	var first ViewModel
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.Equal(t, 7, first.Orders30)
	require.Equal(t, 1, loads)

	var second ViewModel
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 7, second.Orders30)
	require.Equal(t, 1, loads, "second read served from cache")
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "summary")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "summary")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestCacheNilIsPassthrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	require.NoError(t, cache.Bump(ctx))

	key, err := cache.BuildKey(ctx, "summary")
	require.NoError(t, err)
	require.Equal(t, "summary", key)

	var vm ViewModel
	loader := func(context.Context) (any, error) {
		return ViewModel{Summary: Summary{Orders30: 3}}, nil
	}
	require.NoError(t, cache.FetchJSON(ctx, key, &vm, loader))
	require.Equal(t, 3, vm.Orders30)
}
