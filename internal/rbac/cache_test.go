package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchCodesPopulatesOnMiss(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) ([]string, error) {
		loads++
		return []string{"VIEW_CITIZEN"}, nil
	}

	codes, err := cache.FetchCodes(ctx, 1, loader)
	require.NoError(t, err)
	require.Equal(t, []string{"VIEW_CITIZEN"}, codes)

	codes, err = cache.FetchCodes(ctx, 1, loader)
	require.NoError(t, err)
	require.Equal(t, []string{"VIEW_CITIZEN"}, codes)
	require.Equal(t, 1, loads)
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) ([]string, error) {
		loads++
		return []string{"VIEW_CITIZEN"}, nil
	}

	_, err := cache.FetchCodes(ctx, 1, loader)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))

	_, err = cache.FetchCodes(ctx, 1, loader)
	require.NoError(t, err)
	require.Equal(t, 2, loads)
}

func TestCacheNilClientFallsThrough(t *testing.T) {
	var cache *Cache
	codes, err := cache.FetchCodes(context.Background(), 1, func(context.Context) ([]string, error) {
		return []string{"VIEW_USER"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"VIEW_USER"}, codes)
}
