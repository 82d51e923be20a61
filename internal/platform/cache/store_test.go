package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrLoad_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	const workers = 32
	var started atomic.Int32
	var wg conc.WaitGroup
	results := make([]any, workers)
	for i := 0; i < workers; i++ {
		wg.Go(func() {
			started.Add(1)
			v, err := store.GetOrLoad(context.Background(), "users:list", loader)
			if err == nil {
				results[i] = v
			}
		})
	}

	require.Eventually(t, func() bool { return started.Load() == workers }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, "value", v)
	}
	assert.LessOrEqual(t, calls.Load(), int32(2))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := store.GetOrLoad(context.Background(), "k", loader)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	boom := errors.New("boom")

	_, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")
	_, ok := store.Get(context.Background(), "k")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = store.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestStore_DeleteDuringLoadDropsStaleResult(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	inLoader := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) {
			close(inLoader)
			<-release
			return "stale", nil
		})
	}()

	<-inLoader
	store.Delete(context.Background(), "k")
	close(release)
	<-done

	_, ok := store.Get(context.Background(), "k")
	assert.False(t, ok, "a load that raced an invalidation must not be cached")

	v, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestStore_EmptyKeyBypassesCache(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "v", nil
	}

	_, _ = store.GetOrLoad(context.Background(), "", loader)
	_, _ = store.GetOrLoad(context.Background(), "", loader)
	assert.Equal(t, int32(2), calls.Load())
}
