package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetch_FetchesOncePerKey(t *testing.T) {
	c := New()

	calls := 0
	fetch := func(_ context.Context) (string, error) {
		calls++
		return "Original Title", nil
	}

	first, err := c.GetOrFetch(context.Background(), "title:abc123", fetch)
	require.NoError(t, err)
	second, err := c.GetOrFetch(context.Background(), "title:abc123", fetch)
	require.NoError(t, err)

	assert.Equal(t, "Original Title", first)
	assert.Equal(t, "Original Title", second)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_FailureIsNotCached(t *testing.T) {
	c := New()

	calls := 0
	fetch := func(_ context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", assert.AnError
		}
		return "recovered", nil
	}

	_, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.Error(t, err)

	got, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetch_CollapsesConcurrentFetches(t *testing.T) {
	c := New()

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	fetch := func(_ context.Context) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrFetch(context.Background(), "shared", fetch)
			assert.NoError(t, err)
			assert.Equal(t, "v", got)
		}()
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestSizeCap_RetainsMostRecent(t *testing.T) {
	c := New()

	for i := 0; i < MaxEntries+1; i++ {
		key := fmt.Sprintf("key-%d", i)
		_, err := c.GetOrFetch(context.Background(), key, func(_ context.Context) (string, error) {
			return key, nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, MaxEntries, c.Len())

	_, ok := c.Get("key-0")
	assert.False(t, ok, "oldest entry should have been evicted")

	for i := 1; i <= MaxEntries; i++ {
		_, ok := c.Get(fmt.Sprintf("key-%d", i))
		require.True(t, ok, "key-%d should survive", i)
	}
}

func TestTimeBoxedFlush_ClearsEverything(t *testing.T) {
	current := time.Now()
	var mu sync.Mutex
	c := New(WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}))

	_, err := c.GetOrFetch(context.Background(), "a", func(_ context.Context) (string, error) { return "1", nil })
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), "b", func(_ context.Context) (string, error) { return "2", nil })
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	mu.Lock()
	current = current.Add(FlushInterval + time.Minute)
	mu.Unlock()

	calls := 0
	got, err := c.GetOrFetch(context.Background(), "a", func(_ context.Context) (string, error) {
		calls++
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, 1, calls)

	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestSweep_FlushesWithoutAccess(t *testing.T) {
	current := time.Now()
	var mu sync.Mutex
	c := New(WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}))

	_, err := c.GetOrFetch(context.Background(), "a", func(_ context.Context) (string, error) { return "1", nil })
	require.NoError(t, err)

	mu.Lock()
	current = current.Add(FlushInterval + time.Second)
	mu.Unlock()

	c.Sweep()
	assert.Equal(t, 0, c.Len())
}
