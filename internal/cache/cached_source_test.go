package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltpath/stationfinder/internal/config"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/internal/overpass"
)

type countingSource struct {
	calls    atomic.Int32
	elements []models.Element
	err      error
	release  chan struct{}
}

func (s *countingSource) Fetch(ctx context.Context, query string) ([]models.Element, error) {
	s.calls.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.elements, s.err
}

// memoryStore is an in-process ElementStore for exercising the remote tier
type memoryStore struct {
	mu      sync.Mutex
	records map[string][]models.Element
	getErr  error
	saveErr error
	saves   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string][]models.Element{}}
}

func (m *memoryStore) GetElements(_ context.Context, key string) ([]models.Element, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	elements, ok := m.records[key]
	return elements, ok, nil
}

func (m *memoryStore) SaveElements(_ context.Context, key string, elements []models.Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[key] = elements
	return nil
}

func newTestLRU(t *testing.T) *ElementLRU {
	c, err := NewElementLRU(16, time.Minute)
	require.NoError(t, err)
	return c
}

func TestCachedSourceUsesLRU(t *testing.T) {
	upstream := &countingSource{elements: testElements()}
	source := NewCachedSource(upstream, newTestLRU(t), nil)

	for i := 0; i < 3; i++ {
		got, err := source.Fetch(context.Background(), "query")
		require.NoError(t, err)
		assert.Equal(t, testElements(), got)
	}
	assert.Equal(t, int32(1), upstream.calls.Load())

	_, err := source.Fetch(context.Background(), "other query")
	require.NoError(t, err)
	assert.Equal(t, int32(2), upstream.calls.Load())
}

func TestCachedSourceRemoteTier(t *testing.T) {
	store := newMemoryStore()
	store.records[QueryKey("query")] = testElements()[:1]
	upstream := &countingSource{elements: testElements()}
	lru := newTestLRU(t)
	source := NewCachedSource(upstream, lru, store)

	got, err := source.Fetch(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Zero(t, upstream.calls.Load())

	_, ok := lru.Get(QueryKey("query"))
	assert.True(t, ok, "remote hit should warm the LRU")
}

func TestCachedSourceSavesUpstreamResults(t *testing.T) {
	store := newMemoryStore()
	source := NewCachedSource(&countingSource{elements: testElements()}, nil, store)

	_, err := source.Fetch(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, 1, store.saves)
	assert.Equal(t, testElements(), store.records[QueryKey("query")])
}

func TestCachedSourceToleratesRemoteFailures(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("dynamo down")
	store.saveErr = errors.New("dynamo down")
	upstream := &countingSource{elements: testElements()}

	got, err := NewCachedSource(upstream, nil, store).Fetch(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, testElements(), got)
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	upstream := &countingSource{err: &overpass.TransportError{StatusCode: 504}}
	store := newMemoryStore()
	source := NewCachedSource(upstream, newTestLRU(t), store)

	for i := 0; i < 2; i++ {
		_, err := source.Fetch(context.Background(), "query")
		var transportErr *overpass.TransportError
		require.ErrorAs(t, err, &transportErr)
	}
	assert.Equal(t, int32(2), upstream.calls.Load())
	assert.Zero(t, store.saves)
}

func TestCachedSourceCollapsesConcurrentFetches(t *testing.T) {
	upstream := &countingSource{elements: testElements(), release: make(chan struct{})}
	source := NewCachedSource(upstream, nil, nil)

	const callers = 5
	var wg sync.WaitGroup
	results := make(chan []models.Element, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := source.Fetch(context.Background(), "query")
			assert.NoError(t, err)
			results <- got
		}()
	}

	// Let every caller join the in-flight request before it completes
	require.Eventually(t, func() bool { return upstream.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	close(upstream.release)
	wg.Wait()
	close(results)

	assert.Equal(t, int32(1), upstream.calls.Load())
	for got := range results {
		assert.Equal(t, testElements(), got)
	}
}

func TestNewSource(t *testing.T) {
	upstream := &countingSource{}

	t.Run("no tiers returns upstream", func(t *testing.T) {
		got, err := NewSource(context.Background(), upstream, &config.CacheConfig{Backend: config.CacheBackendNone})
		require.NoError(t, err)
		assert.Same(t, upstream, got)
	})

	t.Run("lru only", func(t *testing.T) {
		got, err := NewSource(context.Background(), upstream, &config.CacheConfig{
			ElementLRUSize:       8,
			ElementLRUTTLMinutes: 1,
			Backend:              config.CacheBackendNone,
			EnableLRUCache:       true,
		})
		require.NoError(t, err)
		cached, ok := got.(*CachedSource)
		require.True(t, ok)
		assert.NotNil(t, cached.lru)
		assert.Nil(t, cached.store)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		_, err := NewSource(context.Background(), upstream, &config.CacheConfig{Backend: config.CacheBackendS3})
		assert.Error(t, err)
	})
}

func TestCachedSourceCancelledCallerDoesNotFailOthers(t *testing.T) {
	upstream := &countingSource{elements: testElements(), release: make(chan struct{})}
	source := NewCachedSource(upstream, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := source.Fetch(ctx, "query")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return upstream.calls.Load() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		elements []models.Element
		err      error
	}
	second := make(chan outcome, 1)
	go func() {
		got, err := source.Fetch(context.Background(), "query")
		second <- outcome{elements: got, err: err}
	}()

	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(upstream.release)
	select {
	case got := <-second:
		require.NoError(t, got.err)
		assert.Equal(t, testElements(), got.elements)
	case <-time.After(time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachedSourceStatsAndClear(t *testing.T) {
	upstream := &countingSource{elements: testElements()}
	source := NewCachedSource(upstream, newTestLRU(t), nil)

	_, err := source.Fetch(context.Background(), "query")
	require.NoError(t, err)
	_, err = source.Fetch(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, map[string]uint64{"lru_hits": 1, "lru_misses": 1, "lru_entries": 1}, source.Stats())

	source.Clear()
	assert.Equal(t, uint64(0), source.Stats()["lru_entries"])

	_, err = source.Fetch(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, int32(2), upstream.calls.Load())

	assert.Nil(t, NewCachedSource(upstream, nil, nil).Stats())
}
