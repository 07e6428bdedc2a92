package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pricing-service/internal/pricing"
	"pricing-service/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSource mocks a pricing source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Name() string {
	return "mock"
}

func (m *MockSource) Fetch(ctx context.Context) (*pricing.PricingConfig, error) {
	args := m.Called(ctx)
	if cfg := args.Get(0); cfg != nil {
		return cfg.(*pricing.PricingConfig), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(clock *fakeClock) *Cache {
	cache := NewCache(5 * time.Minute)
	cache.now = clock.now
	return cache
}

func remoteConfig() *pricing.PricingConfig {
	cfg := pricing.DefaultPricingConfig()
	cfg.Rates.TravelRate = 4
	return cfg
}

func TestCache_Freshness(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(clock)

	_, ok := cache.Get()
	assert.False(t, ok)

	cache.Set(remoteConfig())

	clock.t = clock.t.Add(4*time.Minute + 59*time.Second)
	entry, ok := cache.Get()
	require.True(t, ok)
	assert.True(t, entry.Fresh)

	clock.t = clock.t.Add(time.Second)
	entry, ok = cache.Get()
	require.True(t, ok)
	assert.False(t, entry.Fresh, "entry exactly at the TTL is stale")
	assert.Equal(t, 5*time.Minute, entry.Age)

	cache.Invalidate()
	_, ok = cache.Get()
	assert.False(t, ok)
}

func TestNewCache_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewCache(0).TTL())
	assert.Equal(t, time.Minute, NewCache(time.Minute).TTL())
}

func TestResolver_CurrentWithoutCacheUsesFallback(t *testing.T) {
	mockSource := new(MockSource)
	r := NewResolver(mockSource, nil, nil)

	cfg := r.Current()

	assert.Equal(t, pricing.DefaultPricingConfig(), cfg)
	mockSource.AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestResolver_ResolveFetchesAndCaches(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
	mockSource := new(MockSource)
	remote := remoteConfig()
	mockSource.On("Fetch", mock.Anything).Return(remote, nil).Once()

	r := NewResolver(mockSource, newTestCache(clock), nil)

	assert.Same(t, remote, r.Resolve(context.Background()))

	// still fresh: no second fetch
	clock.t = clock.t.Add(time.Minute)
	assert.Same(t, remote, r.Resolve(context.Background()))
	assert.Same(t, remote, r.Current())

	mockSource.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestResolver_ResolveRefetchesWhenStale(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
	first := remoteConfig()
	second := remoteConfig()
	second.Rates.TravelRate = 6

	mockSource := new(MockSource)
	mockSource.On("Fetch", mock.Anything).Return(first, nil).Once()
	mockSource.On("Fetch", mock.Anything).Return(second, nil).Once()

	r := NewResolver(mockSource, newTestCache(clock), nil)
	r.Resolve(context.Background())

	clock.t = clock.t.Add(6 * time.Minute)
	assert.Same(t, first, r.Current(), "Current serves stale data without fetching")
	assert.Same(t, second, r.Resolve(context.Background()))
	mockSource.AssertExpectations(t)
}

func TestResolver_FailureKeepsLastKnownGood(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
	remote := remoteConfig()

	mockSource := new(MockSource)
	mockSource.On("Fetch", mock.Anything).Return(remote, nil).Once()
	mockSource.On("Fetch", mock.Anything).Return(nil, source.ErrUnexpectedStatus).Once()

	r := NewResolver(mockSource, newTestCache(clock), nil)
	r.Resolve(context.Background())

	clock.t = clock.t.Add(10 * time.Minute)
	assert.Same(t, remote, r.Resolve(context.Background()))

	status := r.Status()
	assert.False(t, status.UsingFallback)
	assert.False(t, status.Fresh)
	assert.Contains(t, status.LastError, "unexpected status")
}

func TestResolver_FailureWithoutCacheUsesFallback(t *testing.T) {
	fallback := pricing.DefaultPricingConfig()
	mockSource := new(MockSource)
	mockSource.On("Fetch", mock.Anything).Return(nil, pricing.ErrInvalidConfig)

	r := NewResolver(mockSource, nil, fallback)

	assert.Same(t, fallback, r.Resolve(context.Background()))

	cfg, err := r.Refresh(context.Background())
	assert.Same(t, fallback, cfg)
	assert.ErrorIs(t, err, pricing.ErrInvalidConfig)
	assert.True(t, r.Status().UsingFallback)
}

func TestResolver_RefreshIgnoresFreshness(t *testing.T) {
	first := remoteConfig()
	second := remoteConfig()
	mockSource := new(MockSource)
	mockSource.On("Fetch", mock.Anything).Return(first, nil).Once()
	mockSource.On("Fetch", mock.Anything).Return(second, nil).Once()

	r := NewResolver(mockSource, nil, nil)
	r.Resolve(context.Background())

	cfg, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, cfg)
	assert.Same(t, second, r.Current())
}

func TestResolver_Invalidate(t *testing.T) {
	mockSource := new(MockSource)
	mockSource.On("Fetch", mock.Anything).Return(remoteConfig(), nil)

	r := NewResolver(mockSource, nil, nil)
	r.Resolve(context.Background())
	r.Invalidate()

	assert.True(t, r.Status().UsingFallback)
	r.Resolve(context.Background())
	mockSource.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestResolver_NoSource(t *testing.T) {
	r := NewResolver(nil, nil, nil)

	cfg, err := r.Refresh(context.Background())

	assert.ErrorIs(t, err, ErrNoSource)
	assert.NotNil(t, cfg)
	assert.NotNil(t, r.Resolve(context.Background()))
	assert.Equal(t, "fallback", r.Status().Source)
}

type blockingSource struct{}

func (blockingSource) Name() string { return "blocking" }

func (blockingSource) Fetch(ctx context.Context) (*pricing.PricingConfig, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResolver_FetchTimeout(t *testing.T) {
	r := NewResolver(blockingSource{}, nil, nil)
	r.SetFetchTimeout(20 * time.Millisecond)

	start := time.Now()
	cfg, err := r.Refresh(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotNil(t, cfg)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolver_ConcurrentRefresh(t *testing.T) {
	mem := source.NewMemorySource(pricing.DefaultPricingConfig())
	r := NewResolver(mem, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				r.Refresh(context.Background())
			case 1:
				r.Resolve(context.Background())
			case 2:
				assert.NotNil(t, r.Current())
			default:
				if i%8 == 3 {
					r.Invalidate()
				}
				_ = r.Status()
			}
		}(i)
	}
	wg.Wait()

	cfg, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestResolver_SourceErrorIsNotFatal(t *testing.T) {
	mem := source.NewMemorySource(nil)
	mem.Fail(errors.New("connection reset"))

	r := NewResolver(mem, nil, nil)

	assert.NotPanics(t, func() {
		assert.NotNil(t, r.Resolve(context.Background()))
	})
}
