package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pricing-service/internal/pricing"
	"pricing-service/internal/source"
)

// ErrNoSource is returned by Refresh when no remote source is configured
var ErrNoSource = errors.New("no pricing source configured")

// Resolver supplies the pricing document for quotes. It never fails a quote:
// fetch problems degrade to the last cached document, then to the fallback.
type Resolver struct {
	source       source.Source
	cache        *Cache
	fallback     *pricing.PricingConfig
	fetchTimeout time.Duration

	mu          sync.RWMutex
	lastErr     error
	lastAttempt time.Time
}

// Status describes where the current document comes from
type Status struct {
	Source        string     `json:"source"`
	FetchedAt     *time.Time `json:"fetched_at,omitempty"`
	AgeSeconds    float64    `json:"age_seconds"`
	Fresh         bool       `json:"fresh"`
	UsingFallback bool       `json:"using_fallback"`
	LastAttempt   *time.Time `json:"last_attempt,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// NewResolver creates a resolver. A nil cache gets a default one and a nil
// fallback uses the built-in defaults.
func NewResolver(src source.Source, cache *Cache, fallback *pricing.PricingConfig) *Resolver {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	if fallback == nil {
		fallback = pricing.DefaultPricingConfig()
	}
	return &Resolver{
		source:   src,
		cache:    cache,
		fallback: fallback,
	}
}

// SetFetchTimeout bounds each fetch in addition to the caller's context
func (r *Resolver) SetFetchTimeout(d time.Duration) {
	r.fetchTimeout = d
}

// Current returns the cached document, stale or not, or the fallback. It never does I/O.
func (r *Resolver) Current() *pricing.PricingConfig {
	entry, ok := r.cache.Get()
	r.observeAge(entry, ok)
	if ok {
		return entry.Config
	}
	return r.fallback
}

// Resolve returns the cached document while it is fresh and fetches otherwise
func (r *Resolver) Resolve(ctx context.Context) *pricing.PricingConfig {
	if entry, ok := r.cache.Get(); ok && entry.Fresh {
		r.observeAge(entry, ok)
		return entry.Config
	}
	cfg, _ := r.Refresh(ctx)
	return cfg
}

// Refresh fetches regardless of cache freshness. On failure it returns the
// cache-or-fallback document together with the error.
func (r *Resolver) Refresh(ctx context.Context) (*pricing.PricingConfig, error) {
	if r.source == nil {
		return r.Current(), ErrNoSource
	}

	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.fetchTimeout)
		defer cancel()
	}

	cfg, err := r.source.Fetch(ctx)
	r.recordAttempt(err)
	if err != nil {
		configFetchTotal.WithLabelValues(r.source.Name(), "error").Inc()
		_, cached := r.cache.Get()
		slog.Warn("Failed to fetch pricing config, using fallback",
			"source", r.source.Name(),
			"using_cache", cached,
			"error", err)
		return r.Current(), err
	}

	configFetchTotal.WithLabelValues(r.source.Name(), "success").Inc()
	r.cache.Set(cfg)
	configCacheAge.Set(0)
	slog.Debug("Pricing config refreshed", "source", r.source.Name())
	return cfg, nil
}

// Invalidate drops the cached document so the next Resolve fetches
func (r *Resolver) Invalidate() {
	r.cache.Invalidate()
	configCacheAge.Set(-1)
	slog.Info("Pricing config cache invalidated")
}

// Status reports cache metadata for the current document
func (r *Resolver) Status() Status {
	status := Status{Source: "fallback", UsingFallback: true}
	if r.source != nil {
		status.Source = r.source.Name()
	}

	entry, ok := r.cache.Get()
	r.observeAge(entry, ok)
	if ok {
		fetchedAt := entry.FetchedAt
		status.FetchedAt = &fetchedAt
		status.AgeSeconds = entry.Age.Seconds()
		status.Fresh = entry.Fresh
		status.UsingFallback = false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.lastAttempt.IsZero() {
		lastAttempt := r.lastAttempt
		status.LastAttempt = &lastAttempt
	}
	if r.lastErr != nil {
		status.LastError = r.lastErr.Error()
	}
	return status
}

func (r *Resolver) recordAttempt(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastAttempt = time.Now()
	r.lastErr = err
}

func (r *Resolver) observeAge(entry Entry, ok bool) {
	if !ok {
		configCacheAge.Set(-1)
		return
	}
	configCacheAge.Set(entry.Age.Seconds())
}
