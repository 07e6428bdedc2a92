package source

import (
	"context"
	"sync"

	"pricing-service/internal/pricing"
)

// MemorySource serves a pricing document held in process memory
type MemorySource struct {
	cfg *pricing.PricingConfig
	err error
	mu  sync.RWMutex
}

// NewMemorySource creates a source that serves cfg
func NewMemorySource(cfg *pricing.PricingConfig) *MemorySource {
	return &MemorySource{cfg: cfg}
}

func (m *MemorySource) Name() string {
	return "memory"
}

func (m *MemorySource) Fetch(ctx context.Context) (*pricing.PricingConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.cfg == nil {
		return nil, ErrNotFound
	}
	return validated(m.cfg)
}

// Set replaces the served document
func (m *MemorySource) Set(cfg *pricing.PricingConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg = cfg
	m.err = nil
}

// Fail makes subsequent fetches return err until the next Set
func (m *MemorySource) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}
