package source

import (
	"context"
	"errors"

	"pricing-service/internal/pricing"
)

// Common errors
var (
	ErrNotFound         = errors.New("pricing document not found")
	ErrUnexpectedStatus = errors.New("unexpected status from pricing endpoint")
	ErrUnsuccessful     = errors.New("pricing endpoint reported failure")
)

// Source defines where the pricing document is fetched from
type Source interface {
	// Name identifies the backend in logs and metrics
	Name() string

	// Fetch loads and validates the current pricing document
	Fetch(ctx context.Context) (*pricing.PricingConfig, error)
}

// validated returns cfg if it passes validation
func validated(cfg *pricing.PricingConfig) (*pricing.PricingConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
