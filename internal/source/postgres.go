package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pricing-service/internal/pricing"

	"github.com/jackc/pgx/v5"
)

// RowQuerier is satisfied by *pgxpool.Pool and *pgx.Conn
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectPricingSQL = `SELECT prices FROM pricing_settings WHERE id = $1`

// PostgresSource reads the pricing document from a jsonb column
type PostgresSource struct {
	db RowQuerier
	id string
}

func NewPostgresSource(db RowQuerier, id string) *PostgresSource {
	return &PostgresSource{db: db, id: id}
}

func (p *PostgresSource) Name() string {
	return "postgres"
}

func (p *PostgresSource) Fetch(ctx context.Context) (*pricing.PricingConfig, error) {
	var payload []byte
	if err := p.db.QueryRow(ctx, selectPricingSQL, p.id).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: pricing_settings id %s", ErrNotFound, p.id)
		}
		return nil, fmt.Errorf("failed to query pricing settings: %w", err)
	}

	var cfg pricing.PricingConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode pricing settings: %w", err)
	}

	return validated(&cfg)
}
