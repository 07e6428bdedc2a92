package source

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pricing-service/internal/pricing"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultJSON(t *testing.T) []byte {
	data, err := json.Marshal(pricing.DefaultPricingConfig())
	require.NoError(t, err)
	return data
}

type fakeRedis struct {
	values map[string]string
	err    error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestRedisSource_Fetch(t *testing.T) {
	src := NewRedisSource(&fakeRedis{values: map[string]string{"pricing:current": string(defaultJSON(t))}}, "pricing:current")

	cfg, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0.15, cfg.Rates.OnlineDiscountRate)
	assert.Equal(t, "redis", src.Name())
}

func TestRedisSource_Failures(t *testing.T) {
	_, err := NewRedisSource(&fakeRedis{values: map[string]string{}}, "pricing:current").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewRedisSource(&fakeRedis{err: errors.New("connection refused")}, "pricing:current").Fetch(context.Background())
	assert.ErrorContains(t, err, "connection refused")

	_, err = NewRedisSource(&fakeRedis{values: map[string]string{"k": "not json"}}, "k").Fetch(context.Background())
	assert.Error(t, err)
}

type fakeRow struct {
	payload []byte
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.payload
	return nil
}

type fakeQuerier struct {
	row     fakeRow
	lastSQL string
	args    []any
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.args = args
	return f.row
}

func TestPostgresSource_Fetch(t *testing.T) {
	db := &fakeQuerier{row: fakeRow{payload: defaultJSON(t)}}
	src := NewPostgresSource(db, "default")

	cfg, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.Towing[pricing.LocalTowing].PerMileRate)
	assert.Equal(t, selectPricingSQL, db.lastSQL)
	assert.Equal(t, []any{"default"}, db.args)
}

func TestPostgresSource_Failures(t *testing.T) {
	_, err := NewPostgresSource(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}, "default").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewPostgresSource(&fakeQuerier{row: fakeRow{err: errors.New("conn closed")}}, "default").Fetch(context.Background())
	assert.ErrorContains(t, err, "conn closed")

	_, err = NewPostgresSource(&fakeQuerier{row: fakeRow{payload: []byte(`{"services": {}}`)}}, "default").Fetch(context.Background())
	assert.ErrorIs(t, err, pricing.ErrInvalidConfig)
}

type fakeDocuments struct {
	data map[string]interface{}
	err  error
}

func (f fakeDocuments) GetDocument(ctx context.Context, path string) (map[string]interface{}, error) {
	return f.data, f.err
}

func documentFields(t *testing.T) map[string]interface{} {
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(defaultJSON(t), &fields))
	return fields
}

func TestFirestoreSource_Fetch(t *testing.T) {
	src := NewFirestoreSource(fakeDocuments{data: documentFields(t)}, "settings/pricing")

	cfg, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 75.0, cfg.Services[pricing.JumpStart].BasePrice)
}

func TestFirestoreSource_NestedPrices(t *testing.T) {
	fields := map[string]interface{}{
		"prices":    documentFields(t),
		"updatedBy": "admin@example.com",
	}

	cfg, err := NewFirestoreSource(fakeDocuments{data: fields}, "settings/pricing").Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Rates.TravelRate)
}

func TestFirestoreSource_Failures(t *testing.T) {
	_, err := NewFirestoreSource(fakeDocuments{err: ErrNotFound}, "settings/pricing").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewFirestoreSource(fakeDocuments{}, "settings/pricing").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewFirestoreSource(fakeDocuments{data: map[string]interface{}{"rates": "oops"}}, "settings/pricing").Fetch(context.Background())
	assert.Error(t, err)
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource(nil)

	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	src.Set(pricing.DefaultPricingConfig())
	cfg, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	src.Fail(errors.New("down"))
	_, err = src.Fetch(context.Background())
	assert.EqualError(t, err, "down")
}
