package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pricing-service/internal/pricing"

	"github.com/redis/go-redis/v9"
)

// RedisAPI is the subset of the redis client used here
type RedisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource reads the pricing document as JSON stored under a key
type RedisSource struct {
	client RedisAPI
	key    string
}

func NewRedisSource(client RedisAPI, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

func (r *RedisSource) Name() string {
	return "redis"
}

func (r *RedisSource) Fetch(ctx context.Context) (*pricing.PricingConfig, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %s", ErrNotFound, r.key)
		}
		return nil, fmt.Errorf("failed to read pricing key: %w", err)
	}

	var cfg pricing.PricingConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode pricing key: %w", err)
	}

	return validated(&cfg)
}
