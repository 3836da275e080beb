package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

const purchaseKeyPrefix = "purchase:"

type RedisAdapter struct {
	client         *redis.Client
	cacheTTL       time.Duration
	idempotencyTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, cacheTTL, idempotencyTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{
		client:         client,
		cacheTTL:       cacheTTL,
		idempotencyTTL: idempotencyTTL,
	}
}

func (r *RedisAdapter) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	data, err := r.client.Get(ctx, purchaseKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p domain.Purchase
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode cached purchase: %w", err)
	}

	return &p, nil
}

func (r *RedisAdapter) SetPurchase(ctx context.Context, p domain.Purchase) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode purchase: %w", err)
	}

	return r.client.Set(ctx, purchaseKeyPrefix+p.ID, data, r.cacheTTL).Err()
}

func (r *RedisAdapter) DeletePurchase(ctx context.Context, id string) error {
	return r.client.Del(ctx, purchaseKeyPrefix+id).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, r.idempotencyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
