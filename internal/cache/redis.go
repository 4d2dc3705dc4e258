package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petmarket/catalog/internal/domain"

	"github.com/redis/go-redis/v9"
)

type BreedCache interface {
	GetBreedList(ctx context.Context) ([]domain.Breed, bool, error)
	SetBreedList(ctx context.Context, breeds []domain.Breed) error
	Invalidate(ctx context.Context) error
}

type redisBreedCache struct {
	redisClient redis.Cmdable
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisBreedCache(redisClient redis.Cmdable, keyPrefix string, ttl time.Duration) BreedCache {
	return &redisBreedCache{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		ttl:         ttl,
	}
}

func (c *redisBreedCache) listKey() string {
	return c.keyPrefix + "list"
}

func (c *redisBreedCache) GetBreedList(ctx context.Context) ([]domain.Breed, bool, error) {
	val, err := c.redisClient.Get(ctx, c.listKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached breed list: %w", err)
	}

	var breeds []domain.Breed
	if err := json.Unmarshal(val, &breeds); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached breed list: %w", err)
	}

	return breeds, true, nil
}

func (c *redisBreedCache) SetBreedList(ctx context.Context, breeds []domain.Breed) error {
	val, err := json.Marshal(breeds)
	if err != nil {
		return fmt.Errorf("failed to encode breed list: %w", err)
	}

	if err := c.redisClient.Set(ctx, c.listKey(), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache breed list: %w", err)
	}
	return nil
}

func (c *redisBreedCache) Invalidate(ctx context.Context) error {
	if err := c.redisClient.Del(ctx, c.listKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate breed list: %w", err)
	}
	return nil
}
