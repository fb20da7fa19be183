package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	TTLGallery = 30 * time.Second // public gallery (refreshed often)
	TTLDefault = 5 * time.Minute
)

// Key prefixes
const (
	PrefixGallery = "gallery:"
)

// ErrUnavailable returned by reads when no redis client is configured
var ErrUnavailable = fmt.Errorf("redis not available")

// Service Redis cache service
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Public gallery of an event; section is "posts" or "media"
	GetGallery(ctx context.Context, eventID, section string, dest interface{}) error
	SetGallery(ctx context.Context, eventID, section string, data interface{}) error
	InvalidateGallery(ctx context.Context, eventID string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis-backed cache; every method tolerates a nil client
type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service; client may be nil
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get reads a JSON value; redis.Nil on miss
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrUnavailable
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set stores value as JSON; ttl <= 0 uses TTLDefault
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// ========================================
// Gallery
// ========================================

func galleryKey(eventID, section string) string {
	return PrefixGallery + eventID + ":" + section
}

func (c *redisCache) GetGallery(ctx context.Context, eventID, section string, dest interface{}) error {
	return c.Get(ctx, galleryKey(eventID, section), dest)
}

func (c *redisCache) SetGallery(ctx context.Context, eventID, section string, data interface{}) error {
	return c.Set(ctx, galleryKey(eventID, section), data, TTLGallery)
}

func (c *redisCache) InvalidateGallery(ctx context.Context, eventID string) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixGallery+eventID+":*")
}

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
