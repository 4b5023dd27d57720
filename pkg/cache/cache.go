package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs
const (
	TTLProfile = 5 * time.Minute  // public profile (invalidated on write)
	TTLBrowse  = 30 * time.Second // browse result pages
	TTLDefault = 5 * time.Minute
)

// Key prefixes
const (
	PrefixProfile = "profile:"
	PrefixBrowse  = "browse:"

	KeyBrowseVersion = "browse-version"
)

// ErrMiss is returned when a key is not cached or Redis is unavailable
var ErrMiss = errors.New("cache miss")

// Service Redis cache service
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Public profile cache
	GetProfile(ctx context.Context, userID uint64, dest interface{}) error
	SetProfile(ctx context.Context, userID uint64, data interface{}) error
	InvalidateProfile(ctx context.Context, userID uint64) error

	// Browse page cache, keyed by generation and a canonical query string.
	// Read the generation before querying the database and pass it to SetBrowse,
	// so a page computed before a write is never served after it.
	BrowseVersion(ctx context.Context) int64
	GetBrowse(ctx context.Context, version int64, query string, dest interface{}) error
	SetBrowse(ctx context.Context, version int64, query string, data interface{}) error
	InvalidateBrowse(ctx context.Context) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service. A nil client yields a cache that always misses.
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

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
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

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// Profiles
// ========================================

func profileKey(userID uint64) string {
	return fmt.Sprintf("%s%d", PrefixProfile, userID)
}

func (c *redisCache) GetProfile(ctx context.Context, userID uint64, dest interface{}) error {
	return c.Get(ctx, profileKey(userID), dest)
}

func (c *redisCache) SetProfile(ctx context.Context, userID uint64, data interface{}) error {
	return c.Set(ctx, profileKey(userID), data, TTLProfile)
}

func (c *redisCache) InvalidateProfile(ctx context.Context, userID uint64) error {
	return c.Delete(ctx, profileKey(userID))
}

// ========================================
// Browse pages
// ========================================

func browseKey(version int64, query string) string {
	return fmt.Sprintf("%sv%d:%s", PrefixBrowse, version, query)
}

func (c *redisCache) BrowseVersion(ctx context.Context) int64 {
	if c.client == nil {
		return 0
	}
	v, err := c.client.Get(ctx, KeyBrowseVersion).Int64()
	if err != nil {
		return 0
	}
	return v
}

func (c *redisCache) GetBrowse(ctx context.Context, version int64, query string, dest interface{}) error {
	return c.Get(ctx, browseKey(version, query), dest)
}

func (c *redisCache) SetBrowse(ctx context.Context, version int64, query string, data interface{}) error {
	return c.Set(ctx, browseKey(version, query), data, TTLBrowse)
}

// InvalidateBrowse moves browse to a new generation. Pages of older
// generations are unreachable and expire with TTLBrowse.
func (c *redisCache) InvalidateBrowse(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, KeyBrowseVersion).Err()
}
