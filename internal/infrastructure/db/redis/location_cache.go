package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

const defaultLocationTTL = 24 * time.Hour

// LocationCache caches zip lookups in the same BSON form they are stored in.
// Key format: location:zip:<zip>
type LocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocationCache creates a LocationCache wrapping the given Redis client.
func NewLocationCache(client *redis.Client, ttl time.Duration) *LocationCache {
	if ttl <= 0 {
		ttl = defaultLocationTTL
	}
	return &LocationCache{client: client, ttl: ttl}
}

// Get reports ok=false on a cache miss.
func (c *LocationCache) Get(ctx context.Context, zip string) (*domain.ZipLocation, bool, error) {
	raw, err := c.client.Get(ctx, locationKey(zip)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("location cache get: %w", err)
	}

	var loc domain.ZipLocation
	if err := bson.Unmarshal(raw, &loc); err != nil {
		return nil, false, fmt.Errorf("location cache decode: %w", err)
	}
	return &loc, true, nil
}

func (c *LocationCache) Set(ctx context.Context, loc *domain.ZipLocation) error {
	raw, err := bson.Marshal(loc)
	if err != nil {
		return fmt.Errorf("location cache encode: %w", err)
	}
	return c.client.Set(ctx, locationKey(loc.Zip), raw, c.ttl).Err()
}

func locationKey(zip string) string {
	return "location:zip:" + zip
}
