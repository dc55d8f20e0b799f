package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedGeocoder keeps resolved addresses in Redis so repeated radius
// searches for the same postal code skip the provider. Cache failures fall
// through to the upstream geocoder; they never fail the request.
type CachedGeocoder struct {
	inner Geocoder
	rdb   *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedGeocoder(inner Geocoder, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedGeocoder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &CachedGeocoder{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log,
	}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	key := "geocode:" + address

	raw, err := c.rdb.Get(ctx, key).Result()

	if err == nil {
		var loc Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil {
			return loc, nil
		}
		// poisoned entry, drop and refetch
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		c.log.Warn("geocode cache read failed", "err", err)
	}

	loc, err := c.inner.Geocode(ctx, address)

	if err != nil {
		return Location{}, err
	}

	if buf, err := json.Marshal(loc); err == nil {
		if err := c.rdb.Set(ctx, key, buf, c.ttl).Err(); err != nil {
			c.log.Warn("geocode cache write failed", "err", err)
		}
	}

	return loc, nil
}
