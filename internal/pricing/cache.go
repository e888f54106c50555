package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
)

var _ model.PriceLookup = (*Cache)(nil)

// Cache keeps quotes in Redis for ttl and only asks next on a miss.
// Redis failures fall through to next.
type Cache struct {
	next   model.PriceLookup
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewCache(next model.PriceLookup, client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func cacheKey(name, category, language string) string {
	return "cardkeeper:price:" + model.MergeKey(name, category, language)
}

func (c *Cache) FetchPrice(ctx context.Context, name, category, language string) (model.PriceQuote, error) {
	key := cacheKey(name, category, language)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var quote model.PriceQuote
		if err := json.Unmarshal(raw, &quote); err == nil {
			return quote, nil
		}
		c.log.Warn("Price cache: dropping malformed entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Price cache: read failed", "error", err)
	}

	quote, err := c.next.FetchPrice(ctx, name, category, language)
	if err != nil {
		return model.PriceQuote{}, err
	}

	if payload, err := json.Marshal(quote); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("Price cache: write failed", "error", err)
		}
	}
	return quote, nil
}
