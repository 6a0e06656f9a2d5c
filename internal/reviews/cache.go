package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/campusbot/course-ai-platform/pkg/logging"
)

const cacheKey = "reviews:professors"

// Cache is a Redis read-through layer over a Source, mirroring the
// catalog cache: Redis trouble degrades to the source.
type Cache struct {
	redis  *redis.Client
	source Source
	tracer trace.Tracer
	logger *logging.Logger
	ttl    time.Duration
}

func NewCache(redisClient *redis.Client, source Source, ttl time.Duration, logger *logging.Logger) *Cache {
	if source == nil {
		panic("reviews: cache source is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{
		redis:  redisClient,
		source: source,
		tracer: otel.Tracer("campus.internal.reviews.cache"),
		logger: logger,
		ttl:    ttl,
	}
}

func (c *Cache) Fetch(ctx context.Context) (Set, error) {
	ctx, span := c.tracer.Start(ctx, "reviews.cache.fetch")
	defer span.End()

	if c.redis != nil {
		data, err := c.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var set Set
			if jsonErr := json.Unmarshal(data, &set); jsonErr == nil {
				return set, nil
			}
			c.logger.Warn("reviews cache entry unreadable, refetching", "key", cacheKey)
		} else if err != redis.Nil {
			span.RecordError(err)
			c.logger.Warn("reviews cache read failed", "error", err)
		}
	}

	set, err := c.source.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reviews: cache fill: %w", err)
	}

	c.store(ctx, set)
	return set, nil
}

func (c *Cache) store(ctx context.Context, set Set) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(set)
	if err != nil {
		c.logger.Warn("reviews cache marshal failed", "error", err)
		return
	}
	if err := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("reviews cache write failed", "error", err)
	}
}

var _ Source = (*Cache)(nil)
