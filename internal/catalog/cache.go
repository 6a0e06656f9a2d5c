package catalog

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

const cacheKey = "catalog:courses"

// Cache is a Redis read-through layer over a Source. A Redis outage
// degrades to the underlying source; it never fails a read that the
// source could serve.
type Cache struct {
	redis  *redis.Client
	source Source
	tracer trace.Tracer
	logger *logging.Logger
	ttl    time.Duration
}

func NewCache(redisClient *redis.Client, source Source, ttl time.Duration, logger *logging.Logger) *Cache {
	if source == nil {
		panic("catalog: cache source is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{
		redis:  redisClient,
		source: source,
		tracer: otel.Tracer("campus.internal.catalog.cache"),
		logger: logger,
		ttl:    ttl,
	}
}

// Fetch returns the cached catalog when present, otherwise reads the
// source and stores the result best-effort.
func (c *Cache) Fetch(ctx context.Context) ([]Course, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.cache.fetch")
	defer span.End()

	if c.redis != nil {
		data, err := c.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var courses []Course
			if jsonErr := json.Unmarshal(data, &courses); jsonErr == nil {
				return courses, nil
			}
			// Corrupt cache entry; fall through to the source.
			c.logger.Warn("catalog cache entry unreadable, refetching", "key", cacheKey)
		} else if err != redis.Nil {
			span.RecordError(err)
			c.logger.Warn("catalog cache read failed", "error", err)
		}
	}

	courses, err := c.source.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("catalog: cache fill: %w", err)
	}

	c.store(ctx, courses)
	return courses, nil
}

func (c *Cache) store(ctx context.Context, courses []Course) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(courses)
	if err != nil {
		c.logger.Warn("catalog cache marshal failed", "error", err)
		return
	}
	if err := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "error", err)
	}
}

var _ Source = (*Cache)(nil)
