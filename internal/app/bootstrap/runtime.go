// Package bootstrap wires shared infrastructure for the binaries so the
// mains stay small. Builders degrade to nil (or a plain source) when the
// backing service is not configured.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"github.com/campusbot/course-ai-platform/internal/catalog"
	appconfig "github.com/campusbot/course-ai-platform/internal/config"
	"github.com/campusbot/course-ai-platform/internal/gateway"
	"github.com/campusbot/course-ai-platform/internal/reviews"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildTranscriptStore returns the Redis-backed chat transcript store.
func BuildTranscriptStore(redisClient *redis.Client) *gateway.TranscriptStore {
	return gateway.NewTranscriptStore(redisClient)
}

// BuildCatalogSource picks the published-snapshot source for course data:
// S3 when a bucket is configured, the public URL otherwise. A Redis client
// adds a read-through cache in front of it.
func BuildCatalogSource(cfg *appconfig.Config, s3Client *s3.Client, redisClient *redis.Client, logger *logging.Logger) (catalog.Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}

	var base catalog.Source
	switch {
	case strings.TrimSpace(cfg.CatalogBucket) != "" && s3Client != nil:
		base = catalog.NewS3Source(s3Client, cfg.CatalogBucket, cfg.CatalogKey)
	case strings.TrimSpace(cfg.CourseDetailsURL) != "":
		base = catalog.NewHTTPSource(cfg.CourseDetailsURL)
	default:
		return nil, fmt.Errorf("bootstrap: no catalog source configured (set CATALOG_BUCKET or COURSE_DETAILS)")
	}

	if redisClient != nil {
		return catalog.NewCache(redisClient, base, cfg.CatalogCacheTTL, logger), nil
	}
	return base, nil
}

// BuildReviewsSource picks the professor-review source, same shape as
// BuildCatalogSource.
func BuildReviewsSource(cfg *appconfig.Config, s3Client *s3.Client, redisClient *redis.Client, logger *logging.Logger) (reviews.Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}

	var base reviews.Source
	switch {
	case strings.TrimSpace(cfg.CatalogBucket) != "" && s3Client != nil:
		base = reviews.NewS3Source(s3Client, cfg.CatalogBucket, cfg.ReviewsKey)
	case strings.TrimSpace(cfg.ProfDetailsURL) != "":
		base = reviews.NewHTTPSource(cfg.ProfDetailsURL)
	default:
		return nil, fmt.Errorf("bootstrap: no reviews source configured (set CATALOG_BUCKET or PROF_DETAILS)")
	}

	if redisClient != nil {
		return reviews.NewCache(redisClient, base, cfg.CatalogCacheTTL, logger), nil
	}
	return base, nil
}
