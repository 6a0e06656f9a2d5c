// Lambda entrypoint for Lex intent fulfillment. The bot delegates every
// intent here; the engine answers from the published catalog and review
// snapshots plus per-user DynamoDB memory.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"github.com/campusbot/course-ai-platform/cmd/mainconfig"
	"github.com/campusbot/course-ai-platform/internal/app/bootstrap"
	appconfig "github.com/campusbot/course-ai-platform/internal/config"
	"github.com/campusbot/course-ai-platform/internal/fulfillment"
	"github.com/campusbot/course-ai-platform/internal/memory"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	s3Client := s3.NewFromConfig(awsCfg)

	// Execution environments are reused between invocations, so the Redis
	// cache keeps catalog reads warm when an address is configured.
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)

	catalogSrc, err := bootstrap.BuildCatalogSource(cfg, s3Client, redisClient, logger)
	if err != nil {
		logger.Error("failed to build catalog source", "error", err)
		os.Exit(1)
	}
	reviewSrc, err := bootstrap.BuildReviewsSource(cfg, s3Client, redisClient, logger)
	if err != nil {
		logger.Error("failed to build reviews source", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	engine := fulfillment.NewEngine(
		catalogSrc,
		reviewSrc,
		memory.NewStore(dynamoClient, cfg.UserDataTable),
		logger,
	)
	if cfg.SuggestFollowUps {
		engine.EnableSuggestions()
	}

	logger.Info("starting fulfillment handler",
		"table", cfg.UserDataTable,
		"bucket", cfg.CatalogBucket,
	)
	lambda.Start(func(ctx context.Context, event fulfillment.Event) (fulfillment.Response, error) {
		return engine.Handle(ctx, event), nil
	})
}
