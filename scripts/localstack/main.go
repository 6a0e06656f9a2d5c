// Package main provisions the local AWS resources the platform needs for
// development against LocalStack: the snapshot bucket, the ingest queue,
// and the user-memory table.
//
// Usage:
//
//	AWS_ENDPOINT_OVERRIDE=http://localhost:4566 AWS_ACCESS_KEY_ID=test \
//	AWS_SECRET_ACCESS_KEY=test go run scripts/localstack/main.go
//
// The queue URL printed at the end goes into INGEST_QUEUE_URL.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/campusbot/course-ai-platform/cmd/mainconfig"
	appconfig "github.com/campusbot/course-ai-platform/internal/config"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

const queueName = "campus-ingest"

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewText(os.Stderr, cfg.LogLevel)

	if cfg.AWSEndpointOverride == "" {
		logger.Error("AWS_ENDPOINT_OVERRIDE is required; this tool only targets LocalStack")
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	if err := createBucket(ctx, s3.NewFromConfig(awsCfg), cfg.CatalogBucket); err != nil {
		logger.Error("failed to create bucket", "bucket", cfg.CatalogBucket, "error", err)
		os.Exit(1)
	}
	logger.Info("bucket ready", "bucket", cfg.CatalogBucket)

	if err := createTable(ctx, dynamodb.NewFromConfig(awsCfg), cfg.UserDataTable); err != nil {
		logger.Error("failed to create table", "table", cfg.UserDataTable, "error", err)
		os.Exit(1)
	}
	logger.Info("table ready", "table", cfg.UserDataTable)

	queueURL, err := createQueue(ctx, sqs.NewFromConfig(awsCfg))
	if err != nil {
		logger.Error("failed to create queue", "queue", queueName, "error", err)
		os.Exit(1)
	}
	logger.Info("queue ready", "queue", queueName)

	fmt.Printf("INGEST_QUEUE_URL=%s\n", queueURL)
}

func createBucket(ctx context.Context, client *s3.Client, bucket string) error {
	if bucket == "" {
		return errors.New("CATALOG_BUCKET is required")
	}

	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	var owned *s3types.BucketAlreadyOwnedByYou
	var exists *s3types.BucketAlreadyExists
	if errors.As(err, &owned) || errors.As(err, &exists) {
		return nil
	}
	return err
}

func createTable(ctx context.Context, client *dynamodb.Client, table string) error {
	if table == "" {
		return errors.New("USER_DATA_TABLE is required")
	}

	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: ddbtypes.BillingModePayPerRequest,
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String("userid"), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String("userid"), KeyType: ddbtypes.KeyTypeHash},
		},
	})
	var inUse *ddbtypes.ResourceInUseException
	if errors.As(err, &inUse) {
		return nil
	}
	return err
}

func createQueue(ctx context.Context, client *sqs.Client) (string, error) {
	out, err := client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(queueName)})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.QueueUrl), nil
}
