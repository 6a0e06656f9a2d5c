package ingest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// s3API is the slice of the S3 client used by SnapshotUploader.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SnapshotUploader writes refreshed datasets to the snapshot bucket the
// serving path reads from.
type SnapshotUploader struct {
	api    s3API
	bucket string
	tracer trace.Tracer
}

func NewSnapshotUploader(client *s3.Client, bucket string) *SnapshotUploader {
	if client == nil {
		panic("ingest: S3 client is required")
	}
	return NewSnapshotUploaderWithAPI(client, bucket)
}

func NewSnapshotUploaderWithAPI(api s3API, bucket string) *SnapshotUploader {
	if api == nil {
		panic("ingest: S3 client is required")
	}
	if bucket == "" {
		panic("ingest: snapshot bucket is required")
	}
	return &SnapshotUploader{
		api:    api,
		bucket: bucket,
		tracer: otel.Tracer("campus.internal.ingest.uploader"),
	}
}

// Upload replaces the object at key with data. Readers always see either
// the previous snapshot or the new one, never a partial write.
func (u *SnapshotUploader) Upload(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("ingest: snapshot key is required")
	}

	ctx, span := u.tracer.Start(ctx, "ingest.uploader.upload")
	defer span.End()

	_, err := u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("ingest: upload snapshot %s: %w", key, err)
	}
	return nil
}

var _ Uploader = (*SnapshotUploader)(nil)
