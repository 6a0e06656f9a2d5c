package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source yields the current course catalog.
type Source interface {
	Fetch(ctx context.Context) ([]Course, error)
}

// HTTPSource reads the published catalog JSON from a URL.
type HTTPSource struct {
	client *http.Client
	url    string
}

func NewHTTPSource(url string) *HTTPSource {
	if url == "" {
		panic("catalog: source url is required")
	}
	return &HTTPSource{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    url,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch courses: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: fetch courses: unexpected status %d", resp.StatusCode)
	}

	var courses []Course
	if err := json.NewDecoder(resp.Body).Decode(&courses); err != nil {
		return nil, fmt.Errorf("catalog: decode courses: %w", err)
	}
	return courses, nil
}

// s3API is the slice of the S3 client used by S3Source.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the snapshot object the ingest worker maintains.
type S3Source struct {
	api    s3API
	bucket string
	key    string
}

func NewS3Source(client *s3.Client, bucket, key string) *S3Source {
	return NewS3SourceWithAPI(client, bucket, key)
}

// NewS3SourceWithAPI allows injecting a fake S3 client in tests.
func NewS3SourceWithAPI(api s3API, bucket, key string) *S3Source {
	if api == nil {
		panic("catalog: s3 client is required")
	}
	if bucket == "" || key == "" {
		panic("catalog: s3 bucket and key are required")
	}
	return &S3Source{api: api, bucket: bucket, key: key}
}

func (s *S3Source) Fetch(ctx context.Context) ([]Course, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: get snapshot s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	var courses []Course
	if err := json.NewDecoder(out.Body).Decode(&courses); err != nil {
		return nil, fmt.Errorf("catalog: decode snapshot: %w", err)
	}
	return courses, nil
}

var (
	_ Source = (*HTTPSource)(nil)
	_ Source = (*S3Source)(nil)
)
