package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source yields the canonical review set.
type Source interface {
	Fetch(ctx context.Context) (Set, error)
}

// HTTPSource reads the published review JSON (already in Set shape).
type HTTPSource struct {
	client *http.Client
	url    string
}

func NewHTTPSource(url string) *HTTPSource {
	if url == "" {
		panic("reviews: source url is required")
	}
	return &HTTPSource{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    url,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (Set, error) {
	var set Set
	if err := getJSON(ctx, s.client, s.url, &set); err != nil {
		return nil, fmt.Errorf("reviews: fetch reviews: %w", err)
	}
	return set, nil
}

// RawHTTPSource reads the scraper's output shape (course to raw reviews).
// The ingest worker normalizes it before publishing.
type RawHTTPSource struct {
	client *http.Client
	url    string
}

func NewRawHTTPSource(url string) *RawHTTPSource {
	if url == "" {
		panic("reviews: raw source url is required")
	}
	return &RawHTTPSource{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    url,
	}
}

func (s *RawHTTPSource) Fetch(ctx context.Context) (map[string][]RawReview, error) {
	var raw map[string][]RawReview
	if err := getJSON(ctx, s.client, s.url, &raw); err != nil {
		return nil, fmt.Errorf("reviews: fetch raw reviews: %w", err)
	}
	return raw, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// s3API is the slice of the S3 client used by S3Source.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the normalized snapshot the ingest worker maintains.
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
		panic("reviews: s3 client is required")
	}
	if bucket == "" || key == "" {
		panic("reviews: s3 bucket and key are required")
	}
	return &S3Source{api: api, bucket: bucket, key: key}
}

func (s *S3Source) Fetch(ctx context.Context) (Set, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("reviews: get snapshot s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	var set Set
	if err := json.NewDecoder(out.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("reviews: decode snapshot: %w", err)
	}
	return set, nil
}

var (
	_ Source = (*HTTPSource)(nil)
	_ Source = (*S3Source)(nil)
)
