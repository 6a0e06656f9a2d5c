package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/campusbot/course-ai-platform/internal/catalog"
	"github.com/campusbot/course-ai-platform/internal/reviews"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

const (
	defaultCatalogKey = "courses_output.json"
	defaultReviewsKey = "prof_reviews.json"
)

// RawReviewSource yields scraper output before normalization.
type RawReviewSource interface {
	Fetch(ctx context.Context) (map[string][]reviews.RawReview, error)
}

// Uploader persists a refreshed snapshot.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// SnapshotRefresher pulls fresh datasets from their origins and replaces
// the snapshot objects the serving path reads. An empty dataset is never
// published; a bad scrape leaves the previous snapshot in place.
type SnapshotRefresher struct {
	catalog    catalog.Source
	rawReviews RawReviewSource
	uploader   Uploader
	catalogKey string
	reviewsKey string
	logger     *logging.Logger
}

func NewSnapshotRefresher(catalogSource catalog.Source, rawReviews RawReviewSource, uploader Uploader, catalogKey, reviewsKey string, logger *logging.Logger) *SnapshotRefresher {
	if catalogSource == nil {
		panic("ingest: catalog source is required")
	}
	if rawReviews == nil {
		panic("ingest: raw review source is required")
	}
	if uploader == nil {
		panic("ingest: uploader is required")
	}
	if catalogKey == "" {
		catalogKey = defaultCatalogKey
	}
	if reviewsKey == "" {
		reviewsKey = defaultReviewsKey
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotRefresher{
		catalog:    catalogSource,
		rawReviews: rawReviews,
		uploader:   uploader,
		catalogKey: catalogKey,
		reviewsKey: reviewsKey,
		logger:     logger,
	}
}

// RefreshCatalog re-fetches the course catalog and replaces its snapshot.
func (r *SnapshotRefresher) RefreshCatalog(ctx context.Context) error {
	courses, err := r.catalog.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("ingest: fetch catalog: %w", err)
	}
	if len(courses) == 0 {
		return fmt.Errorf("ingest: refusing to publish empty catalog")
	}

	data, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("ingest: encode catalog snapshot: %w", err)
	}
	if err := r.uploader.Upload(ctx, r.catalogKey, data); err != nil {
		return err
	}

	r.logger.Info("catalog snapshot refreshed", "courses", len(courses), "key", r.catalogKey)
	return nil
}

// RefreshReviews re-fetches raw professor reviews, normalizes them and
// replaces the review snapshot.
func (r *SnapshotRefresher) RefreshReviews(ctx context.Context) error {
	raw, err := r.rawReviews.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("ingest: fetch raw reviews: %w", err)
	}

	set := reviews.NormalizeRaw(raw)
	if len(set) == 0 {
		return fmt.Errorf("ingest: refusing to publish empty review set")
	}

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("ingest: encode review snapshot: %w", err)
	}
	if err := r.uploader.Upload(ctx, r.reviewsKey, data); err != nil {
		return err
	}

	r.logger.Info("review snapshot refreshed", "professors", len(set), "key", r.reviewsKey)
	return nil
}

var _ Refresher = (*SnapshotRefresher)(nil)
