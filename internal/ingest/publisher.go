package ingest

import (
	"context"
	"fmt"

	"github.com/campusbot/course-ai-platform/pkg/logging"
)

// Publisher enqueues snapshot refresh jobs.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("ingest: queue is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueCatalogRefresh publishes a catalog refresh job and returns its id.
func (p *Publisher) EnqueueCatalogRefresh(ctx context.Context) (string, error) {
	return p.enqueue(ctx, jobKindCatalog)
}

// EnqueueReviewRefresh publishes a review refresh job and returns its id.
func (p *Publisher) EnqueueReviewRefresh(ctx context.Context) (string, error) {
	return p.enqueue(ctx, jobKindReviews)
}

func (p *Publisher) enqueue(ctx context.Context, kind jobKind) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, body, err := encodeJob(jobPayload{Kind: kind})
	if err != nil {
		return "", err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return "", fmt.Errorf("ingest: enqueue %s refresh: %w", kind, err)
	}

	p.logger.Debug("refresh job enqueued", "job_id", payload.ID, "kind", kind)
	return payload.ID, nil
}
