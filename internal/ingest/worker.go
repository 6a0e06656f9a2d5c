package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/campusbot/course-ai-platform/internal/observability/metrics"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

// Refresher executes one snapshot refresh per dataset.
type Refresher interface {
	RefreshCatalog(ctx context.Context) error
	RefreshReviews(ctx context.Context) error
}

// Worker consumes refresh jobs from the queue and runs the refresher.
type Worker struct {
	refresher Refresher
	queue     queueClient
	logger    *logging.Logger
	metrics   *metrics.IngestMetrics

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	metrics          *metrics.IngestMetrics
}

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	deleteTimeoutSeconds = 5
)

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the SQS long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithWorkerMetrics records job outcomes on the given metrics.
func WithWorkerMetrics(m *metrics.IngestMetrics) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.metrics = m
	}
}

// NewWorker constructs a queue consumer around the provided refresher.
func NewWorker(refresher Refresher, queue queueClient, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if refresher == nil {
		panic("ingest: refresher is required")
	}
	if queue == nil {
		panic("ingest: queue is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		refresher: refresher,
		queue:     queue,
		logger:    logger,
		metrics:   cfg.metrics,
		cfg:       cfg,
	}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("ingest worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("ingest worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive refresh jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	var payload jobPayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("failed to decode refresh job", "error", err)
		w.deleteMessage(context.Background(), msg.ReceiptHandle)
		return
	}

	started := time.Now()
	var err error
	switch payload.Kind {
	case jobKindCatalog:
		err = w.refresher.RefreshCatalog(ctx)
	case jobKindReviews:
		err = w.refresher.RefreshReviews(ctx)
	default:
		err = fmt.Errorf("ingest: unknown job kind %q", payload.Kind)
	}

	if err != nil {
		w.metrics.ObserveJob(string(payload.Kind), "error")
		w.logger.Error("refresh job failed", "error", err, "job_id", payload.ID, "kind", payload.Kind)
	} else {
		w.metrics.ObserveJob(string(payload.Kind), "success")
		w.logger.Info("refresh job processed",
			"job_id", payload.ID,
			"kind", payload.Kind,
			"duration", time.Since(started).Round(time.Millisecond).String(),
		)
	}

	w.deleteMessage(context.Background(), msg.ReceiptHandle)
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}

	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeoutSeconds*time.Second)
	defer cancel()

	if err := w.queue.Delete(deleteCtx, receiptHandle); err != nil {
		w.logger.Error("failed to delete refresh job", "error", err)
	}
}
