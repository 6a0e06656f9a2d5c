// Snapshot refresh worker. A ticker enqueues catalog and review refresh
// jobs; the worker pool scrapes the published timetable data and uploads
// fresh snapshots to S3.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusbot/course-ai-platform/cmd/mainconfig"
	"github.com/campusbot/course-ai-platform/internal/catalog"
	appconfig "github.com/campusbot/course-ai-platform/internal/config"
	"github.com/campusbot/course-ai-platform/internal/ingest"
	"github.com/campusbot/course-ai-platform/internal/observability/metrics"
	"github.com/campusbot/course-ai-platform/internal/reviews"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting catalog worker",
		"interval", cfg.RefreshInterval.String(),
		"memory_queue", cfg.UseMemoryQueue,
	)

	if cfg.CourseDetailsURL == "" || cfg.CatalogBucket == "" {
		logger.Error("COURSE_DETAILS and CATALOG_BUCKET are required")
		os.Exit(1)
	}
	if !cfg.UseMemoryQueue && cfg.IngestQueueURL == "" {
		logger.Error("INGEST_QUEUE_URL is required unless USE_MEMORY_QUEUE=true")
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	refresher := ingest.NewSnapshotRefresher(
		catalog.NewHTTPSource(cfg.CourseDetailsURL),
		reviews.NewRawHTTPSource(cfg.RawReviewsURL),
		ingest.NewSnapshotUploader(s3Client, cfg.CatalogBucket),
		cfg.CatalogKey,
		cfg.ReviewsKey,
		logger,
	)

	registry := prometheus.NewRegistry()
	ingestMetrics := metrics.NewIngestMetrics(registry)
	publisher, worker := setupQueue(cfg, awsCfg, refresher, ingestMetrics, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	go runScheduler(ctx, cfg, publisher, logger)
	obs := serveObservability(cfg.Port, registry, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down catalog worker...")
	cancel()
	_ = obs.Close()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
		logger.Info("catalog worker stopped")
	case <-time.After(30 * time.Second):
		logger.Warn("catalog worker shutdown timed out")
	}
}

// setupQueue builds both ends of the job queue: SQS in deployments, the
// in-process queue for local development.
func setupQueue(cfg *appconfig.Config, awsCfg aws.Config, refresher ingest.Refresher, m *metrics.IngestMetrics, logger *logging.Logger) (*ingest.Publisher, *ingest.Worker) {
	workerOpts := []ingest.WorkerOption{
		ingest.WithWorkerCount(cfg.WorkerCount),
		ingest.WithWorkerMetrics(m),
	}

	if cfg.UseMemoryQueue {
		queue := ingest.NewMemoryQueue(16)
		return ingest.NewPublisher(queue, logger),
			ingest.NewWorker(refresher, queue, logger, workerOpts...)
	}

	queue := ingest.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.IngestQueueURL)
	return ingest.NewPublisher(queue, logger),
		ingest.NewWorker(refresher, queue, logger, workerOpts...)
}

// runScheduler enqueues a refresh of each snapshot at boot and on every
// interval tick. Review refreshes are skipped when no raw review feed is
// configured.
func runScheduler(ctx context.Context, cfg *appconfig.Config, publisher *ingest.Publisher, logger *logging.Logger) {
	enqueue := func() {
		if _, err := publisher.EnqueueCatalogRefresh(ctx); err != nil {
			logger.Error("enqueue catalog refresh failed", "error", err)
		}
		if cfg.RawReviewsURL == "" {
			return
		}
		if _, err := publisher.EnqueueReviewRefresh(ctx); err != nil {
			logger.Error("enqueue review refresh failed", "error", err)
		}
	}

	enqueue()

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

// serveObservability exposes /metrics and /health for scraping and
// liveness probes.
func serveObservability(port string, registry *prometheus.Registry, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("observability server stopped", "error", err)
		}
	}()
	return srv
}
