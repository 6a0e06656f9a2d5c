package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	appconfig "github.com/campusbot/course-ai-platform/internal/config"
	"github.com/campusbot/course-ai-platform/internal/ingest"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

type noopRefresher struct{}

func (noopRefresher) RefreshCatalog(_ context.Context) error { return nil }
func (noopRefresher) RefreshReviews(_ context.Context) error { return nil }

func TestSetupQueueMemoryPath(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{UseMemoryQueue: true, WorkerCount: 1}

	publisher, worker := setupQueue(cfg, aws.Config{}, noopRefresher{}, nil, logger)
	if publisher == nil {
		t.Fatalf("expected publisher")
	}
	if worker == nil {
		t.Fatalf("expected worker")
	}
}

func TestRunSchedulerEnqueuesBothKindsAtBoot(t *testing.T) {
	logger := logging.New("error")
	queue := ingest.NewMemoryQueue(4)
	publisher := ingest.NewPublisher(queue, logger)
	cfg := &appconfig.Config{
		RefreshInterval: time.Hour,
		RawReviewsURL:   "https://reviews.example.edu/raw.json",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runScheduler(ctx, cfg, publisher, logger)

	kinds := map[string]bool{}
	deadline := time.After(2 * time.Second)
	for len(kinds) < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected catalog and reviews jobs, got %v", kinds)
		default:
		}
		msgs, err := queue.Receive(ctx, 2, 0)
		if err != nil {
			t.Fatalf("receive failed: %v", err)
		}
		for _, msg := range msgs {
			var payload struct {
				Kind string `json:"kind"`
			}
			if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
				t.Fatalf("bad job payload %q: %v", msg.Body, err)
			}
			kinds[payload.Kind] = true
		}
	}

	if !kinds["catalog"] || !kinds["reviews"] {
		t.Fatalf("expected both job kinds, got %v", kinds)
	}
}

func TestRunSchedulerSkipsReviewsWithoutFeed(t *testing.T) {
	logger := logging.New("error")
	queue := ingest.NewMemoryQueue(4)
	publisher := ingest.NewPublisher(queue, logger)
	cfg := &appconfig.Config{RefreshInterval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runScheduler(ctx, cfg, publisher, logger)

	msgs, err := queue.Receive(ctx, 2, 1)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected only the catalog job, got %d messages", len(msgs))
	}

	var payload struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(msgs[0].Body), &payload); err != nil {
		t.Fatalf("bad job payload: %v", err)
	}
	if payload.Kind != "catalog" {
		t.Fatalf("expected catalog job, got %q", payload.Kind)
	}
}
