// Package ingest refreshes the published course and review snapshots.
// Refresh requests travel through a queue so scrape and upload work runs
// off the serving path.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type jobKind string

const (
	jobKindCatalog jobKind = "catalog"
	jobKindReviews jobKind = "reviews"
)

type jobPayload struct {
	ID   string  `json:"id"`
	Kind jobKind `json:"kind"`
}

func encodeJob(payload jobPayload) (jobPayload, string, error) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return jobPayload{}, "", fmt.Errorf("ingest: encode job: %w", err)
	}

	return payload, string(body), nil
}
