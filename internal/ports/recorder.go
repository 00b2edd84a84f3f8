package ports

import (
	"context"
	"time"
)

// BatchEntry describes one batch sent to the catalog API.
type BatchEntry struct {
	RunID     string
	Entity    string
	Direction string
	Number    int
	Items     int
	Accepted  int
	Response  map[string]any
	Error     string
	SentAt    time.Time
}

// RunEntry is the outcome of one entity type within a run.
type RunEntry struct {
	RunID         string
	Entity        string
	Direction     string
	Batches       int
	TotalRecords  int
	TotalAccepted int
	Status        string
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}

type Recorder interface {
	RecordBatch(ctx context.Context, e BatchEntry) error
	RecordRun(ctx context.Context, e RunEntry) error
}
