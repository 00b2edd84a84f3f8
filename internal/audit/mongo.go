package audit

import (
	"context"
	"time"

	mg "catalog_sync/internal/config/connections/mongo"
	"catalog_sync/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BatchesCollection = "catalog_sync_batches"
	RunsCollection    = "catalog_sync_runs"
)

type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoRecorder writes one document per batch and one per entity run.
type MongoRecorder struct {
	batches inserter
	runs    inserter
}

func NewMongoRecorder(m *mg.Mongo) (*MongoRecorder, error) {
	if m == nil || m.Client == nil || m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}
	return &MongoRecorder{
		batches: m.Database.Collection(BatchesCollection),
		runs:    m.Database.Collection(RunsCollection),
	}, nil
}

func (r *MongoRecorder) RecordBatch(ctx context.Context, e ports.BatchEntry) error {
	sentAt := e.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	doc := bson.D{
		{Key: "run_id", Value: e.RunID},
		{Key: "entity", Value: e.Entity},
		{Key: "direction", Value: e.Direction},
		{Key: "batch", Value: e.Number},
		{Key: "items", Value: e.Items},
		{Key: "accepted", Value: e.Accepted},
		{Key: "response", Value: bson.M(e.Response)},
		{Key: "errors", Value: e.Error},
		{Key: "created_at", Value: sentAt.UTC()},
	}
	_, err := r.batches.InsertOne(ctx, doc, options.InsertOne())
	return err
}

func (r *MongoRecorder) RecordRun(ctx context.Context, e ports.RunEntry) error {
	doc := bson.D{
		{Key: "run_id", Value: e.RunID},
		{Key: "entity", Value: e.Entity},
		{Key: "direction", Value: e.Direction},
		{Key: "batches", Value: e.Batches},
		{Key: "count", Value: e.TotalRecords},
		{Key: "accepted", Value: e.TotalAccepted},
		{Key: "status", Value: e.Status},
		{Key: "errors", Value: e.Error},
		{Key: "started_at", Value: e.StartedAt.UTC()},
		{Key: "finished_at", Value: e.FinishedAt.UTC()},
	}
	_, err := r.runs.InsertOne(ctx, doc, options.InsertOne())
	return err
}
