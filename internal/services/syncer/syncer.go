package syncer

import (
	"context"
	"fmt"
	"time"

	"catalog_sync/internal/audit"
	"catalog_sync/internal/ports"
	"catalog_sync/internal/records"
	"catalog_sync/internal/services/batcher"

	"github.com/rs/zerolog"
)

type Source interface {
	Load(ctx context.Context, name string) ([]records.Record, error)
}

// Summary is the outcome of one entity type. Err is set when processing
// stopped early; batches already sent stay counted.
type Summary struct {
	Entity        string
	Direction     Direction
	Batches       int
	TotalRecords  int
	TotalAccepted int
	Err           error
}

func (s Summary) Failed() bool { return s.Err != nil }

type Service struct {
	Client   CatalogClient
	Source   Source
	Recorder ports.Recorder
	Log      zerolog.Logger

	RunID     string
	Format    string
	BatchSize int
}

func NewService(client CatalogClient, src Source, rec ports.Recorder, log zerolog.Logger, runID string) *Service {
	if rec == nil {
		rec = audit.Noop{}
	}
	return &Service{
		Client:    client,
		Source:    src,
		Recorder:  rec,
		Log:       log,
		RunID:     runID,
		Format:    "json",
		BatchSize: batcher.Size,
	}
}

// RunAll processes entities in order. A failing entity never stops the
// ones after it.
func (s *Service) RunAll(ctx context.Context, d Direction, entities []Entity) []Summary {
	out := make([]Summary, 0, len(entities))
	for _, e := range entities {
		out = append(out, s.RunIsolated(ctx, e.Pipeline(d)))
	}
	return out
}

// RunIsolated runs p and absorbs its error into the returned Summary.
func (s *Service) RunIsolated(ctx context.Context, p Pipeline) Summary {
	started := time.Now()
	sum, err := s.Run(ctx, p)
	sum.Err = err

	status := audit.StatusDone
	errText := ""
	if err != nil {
		status = audit.StatusFailed
		errText = err.Error()
		log := s.entityLog(p)
		log.Error().Err(err).
			Int("batches_sent", sum.Batches).
			Int("accepted", sum.TotalAccepted).
			Msgf("Error %s %s", p.Direction.gerund(), p.Entity.Name)
	}

	if rerr := s.Recorder.RecordRun(ctx, ports.RunEntry{
		RunID:         s.RunID,
		Entity:        p.Entity.Name,
		Direction:     string(p.Direction),
		Batches:       sum.Batches,
		TotalRecords:  sum.TotalRecords,
		TotalAccepted: sum.TotalAccepted,
		Status:        status,
		Error:         errText,
		StartedAt:     started,
		FinishedAt:    time.Now(),
	}); rerr != nil {
		log := s.entityLog(p)
		log.Warn().Err(rerr).Msg("[AUDIT] record run failed")
	}
	return sum
}

// Run loads the entity's records and sends them in sequential batches.
// It stops at the first error.
func (s *Service) Run(ctx context.Context, p Pipeline) (Summary, error) {
	sum := Summary{Entity: p.Entity.Name, Direction: p.Direction}
	log := s.entityLog(p)

	recs, err := s.Source.Load(ctx, s.collectionFile(p.Entity))
	if err != nil {
		return sum, fmt.Errorf("load %s: %w", p.Entity.Name, err)
	}
	if p.Project != nil {
		recs = p.Project(recs)
	}
	sum.TotalRecords = len(recs)

	op := p.Op(s.Client)
	for _, b := range batcher.Split(recs, s.batchSize()) {
		log.Info().Int("batch", b.Number).Int("items", len(b.Items)).
			Msgf("%s %s batch %d containing %d %s", p.Direction.progressive(), p.Entity.Name, b.Number, len(b.Items), p.Entity.Unit)

		sentAt := time.Now()
		resp, err := op(ctx, b.Items)
		if err != nil {
			s.recordBatch(ctx, p, b.Number, len(b.Items), nil, 0, err, sentAt)
			return sum, fmt.Errorf("%s batch %d: %w", p.Entity.Name, b.Number, err)
		}

		accepted := resp.AcceptedCount()
		sum.Batches++
		sum.TotalAccepted += accepted

		log.Info().Int("batch", b.Number).Int("accepted", accepted).Interface("response", resp.Data).
			Msgf("%s batch %d response", p.Entity.Title, b.Number)
		s.recordBatch(ctx, p, b.Number, len(b.Items), resp.Data, accepted, nil, sentAt)
	}

	log.Info().Int("accepted", sum.TotalAccepted).Int("total", sum.TotalRecords).
		Msgf("Successfully %s %d out of %d %s", p.Direction.past(), sum.TotalAccepted, sum.TotalRecords, p.Entity.summaryUnit(p.Direction))
	return sum, nil
}

func (s *Service) recordBatch(ctx context.Context, p Pipeline, number, items int, data map[string]any, accepted int, opErr error, sentAt time.Time) {
	e := ports.BatchEntry{
		RunID:     s.RunID,
		Entity:    p.Entity.Name,
		Direction: string(p.Direction),
		Number:    number,
		Items:     items,
		Accepted:  accepted,
		Response:  data,
		SentAt:    sentAt,
	}
	if opErr != nil {
		e.Error = opErr.Error()
	}
	if err := s.Recorder.RecordBatch(ctx, e); err != nil {
		log := s.entityLog(p)
		log.Warn().Err(err).Int("batch", number).Msg("[AUDIT] record batch failed")
	}
}

func (s *Service) entityLog(p Pipeline) zerolog.Logger {
	return s.Log.With().Str("run_id", s.RunID).Str("entity", p.Entity.Name).Str("direction", string(p.Direction)).Logger()
}

func (s *Service) collectionFile(e Entity) string {
	format := s.Format
	if format == "" {
		format = "json"
	}
	return e.Collection + "." + format
}

func (s *Service) batchSize() int {
	if s.BatchSize <= 0 || s.BatchSize > batcher.Size {
		return batcher.Size
	}
	return s.BatchSize
}
