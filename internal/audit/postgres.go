package audit

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"catalog_sync/internal/config/connections/postgres"
	"catalog_sync/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRecorder keeps one row per entity run. Batches are not stored.
type PostgresRecorder struct {
	db    execer
	table string
}

func NewPostgresRecorder(pg *postgres.Postgres, table string) (*PostgresRecorder, error) {
	if pg == nil || pg.Pool == nil {
		return nil, errors.New("postgres not available")
	}
	return newPostgresRecorder(pg.Pool, table)
}

func newPostgresRecorder(db execer, table string) (*PostgresRecorder, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid runs table name %q", table)
	}
	return &PostgresRecorder{db: db, table: table}, nil
}

func (r *PostgresRecorder) EnsureTable(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+r.table+` (
			id uuid PRIMARY KEY,
			run_id text NOT NULL,
			entity text NOT NULL,
			direction text NOT NULL,
			batches integer NOT NULL,
			total_records integer NOT NULL,
			total_accepted integer NOT NULL,
			status text NOT NULL,
			errors text,
			started_at timestamptz NOT NULL,
			finished_at timestamptz NOT NULL
		)
	`)
	return err
}

func (r *PostgresRecorder) RecordBatch(context.Context, ports.BatchEntry) error { return nil }

func (r *PostgresRecorder) RecordRun(ctx context.Context, e ports.RunEntry) error {
	var errText *string
	if e.Error != "" {
		errText = &e.Error
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO `+r.table+` (
			id, run_id, entity, direction, batches, total_records, total_accepted,
			status, errors, started_at, finished_at
		) VALUES (
			$1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`,
		uuid.NewString(), e.RunID, e.Entity, e.Direction, e.Batches, e.TotalRecords, e.TotalAccepted,
		e.Status, errText, e.StartedAt, e.FinishedAt,
	)
	return err
}
