package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalog_sync/internal/adapters/opener"
	"catalog_sync/internal/audit"
	"catalog_sync/internal/commerce"
	"catalog_sync/internal/config"
	"catalog_sync/internal/logging"
	"catalog_sync/internal/ports"
	"catalog_sync/internal/records"
	"catalog_sync/internal/services/syncer"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Create metadata, products, price books and prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, syncer.Ingest)
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete prices, price books, products and metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, syncer.Reset)
		},
	}
}

// runSync fails only on setup errors. Entity failures are logged and
// reported in the final line.
func runSync(cmd *cobra.Command, d syncer.Direction) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		if err := cfg.SetDataDir(dir, nil); err != nil {
			return err
		}
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q: use json or xlsx", format)
	}

	runID := uuid.NewString()
	base := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	log := logging.WithRun(base, runID)

	client, err := commerce.New(commerce.Config{
		Credentials: commerce.Credentials{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		},
		TenantID:    cfg.TenantID,
		Region:      cfg.Region,
		Environment: cfg.Environment,
		Logger:      log,
		BaseURL:     cfg.APIURL,
		TokenURL:    cfg.TokenURL,
	})
	if err != nil {
		return err
	}

	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conns, err := cfg.Connect(setupCtx)
	if err != nil {
		return err
	}
	defer conns.Close(context.Background())

	if err := conns.CheckConnections(setupCtx); err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}

	rec, err := buildRecorder(setupCtx, cfg, conns)
	if err != nil {
		return err
	}

	var s3Op *opener.S3Opener
	if conns.S3 != nil {
		s3Op = opener.NewS3Opener(conns.S3.Client, base)
	}
	compound := opener.NewCompoundOpener(
		opener.NewLocalOpener(base),
		opener.NewHTTPOpener(&http.Client{Timeout: time.Minute}, base),
		s3Op,
	)
	loader := records.NewLoader(compound, cfg.DataDir, base)

	svc := syncer.NewService(client, loader, rec, base, runID)
	svc.Format = format

	log.Info().Str("direction", string(d)).Str("data_dir", cfg.DataDir).Msg("[RUN][START]")
	start := time.Now()

	sums := svc.RunAll(ctx, d, syncer.Order(d))

	failed := 0
	for _, s := range sums {
		if s.Failed() {
			failed++
		}
	}
	log.Info().
		Str("direction", string(d)).
		Int("entities", len(sums)).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("[RUN][DONE]")
	return nil
}

func buildRecorder(ctx context.Context, cfg *config.Config, conns *config.Connections) (ports.Recorder, error) {
	var recs []ports.Recorder

	if conns.Mongo != nil {
		mr, err := audit.NewMongoRecorder(conns.Mongo)
		if err != nil {
			return nil, fmt.Errorf("mongo audit: %w", err)
		}
		recs = append(recs, mr)
	}

	if conns.Postgres != nil {
		pr, err := audit.NewPostgresRecorder(conns.Postgres, cfg.RunsTable)
		if err != nil {
			return nil, fmt.Errorf("postgres audit: %w", err)
		}
		if err := pr.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("postgres audit: %w", err)
		}
		recs = append(recs, pr)
	}

	return audit.Combine(recs...), nil
}
