package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the catalog-sync command with its ingest and reset
// subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalog-sync",
		Short:         "Push local catalog records to the commerce catalog API",
		Long:          "catalog-sync ingests or removes product metadata, products, price books and prices in batches of 100.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       rootCmdExample,
	}

	cmd.PersistentFlags().String("data-dir", "", "record location: local dir, s3://bucket/prefix or https:// base URL (overrides DATA_DIR)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().String("format", "json", "record file format: json or xlsx")

	cmd.AddCommand(newIngestCmd(), newResetCmd())
	return cmd
}

const rootCmdExample = `  # Create metadata, products, price books and prices from ./data
  catalog-sync ingest

  # Remove everything listed in ./data, dependents first
  catalog-sync reset

  # Read records from object storage
  catalog-sync ingest --data-dir s3://catalog-exports/2026-10`
