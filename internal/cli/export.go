package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datakettle/superstore-etl/internal/db"
	"github.com/datakettle/superstore-etl/internal/export"
	"github.com/datakettle/superstore-etl/internal/warehouse"
)

var exportFile string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the warehouse to a spreadsheet workbook",
	Long: `Export every warehouse table to an Excel workbook, one worksheet per
table. The default output file is <database>_export.xlsx in the current
directory.

Example:
  superstore-etl export --file superstore.xlsx`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFile, "file", "",
		"output workbook path (default: <database>_export.xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if exportFile != "" {
		cfg.Export.File = exportFile
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.ConnString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	path := cfg.Export.File
	if path == "" {
		path = pool.Config().ConnConfig.Database + "_export.xlsx"
	}

	return export.Workbook(ctx, pool, warehouse.Tables, path)
}
