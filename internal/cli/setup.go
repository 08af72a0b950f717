package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datakettle/superstore-etl/internal/db"
	"github.com/datakettle/superstore-etl/internal/logging"
	"github.com/datakettle/superstore-etl/internal/warehouse"
)

var (
	setupDDLScript    string
	setupDropExisting bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the warehouse schema",
	Long: `Create the star-schema warehouse tables in the target database.
By default the embedded schema is used; pass --ddl-script (or set
DATABASE_SCRIPT) to execute an external DDL file instead.

Example:
  superstore-etl setup --connection "postgres://..." --drop-existing`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&setupDDLScript, "ddl-script", "",
		"path to an external DDL script (default: embedded schema)")
	setupCmd.Flags().BoolVar(&setupDropExisting, "drop-existing", false,
		"drop existing warehouse tables before creating the schema")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if setupDDLScript != "" {
		cfg.Database.Script = setupDDLScript
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

	if setupDropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := warehouse.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating schema")
	if cfg.Database.Script != "" {
		if err := warehouse.CreateSchemaFromScript(ctx, pool, cfg.Database.Script); err != nil {
			return fmt.Errorf("failed to create schema from script: %w", err)
		}
	} else {
		if err := warehouse.CreateSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logging.Info().Int("tables", len(warehouse.Tables)).Msg("Warehouse schema ready")
	return nil
}
