// Package cli implements the command-line interface for superstore-etl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/datakettle/superstore-etl/internal/config"
	"github.com/datakettle/superstore-etl/internal/logging"
	"github.com/datakettle/superstore-etl/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "superstore-etl",
		Short: "Batch ETL pipeline for the Superstore retail dataset",
		Long: `superstore-etl reads the Superstore retail dataset from a delimited
source file, cleans and deduplicates it, and loads a star-schema data
warehouse in PostgreSQL: nine dimension tables and four fact tables at
line-item, order, monthly, and category/state/month grains.

A typical session creates the schema, runs the pipeline, and exports the
result:

  superstore-etl setup --connection "postgres://..."
  superstore-etl run --source-file "Sample - Superstore.csv"
  superstore-etl export --file superstore.xlsx`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./superstore-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
