package cli

import (
	"github.com/spf13/cobra"

	"github.com/datakettle/superstore-etl/internal/datagen"
)

var (
	seedFile          string
	seedOrders        int
	seedSeed          uint64
	seedDuplicateRate float64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic Superstore-style source file",
	Long: `Generate a synthetic delimited source file with the Superstore column
layout, suitable as input for the run command. Some line items are
duplicated on purpose so the deduplication stage has work to do.

Example:
  superstore-etl seed --file seed.csv --orders 2000 --seed 42`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "seed.csv",
		"output file path")
	seedCmd.Flags().IntVar(&seedOrders, "orders", 0,
		"number of orders to generate (default: 1000)")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0,
		"random seed for reproducible output (0 = random)")
	seedCmd.Flags().Float64Var(&seedDuplicateRate, "duplicate-rate", -1,
		"fraction of line items emitted twice (default: 0.05)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	seedCfg := datagen.DefaultSeedConfig()
	if seedOrders > 0 {
		seedCfg.Orders = seedOrders
	}
	seedCfg.Seed = seedSeed
	if seedDuplicateRate >= 0 {
		seedCfg.DuplicateRate = seedDuplicateRate
	}

	return datagen.WriteSuperstoreCSV(seedFile, seedCfg)
}
