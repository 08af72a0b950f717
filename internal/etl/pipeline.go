package etl

import (
	"context"
	"errors"
	"fmt"

	"github.com/datakettle/superstore-etl/internal/db"
	"github.com/datakettle/superstore-etl/internal/logging"
	"github.com/datakettle/superstore-etl/internal/superstore"
)

// Options holds pipeline tuning parameters.
type Options struct {
	// ItemBatchSize is the insert batch size for the item fact table.
	ItemBatchSize int

	// OrderBatchSize is the insert batch size for the orders fact table.
	OrderBatchSize int

	// MonthlyBatchSize is the insert batch size for the monthly fact tables.
	MonthlyBatchSize int
}

// DefaultOptions returns default pipeline options.
func DefaultOptions() Options {
	return Options{
		ItemBatchSize:    500,
		OrderBatchSize:   200,
		MonthlyBatchSize: 50,
	}
}

// Report summarizes a pipeline run: per-table loaded and skipped counts.
type Report struct {
	RawRows     int
	CleanedRows int
	Dimensions  DimensionCounts
	Facts       map[string]FactCounts
}

// Run executes the batch pipeline over an already-read snapshot:
// deduplicate, load dimensions, then load facts. The two stages form a
// barrier: every dimension is committed before any fact loader reads keys
// back. Fact-table failures are isolated from each other; the combined error
// (if any) is returned alongside the report of what did load.
func Run(ctx context.Context, q db.Queryer, raw []superstore.LineItem, opts Options) (*Report, error) {
	report := &Report{
		RawRows: len(raw),
		Facts:   make(map[string]FactCounts),
	}

	dupes := DuplicatePairCount(raw)
	cleaned := Deduplicate(raw)
	report.CleanedRows = len(cleaned)
	logging.Info().
		Int("raw_rows", len(raw)).
		Int("duplicate_pairs", dupes).
		Int("cleaned_rows", len(cleaned)).
		Msg("Deduplicated line items")

	levelKeys := BuildLevelKeys(cleaned)

	dims, err := LoadDimensions(ctx, q, cleaned, levelKeys)
	report.Dimensions = dims
	if err != nil {
		return report, fmt.Errorf("dimension stage failed: %w", err)
	}

	// Dimension keys are datastore-assigned, so they are read back exactly
	// once here and handed to every fact loader.
	keys, err := ReadDimensionKeys(ctx, q)
	if err != nil {
		return report, fmt.Errorf("reading dimension keys: %w", err)
	}

	var factErrs []error
	runFact := func(name string, load func() (FactCounts, error)) {
		counts, err := load()
		report.Facts[name] = counts
		if err != nil {
			logging.Error().Err(err).Str("table", name).Msg("Fact table load failed")
			factErrs = append(factErrs, fmt.Errorf("%s: %w", name, err))
		}
	}

	runFact("item", func() (FactCounts, error) {
		return LoadItemFact(ctx, q, cleaned, keys, opts.ItemBatchSize)
	})
	runFact("orders", func() (FactCounts, error) {
		return LoadOrdersFact(ctx, q, cleaned, keys, opts.OrderBatchSize)
	})
	runFact("order_m", func() (FactCounts, error) {
		return LoadMonthlyFact(ctx, q, cleaned, keys, opts.MonthlyBatchSize)
	})
	runFact("product_performance", func() (FactCounts, error) {
		return LoadProductPerformanceFact(ctx, q, cleaned, keys, opts.MonthlyBatchSize)
	})

	for name, counts := range report.Facts {
		logging.Info().
			Str("table", name).
			Int("inserted", counts.Inserted).
			Int("skipped", counts.Skipped).
			Msg("Fact table summary")
	}

	return report, errors.Join(factErrs...)
}
