package etl

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/datakettle/superstore-etl/internal/db"
	"github.com/datakettle/superstore-etl/internal/logging"
	"github.com/datakettle/superstore-etl/internal/superstore"
)

// skipLogLimit caps per-table warnings about unresolved dimension keys so a
// bad input file does not flood the log.
const skipLogLimit = 5

// FactCounts reports the outcome of one fact loader: rows inserted plus rows
// skipped equals the candidate rows at that table's grain.
type FactCounts struct {
	Inserted int
	Skipped  int
}

// LoadItemFact loads the line-item-grain fact table. A row is written only
// when the customer, product, order-date calendar, and location keys all
// resolve; otherwise it is skipped and counted.
func LoadItemFact(ctx context.Context, q db.Queryer, items []superstore.LineItem, keys *DimensionKeys, batchSize int) (FactCounts, error) {
	logging.Info().Msg("Loading item fact table")

	var counts FactCounts
	batch := &pgx.Batch{}

	for _, item := range items {
		customerID, ok1 := keys.Customer[item.CustomerID]
		productID, ok2 := keys.Product[item.ProductID]
		calendarID, ok3 := keys.Calendar[item.OrderDate.Format("2006-01-02")]
		locationID, ok4 := keys.Location[PostalCity{item.PostalCode, item.City}]
		if !ok1 || !ok2 || !ok3 || !ok4 {
			counts.Skipped++
			if counts.Skipped <= skipLogLimit {
				logging.Warn().
					Str("order_id", item.OrderID).
					Str("product", item.ProductName).
					Msg("Skipping item: unresolved dimension keys")
			}
			continue
		}

		batch.Queue(`
            INSERT INTO item (customer_id, location_id, calendar_id, product_id,
                              order_code, quantity, sales, discount, lost_value, profit)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        `, customerID, locationID, calendarID, productID,
			item.OrderID, item.Quantity, item.Sales, item.Discount,
			LostValue(item.Sales, item.Discount), item.Profit)
		counts.Inserted++

		if batch.Len() >= batchSize {
			if err := flushBatch(ctx, q, batch); err != nil {
				return counts, fmt.Errorf("inserting item facts: %w", err)
			}
			batch = &pgx.Batch{}
			logging.Debug().Int("inserted", counts.Inserted).Msg("Item fact progress")
		}
	}

	if err := flushBatch(ctx, q, batch); err != nil {
		return counts, fmt.Errorf("inserting item facts: %w", err)
	}

	logging.Info().
		Int("inserted", counts.Inserted).
		Int("skipped", counts.Skipped).
		Msg("Loaded item fact table")
	return counts, nil
}

// LoadOrdersFact loads the order-grain fact table. Shared order attributes
// come from the rollup's representative row (first by stable input order);
// orders whose items disagree on those attributes are loaded anyway and
// warned about.
func LoadOrdersFact(ctx context.Context, q db.Queryer, items []superstore.LineItem, keys *DimensionKeys, batchSize int) (FactCounts, error) {
	logging.Info().Msg("Loading orders fact table")

	rollups := RollupOrders(items)
	var counts FactCounts
	inconsistent := 0
	batch := &pgx.Batch{}

	for _, r := range rollups {
		if len(r.InconsistentFields) > 0 {
			inconsistent++
			if inconsistent <= skipLogLimit {
				logging.Warn().
					Str("order_id", r.OrderID).
					Strs("fields", r.InconsistentFields).
					Msg("Order items disagree on shared attributes; using first row")
			}
		}

		first := r.First
		customerID, ok1 := keys.Customer[first.CustomerID]
		orderCalendarID, ok2 := keys.Calendar[first.OrderDate.Format("2006-01-02")]
		shipCalendarID, ok3 := keys.Calendar[first.ShipDate.Format("2006-01-02")]
		locationID, ok4 := keys.Location[PostalCity{first.PostalCode, first.City}]
		shippingID, ok5 := keys.Shipping[first.ShipMode]
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			counts.Skipped++
			if counts.Skipped <= skipLogLimit {
				logging.Warn().
					Str("order_id", r.OrderID).
					Msg("Skipping order: unresolved dimension keys")
			}
			continue
		}

		batch.Queue(`
            INSERT INTO orders (order_calendar_id, shipping_calendar_id, customer_id, location_id,
                                shipping_id, order_code, sales_order, quantity_order,
                                lost_value_order, profit_order)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        `, orderCalendarID, shipCalendarID, customerID, locationID,
			shippingID, r.OrderID, r.Sales, r.Quantity, r.LostValue, r.Profit)
		counts.Inserted++

		if batch.Len() >= batchSize {
			if err := flushBatch(ctx, q, batch); err != nil {
				return counts, fmt.Errorf("inserting order facts: %w", err)
			}
			batch = &pgx.Batch{}
			logging.Debug().Int("inserted", counts.Inserted).Msg("Orders fact progress")
		}
	}

	if err := flushBatch(ctx, q, batch); err != nil {
		return counts, fmt.Errorf("inserting order facts: %w", err)
	}

	if inconsistent > 0 {
		logging.Warn().Int("orders", inconsistent).Msg("Orders with inconsistent shared attributes")
	}
	logging.Info().
		Int("inserted", counts.Inserted).
		Int("skipped", counts.Skipped).
		Msg("Loaded orders fact table")
	return counts, nil
}

// LoadMonthlyFact loads the monthly-by-state fact table (order_m).
func LoadMonthlyFact(ctx context.Context, q db.Queryer, items []superstore.LineItem, keys *DimensionKeys, batchSize int) (FactCounts, error) {
	logging.Info().Msg("Loading monthly order fact table")

	rollups := RollupMonthlyByState(items)
	var counts FactCounts
	batch := &pgx.Batch{}

	for _, r := range rollups {
		monthID, ok1 := keys.CalendarMonth[YearMonth{r.Key.Year, r.Key.Month}]
		stateID, ok2 := keys.State[r.Key.State]
		if !ok1 || !ok2 {
			counts.Skipped++
			if counts.Skipped <= skipLogLimit {
				logging.Warn().
					Int("year", r.Key.Year).
					Int("month", r.Key.Month).
					Str("state", r.Key.State).
					Msg("Skipping monthly rollup: unresolved dimension keys")
			}
			continue
		}

		batch.Queue(`
            INSERT INTO order_m (calendar_month_id, state_id, sales_month, quantity_month,
                                 lost_value_month, profit_month)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, monthID, stateID, r.Sales, float64(r.Quantity), r.LostValue, r.Profit)
		counts.Inserted++

		if batch.Len() >= batchSize {
			if err := flushBatch(ctx, q, batch); err != nil {
				return counts, fmt.Errorf("inserting monthly facts: %w", err)
			}
			batch = &pgx.Batch{}
		}
	}

	if err := flushBatch(ctx, q, batch); err != nil {
		return counts, fmt.Errorf("inserting monthly facts: %w", err)
	}

	logging.Info().
		Int("inserted", counts.Inserted).
		Int("skipped", counts.Skipped).
		Msg("Loaded monthly order fact table")
	return counts, nil
}

// LoadProductPerformanceFact loads the category/state/month fact table,
// including the cumulative profit running total.
func LoadProductPerformanceFact(ctx context.Context, q db.Queryer, items []superstore.LineItem, keys *DimensionKeys, batchSize int) (FactCounts, error) {
	logging.Info().Msg("Loading product performance fact table")

	rollups := RollupProductPerformance(items)
	var counts FactCounts
	batch := &pgx.Batch{}

	for _, r := range rollups {
		categoryID, ok1 := keys.Category[r.Key.Category]
		stateID, ok2 := keys.State[r.Key.State]
		monthID, ok3 := keys.CalendarMonth[YearMonth{r.Key.Year, r.Key.Month}]
		if !ok1 || !ok2 || !ok3 {
			counts.Skipped++
			if counts.Skipped <= skipLogLimit {
				logging.Warn().
					Str("category", r.Key.Category).
					Str("state", r.Key.State).
					Int("year", r.Key.Year).
					Int("month", r.Key.Month).
					Msg("Skipping product performance rollup: unresolved dimension keys")
			}
			continue
		}

		batch.Queue(`
            INSERT INTO product_performance (category_id, state_id, calendar_month_id,
                                             total_sales, total_profit, cumulative_profit, total_quantity)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, categoryID, stateID, monthID, r.Sales, r.Profit, r.CumulativeProfit, r.Quantity)
		counts.Inserted++

		if batch.Len() >= batchSize {
			if err := flushBatch(ctx, q, batch); err != nil {
				return counts, fmt.Errorf("inserting product performance facts: %w", err)
			}
			batch = &pgx.Batch{}
		}
	}

	if err := flushBatch(ctx, q, batch); err != nil {
		return counts, fmt.Errorf("inserting product performance facts: %w", err)
	}

	logging.Info().
		Int("inserted", counts.Inserted).
		Int("skipped", counts.Skipped).
		Msg("Loaded product performance fact table")
	return counts, nil
}
