package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/datakettle/superstore-etl/internal/db"
	"github.com/datakettle/superstore-etl/internal/logging"
)

// PostalCity is the composite natural key the fact loaders use to resolve a
// location: postal code plus city name.
type PostalCity struct {
	PostalCode string
	City       string
}

// YearMonth is the natural key of a calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// DimensionKeys holds every natural-key to primary-key mapping the fact
// loaders need, read back from the warehouse once after the dimension stage
// and passed into each loader as a read-only lookup.
type DimensionKeys struct {
	Customer      map[string]int
	Product       map[string]int
	Calendar      map[string]int // "2006-01-02" date key
	Location      map[PostalCity]int
	Shipping      map[string]int
	CalendarMonth map[YearMonth]int
	State         map[string]int
	Category      map[string]int
}

// ReadDimensionKeys bulk-reads all dimension key mappings.
func ReadDimensionKeys(ctx context.Context, q db.Queryer) (*DimensionKeys, error) {
	keys := &DimensionKeys{}

	var err error
	if keys.Customer, err = readKeyMap(ctx, q, `SELECT customer_id, customer_code FROM customer`); err != nil {
		return nil, fmt.Errorf("reading customer keys: %w", err)
	}
	if keys.Product, err = readKeyMap(ctx, q, `SELECT product_id, product_code FROM product`); err != nil {
		return nil, fmt.Errorf("reading product keys: %w", err)
	}
	if keys.Shipping, err = readKeyMap(ctx, q, `SELECT shipping_id, ship_mode FROM shipping`); err != nil {
		return nil, fmt.Errorf("reading shipping keys: %w", err)
	}
	if keys.State, err = readKeyMap(ctx, q, `SELECT state_id, state_name FROM state`); err != nil {
		return nil, fmt.Errorf("reading state keys: %w", err)
	}
	if keys.Category, err = readKeyMap(ctx, q, `SELECT category_id, category_name FROM category`); err != nil {
		return nil, fmt.Errorf("reading category keys: %w", err)
	}

	keys.Calendar = make(map[string]int)
	rows, err := q.Query(ctx, `SELECT calendar_id, full_date FROM calendar`)
	if err != nil {
		return nil, fmt.Errorf("reading calendar keys: %w", err)
	}
	for rows.Next() {
		var id int
		var date time.Time
		if err := rows.Scan(&id, &date); err != nil {
			rows.Close()
			return nil, err
		}
		keys.Calendar[date.Format("2006-01-02")] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	keys.Location = make(map[PostalCity]int)
	rows, err = q.Query(ctx, `SELECT location_id, postal_code, city_name FROM location`)
	if err != nil {
		return nil, fmt.Errorf("reading location keys: %w", err)
	}
	for rows.Next() {
		var id int
		var postal, city string
		if err := rows.Scan(&id, &postal, &city); err != nil {
			rows.Close()
			return nil, err
		}
		keys.Location[PostalCity{postal, city}] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	keys.CalendarMonth = make(map[YearMonth]int)
	rows, err = q.Query(ctx, `SELECT calendar_month_id, year_number, calendar_month_number FROM calendar_month`)
	if err != nil {
		return nil, fmt.Errorf("reading calendar_month keys: %w", err)
	}
	for rows.Next() {
		var id, year, month int
		if err := rows.Scan(&id, &year, &month); err != nil {
			rows.Close()
			return nil, err
		}
		keys.CalendarMonth[YearMonth{year, month}] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logging.Debug().
		Int("customers", len(keys.Customer)).
		Int("products", len(keys.Product)).
		Int("calendar_dates", len(keys.Calendar)).
		Int("locations", len(keys.Location)).
		Msg("Read dimension key mappings")

	return keys, nil
}
