package etl

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/datakettle/superstore-etl/internal/db"
	"github.com/datakettle/superstore-etl/internal/logging"
	"github.com/datakettle/superstore-etl/internal/superstore"
)

// DimensionCounts maps dimension table name to rows loaded.
type DimensionCounts map[string]int

// LoadDimensions loads all dimension tables in dependency order. Each step
// is committed before the next one reads its generated keys back. Any
// failure aborts the remaining steps.
func LoadDimensions(ctx context.Context, q db.Queryer, items []superstore.LineItem, keys LevelKeys) (DimensionCounts, error) {
	logging.Info().Msg("Loading dimension tables")
	counts := make(DimensionCounts)

	if err := loadCalendar(ctx, q, items, counts); err != nil {
		return counts, fmt.Errorf("calendar dimension: %w", err)
	}
	if err := loadCustomer(ctx, q, items, counts); err != nil {
		return counts, fmt.Errorf("customer dimension: %w", err)
	}
	if err := loadGeography(ctx, q, items, keys, counts); err != nil {
		return counts, fmt.Errorf("geography dimensions: %w", err)
	}
	if err := loadShipping(ctx, q, items, counts); err != nil {
		return counts, fmt.Errorf("shipping dimension: %w", err)
	}
	if err := loadProduct(ctx, q, items, keys, counts); err != nil {
		return counts, fmt.Errorf("product dimensions: %w", err)
	}

	logging.Info().Msg("All dimension tables loaded")
	return counts, nil
}

func loadCalendar(ctx context.Context, q db.Queryer, items []superstore.LineItem, counts DimensionCounts) error {
	// Distinct calendar dates are the union of order and ship dates.
	dateSet := make(map[time.Time]struct{})
	for _, item := range items {
		dateSet[dateOnly(item.OrderDate)] = struct{}{}
		dateSet[dateOnly(item.ShipDate)] = struct{}{}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// Year ids are sequential by sorted year.
	yearSet := make(map[int]struct{})
	for _, d := range dates {
		yearSet[d.Year()] = struct{}{}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)
	yearID := make(map[int]int, len(years))
	for i, y := range years {
		yearID[y] = i + 1
	}

	// One calendar_month row per distinct (year, month), chronological.
	type yearMonth struct {
		year  int
		month int
	}
	monthSeen := make(map[yearMonth]struct{})
	batch := &pgx.Batch{}
	monthCount := 0
	for _, d := range dates {
		ym := yearMonth{d.Year(), int(d.Month())}
		if _, ok := monthSeen[ym]; ok {
			continue
		}
		monthSeen[ym] = struct{}{}
		batch.Queue(`
            INSERT INTO calendar_month (calendar_month_number, calendar_month_name, year_id, year_number)
            VALUES ($1, $2, $3, $4)
        `, ym.month, time.Month(ym.month).String(), yearID[ym.year], ym.year)
		monthCount++
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return fmt.Errorf("inserting calendar_month: %w", err)
	}
	counts["calendar_month"] = monthCount
	logging.Info().Int("count", monthCount).Msg("Loaded calendar_month dimension")

	// Read the generated month ids back to reference them from calendar.
	rows, err := q.Query(ctx, `SELECT calendar_month_id, year_number, calendar_month_number FROM calendar_month`)
	if err != nil {
		return fmt.Errorf("reading calendar_month keys: %w", err)
	}
	monthIDs := make(map[yearMonth]int)
	for rows.Next() {
		var id, year, month int
		if err := rows.Scan(&id, &year, &month); err != nil {
			rows.Close()
			return err
		}
		monthIDs[yearMonth{year, month}] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	batch = &pgx.Batch{}
	for _, d := range dates {
		monthID, ok := monthIDs[yearMonth{d.Year(), int(d.Month())}]
		if !ok {
			return fmt.Errorf("no calendar_month row for %d-%02d", d.Year(), d.Month())
		}
		batch.Queue(`
            INSERT INTO calendar (full_date, year_id, year_number, month_id, month_number, month_name, day_id, day_number)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        `, d, yearID[d.Year()], d.Year(), monthID, int(d.Month()), d.Month().String(), d.Day(), d.Day())
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return fmt.Errorf("inserting calendar: %w", err)
	}
	counts["calendar"] = len(dates)
	logging.Info().Int("count", len(dates)).Msg("Loaded calendar dimension")
	return nil
}

func loadCustomer(ctx context.Context, q db.Queryer, items []superstore.LineItem, counts DimensionCounts) error {
	type customer struct {
		code    string
		name    string
		segment string
	}
	seen := make(map[customer]struct{})
	batch := &pgx.Batch{}
	n := 0
	for _, item := range items {
		c := customer{item.CustomerID, item.CustomerName, item.Segment}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		batch.Queue(`
            INSERT INTO customer (customer_code, customer_name, segment)
            VALUES ($1, $2, $3)
        `, c.code, c.name, c.segment)
		n++
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return err
	}
	counts["customer"] = n
	logging.Info().Int("count", n).Msg("Loaded customer dimension")
	return nil
}

func loadGeography(ctx context.Context, q db.Queryer, items []superstore.LineItem, keys LevelKeys, counts DimensionCounts) error {
	// Region
	type regionKey struct {
		region  string
		country string
	}
	regionSeen := make(map[regionKey]struct{})
	batch := &pgx.Batch{}
	n := 0
	for _, item := range items {
		rk := regionKey{item.Region, item.Country}
		if _, ok := regionSeen[rk]; ok {
			continue
		}
		regionSeen[rk] = struct{}{}
		batch.Queue(`
            INSERT INTO region (region_name, country_id, country_name)
            VALUES ($1, $2, $3)
        `, rk.region, keys.Country[rk.country], rk.country)
		n++
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return fmt.Errorf("inserting region: %w", err)
	}
	counts["region"] = n
	logging.Info().Int("count", n).Msg("Loaded region dimension")

	regionIDs, err := readKeyMap(ctx, q, `SELECT region_id, region_name FROM region`)
	if err != nil {
		return fmt.Errorf("reading region keys: %w", err)
	}

	// State
	type stateKey struct {
		state   string
		region  string
		country string
	}
	stateSeen := make(map[stateKey]struct{})
	batch = &pgx.Batch{}
	n = 0
	for _, item := range items {
		sk := stateKey{item.State, item.Region, item.Country}
		if _, ok := stateSeen[sk]; ok {
			continue
		}
		stateSeen[sk] = struct{}{}
		regionID, ok := regionIDs[sk.region]
		if !ok {
			return fmt.Errorf("no region row for %q", sk.region)
		}
		batch.Queue(`
            INSERT INTO state (state_name, region_id, region_name, country_id, country_name)
            VALUES ($1, $2, $3, $4, $5)
        `, sk.state, regionID, sk.region, keys.Country[sk.country], sk.country)
		n++
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return fmt.Errorf("inserting state: %w", err)
	}
	counts["state"] = n
	logging.Info().Int("count", n).Msg("Loaded state dimension")

	stateIDs, err := readKeyMap(ctx, q, `SELECT state_id, state_name FROM state`)
	if err != nil {
		return fmt.Errorf("reading state keys: %w", err)
	}

	// Location
	type locationKey struct {
		postal  string
		city    string
		state   string
		country string
		region  string
	}
	locationSeen := make(map[locationKey]struct{})
	batch = &pgx.Batch{}
	n = 0
	for _, item := range items {
		lk := locationKey{item.PostalCode, item.City, item.State, item.Country, item.Region}
		if _, ok := locationSeen[lk]; ok {
			continue
		}
		locationSeen[lk] = struct{}{}
		stateID, ok := stateIDs[lk.state]
		if !ok {
			return fmt.Errorf("no state row for %q", lk.state)
		}
		regionID, ok := regionIDs[lk.region]
		if !ok {
			return fmt.Errorf("no region row for %q", lk.region)
		}
		batch.Queue(`
            INSERT INTO location (location_code, country_id, country_name, state_id, state_name, city_id, city_name, postal_code, region_id, region_name)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        `, lk.postal, keys.Country[lk.country], lk.country, stateID, lk.state,
			keys.City[CityState{lk.city, lk.state}], lk.city, lk.postal, regionID, lk.region)
		n++
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return fmt.Errorf("inserting location: %w", err)
	}
	counts["location"] = n
	logging.Info().Int("count", n).Msg("Loaded location dimension")
	return nil
}

func loadShipping(ctx context.Context, q db.Queryer, items []superstore.LineItem, counts DimensionCounts) error {
	seen := make(map[string]struct{})
	batch := &pgx.Batch{}
	n := 0
	for _, item := range items {
		if _, ok := seen[item.ShipMode]; ok {
			continue
		}
		seen[item.ShipMode] = struct{}{}
		batch.Queue(`INSERT INTO shipping (ship_mode) VALUES ($1)`, item.ShipMode)
		n++
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return err
	}
	counts["shipping"] = n
	logging.Info().Int("count", n).Msg("Loaded shipping dimension")
	return nil
}

func loadProduct(ctx context.Context, q db.Queryer, items []superstore.LineItem, keys LevelKeys, counts DimensionCounts) error {
	// Category
	seen := make(map[string]struct{})
	batch := &pgx.Batch{}
	n := 0
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		batch.Queue(`INSERT INTO category (category_name) VALUES ($1)`, item.Category)
		n++
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	counts["category"] = n
	logging.Info().Int("count", n).Msg("Loaded category dimension")

	categoryIDs, err := readKeyMap(ctx, q, `SELECT category_id, category_name FROM category`)
	if err != nil {
		return fmt.Errorf("reading category keys: %w", err)
	}

	// Product
	type productKey struct {
		code        string
		name        string
		category    string
		subCategory string
	}
	productSeen := make(map[productKey]struct{})
	batch = &pgx.Batch{}
	n = 0
	for _, item := range items {
		pk := productKey{item.ProductID, item.ProductName, item.Category, item.SubCategory}
		if _, ok := productSeen[pk]; ok {
			continue
		}
		productSeen[pk] = struct{}{}
		categoryID, ok := categoryIDs[pk.category]
		if !ok {
			return fmt.Errorf("no category row for %q", pk.category)
		}
		batch.Queue(`
            INSERT INTO product (product_code, product_name, category_id, category_name, sub_category_id, sub_category_name)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, pk.code, pk.name, categoryID, pk.category, keys.SubCategory[pk.subCategory], pk.subCategory)
		n++
	}
	if err := flushBatch(ctx, q, batch); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	counts["product"] = n
	logging.Info().Int("count", n).Msg("Loaded product dimension")
	return nil
}

// readKeyMap reads a (id, natural key) two-column query into a map.
func readKeyMap(ctx context.Context, q db.Queryer, sql string) (map[string]int, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]int)
	for rows.Next() {
		var id int
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, err
		}
		m[key] = id
	}
	return m, rows.Err()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
