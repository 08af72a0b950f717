package datagen

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/datakettle/superstore-etl/internal/logging"
)

// SeedConfig controls synthetic source file generation.
type SeedConfig struct {
	// Orders is the number of orders to generate.
	Orders int

	// Seed makes the output reproducible when non-zero.
	Seed uint64

	// DuplicateRate is the fraction of line items that are emitted twice
	// with the same (order id, product id) pair, so the deduplicator has
	// work to do. 0.05 means roughly one duplicate per twenty lines.
	DuplicateRate float64
}

// DefaultSeedConfig returns default seed generation settings.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Orders:        1000,
		DuplicateRate: 0.05,
	}
}

var segments = []string{"Consumer", "Corporate", "Home Office"}

var shipModes = []string{"Standard Class", "Second Class", "First Class", "Same Day"}

// Category to sub-categories, Superstore style.
var catalog = map[string][]string{
	"Furniture":       {"Bookcases", "Chairs", "Furnishings", "Tables"},
	"Office Supplies": {"Appliances", "Art", "Binders", "Envelopes", "Labels", "Paper", "Storage", "Supplies"},
	"Technology":      {"Accessories", "Copiers", "Machines", "Phones"},
}

var categories = []string{"Furniture", "Office Supplies", "Technology"}

// Region to states. A state always stays in one region so the geography
// hierarchy loads cleanly.
var regions = map[string][]string{
	"East":    {"New York", "Pennsylvania", "Ohio", "Massachusetts"},
	"West":    {"California", "Washington", "Oregon", "Arizona"},
	"Central": {"Texas", "Illinois", "Michigan", "Minnesota"},
	"South":   {"Florida", "Georgia", "Kentucky", "Virginia"},
}

var regionNames = []string{"East", "West", "Central", "South"}

type seedCustomer struct {
	id      string
	name    string
	segment string
}

type seedProduct struct {
	id          string
	name        string
	category    string
	subCategory string
}

type seedLocation struct {
	country string
	city    string
	state   string
	postal  string
	region  string
}

// WriteSuperstoreCSV generates a Superstore-shaped CSV source file.
func WriteSuperstoreCSV(path string, cfg SeedConfig) error {
	faker := NewFaker()
	if cfg.Seed != 0 {
		faker = NewFakerWithSeed(cfg.Seed)
	}

	customers := make([]seedCustomer, max(cfg.Orders/5, 1))
	for i := range customers {
		name := faker.Name()
		customers[i] = seedCustomer{
			id:      fmt.Sprintf("%s-%s", faker.LetterN(2), faker.DigitN(5)),
			name:    name,
			segment: Choose(faker, segments),
		}
	}

	products := make([]seedProduct, max(cfg.Orders/3, 1))
	for i := range products {
		category := Choose(faker, categories)
		products[i] = seedProduct{
			id:          fmt.Sprintf("%s-%s-%s", category[:3], faker.LetterN(2), faker.DigitN(7)),
			name:        faker.ProductName(),
			category:    category,
			subCategory: Choose(faker, catalog[category]),
		}
	}

	locations := make([]seedLocation, max(cfg.Orders/10, 1))
	for i := range locations {
		region := Choose(faker, regionNames)
		locations[i] = seedLocation{
			country: "United States",
			city:    faker.City(),
			state:   Choose(faker, regions[region]),
			postal:  faker.Zip(),
			region:  region,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create seed file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Row ID", "Order ID", "Order Date", "Ship Date", "Ship Mode",
		"Customer ID", "Customer Name", "Segment",
		"Country", "City", "State", "Postal Code", "Region",
		"Product ID", "Category", "Sub-Category", "Product Name",
		"Sales", "Quantity", "Discount", "Profit",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	rowID := 0
	lines := 0
	for i := 0; i < cfg.Orders; i++ {
		orderID := fmt.Sprintf("US-%d-%s", 2020+faker.Int(0, 3), faker.DigitN(6))
		orderDate := faker.DateRange(start, end)
		shipDate := orderDate.AddDate(0, 0, faker.Int(1, 7))
		customer := Choose(faker, customers)
		location := Choose(faker, locations)
		shipMode := Choose(faker, shipModes)

		numItems := faker.Int(1, 5)
		for j := 0; j < numItems; j++ {
			product := Choose(faker, products)
			repeat := 1
			if faker.Float64(0, 1) < cfg.DuplicateRate {
				repeat = 2
			}
			for k := 0; k < repeat; k++ {
				rowID++
				quantity := faker.Int(1, 10)
				sales := faker.Float64(5, 2000)
				discount := Choose(faker, []float64{0, 0, 0, 0.1, 0.2, 0.3, 0.5})
				profit := sales * faker.Float64(-0.2, 0.4)

				record := []string{
					strconv.Itoa(rowID),
					orderID,
					orderDate.Format("1/2/2006"),
					shipDate.Format("1/2/2006"),
					shipMode,
					customer.id,
					customer.name,
					customer.segment,
					location.country,
					location.city,
					location.state,
					location.postal,
					location.region,
					product.id,
					product.category,
					product.subCategory,
					product.name,
					strconv.FormatFloat(sales, 'f', 2, 64),
					strconv.Itoa(quantity),
					strconv.FormatFloat(discount, 'f', 2, 64),
					strconv.FormatFloat(profit, 'f', 2, 64),
				}
				if err := w.Write(record); err != nil {
					return err
				}
				lines++
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}

	logging.Info().
		Str("file", path).
		Int("orders", cfg.Orders).
		Int("lines", lines).
		Msg("Generated seed file")
	return nil
}
