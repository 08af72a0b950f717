package superstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/datakettle/superstore-etl/internal/logging"
)

// Column names expected in the source file header.
var requiredColumns = []string{
	"Order ID", "Order Date", "Ship Date", "Ship Mode",
	"Customer ID", "Customer Name", "Segment",
	"Country", "City", "State", "Postal Code", "Region",
	"Product ID", "Category", "Sub-Category", "Product Name",
	"Sales", "Quantity", "Discount", "Profit",
}

var dateLayouts = []string{"1/2/2006", "2006-01-02", "01/02/2006"}

// ReadFile reads the whole source file into memory. Rows that fail to parse
// are logged and dropped; the read itself only fails on I/O or header
// problems.
func ReadFile(path, encoding string) ([]LineItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if encoding == "windows-1252" {
		reader = transform.NewReader(f, charmap.Windows1252.NewDecoder())
	}

	items, err := Read(reader)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("file", path).
		Int("rows", len(items)).
		Msg("Read source file")

	return items, nil
}

// Read parses line items from an already-decoded CSV stream.
func Read(r io.Reader) ([]LineItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("source file is missing column %q", name)
		}
	}

	var items []LineItem
	line := 1
	dropped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line+1, err)
		}
		line++

		item, err := parseRecord(cols, record)
		if err != nil {
			dropped++
			logging.Warn().
				Int("line", line).
				Str("order_id", field(cols, record, "Order ID")).
				Str("product_id", field(cols, record, "Product ID")).
				Err(err).
				Msg("Dropping unparseable row")
			continue
		}
		item.RowID = line
		items = append(items, item)
	}

	if dropped > 0 {
		logging.Warn().Int("dropped", dropped).Msg("Dropped unparseable rows")
	}

	return items, nil
}

func parseRecord(cols map[string]int, record []string) (LineItem, error) {
	get := func(name string) string { return field(cols, record, name) }

	orderDate, err := parseDate(get("Order Date"))
	if err != nil {
		return LineItem{}, fmt.Errorf("order date: %w", err)
	}
	shipDate, err := parseDate(get("Ship Date"))
	if err != nil {
		return LineItem{}, fmt.Errorf("ship date: %w", err)
	}
	sales, err := strconv.ParseFloat(get("Sales"), 64)
	if err != nil {
		return LineItem{}, fmt.Errorf("sales: %w", err)
	}
	quantity, err := strconv.Atoi(get("Quantity"))
	if err != nil {
		return LineItem{}, fmt.Errorf("quantity: %w", err)
	}
	discount, err := strconv.ParseFloat(get("Discount"), 64)
	if err != nil {
		return LineItem{}, fmt.Errorf("discount: %w", err)
	}
	profit, err := strconv.ParseFloat(get("Profit"), 64)
	if err != nil {
		return LineItem{}, fmt.Errorf("profit: %w", err)
	}

	return LineItem{
		OrderID:      get("Order ID"),
		OrderDate:    orderDate,
		ShipDate:     shipDate,
		ShipMode:     get("Ship Mode"),
		CustomerID:   get("Customer ID"),
		CustomerName: get("Customer Name"),
		Segment:      get("Segment"),
		Country:      get("Country"),
		City:         get("City"),
		State:        get("State"),
		PostalCode:   get("Postal Code"),
		Region:       get("Region"),
		ProductID:    get("Product ID"),
		Category:     get("Category"),
		SubCategory:  get("Sub-Category"),
		ProductName:  get("Product Name"),
		Sales:        sales,
		Quantity:     quantity,
		Discount:     discount,
		Profit:       profit,
	}, nil
}

func field(cols map[string]int, record []string, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
