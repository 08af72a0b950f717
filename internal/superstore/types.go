// Package superstore defines the retail order line-item record and reads it
// from the delimited source file.
package superstore

import "time"

// LineItem is one retail order line from the source file. Values are
// immutable once read; cleaning produces new rows.
type LineItem struct {
	RowID        int
	OrderID      string
	OrderDate    time.Time
	ShipDate     time.Time
	ShipMode     string
	CustomerID   string
	CustomerName string
	Segment      string
	Country      string
	City         string
	State        string
	PostalCode   string
	Region       string
	ProductID    string
	Category     string
	SubCategory  string
	ProductName  string
	Sales        float64
	Quantity     int
	Discount     float64
	Profit       float64
}
