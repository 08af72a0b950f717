package etl

import (
	"math"
	"testing"
	"time"

	"github.com/datakettle/superstore-etl/internal/superstore"
)

func testItem(orderID, productID string, sales float64, quantity int, discount, profit float64) superstore.LineItem {
	return superstore.LineItem{
		OrderID:     orderID,
		OrderDate:   time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
		ShipDate:    time.Date(2023, 6, 18, 0, 0, 0, 0, time.UTC),
		ShipMode:    "Standard Class",
		CustomerID:  "AA-10001",
		Country:     "United States",
		City:        "Seattle",
		State:       "Washington",
		PostalCode:  "98103",
		Region:      "West",
		ProductID:   productID,
		Category:    "Furniture",
		SubCategory: "Chairs",
		Sales:       sales,
		Quantity:    quantity,
		Discount:    discount,
		Profit:      profit,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDeduplicateMergesDuplicatePairs(t *testing.T) {
	items := []superstore.LineItem{
		testItem("O-1", "P-1", 100, 2, 0.1, 10),
		testItem("O-1", "P-1", 50, 3, 0.2, 5),
	}

	out := Deduplicate(items)
	if len(out) != 1 {
		t.Fatalf("Expected 1 merged row, got %d", len(out))
	}

	row := out[0]
	if !almostEqual(row.Sales, 150) {
		t.Errorf("Expected sales 150, got %f", row.Sales)
	}
	if row.Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", row.Quantity)
	}
	if !almostEqual(row.Profit, 15) {
		t.Errorf("Expected profit 15, got %f", row.Profit)
	}

	// Weighted average: (0.1*2 + 0.2*3) / 5 = 0.16
	if !almostEqual(row.Discount, 0.16) {
		t.Errorf("Expected discount 0.16, got %f", row.Discount)
	}
}

func TestDeduplicateKeepsDistinctPairs(t *testing.T) {
	items := []superstore.LineItem{
		testItem("O-1", "P-1", 100, 2, 0, 10),
		testItem("O-1", "P-2", 50, 1, 0, 5),
		testItem("O-2", "P-1", 25, 1, 0, 2),
	}

	out := Deduplicate(items)
	if len(out) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(out))
	}
}

func TestDeduplicatePreservesOrder(t *testing.T) {
	items := []superstore.LineItem{
		testItem("O-3", "P-1", 10, 1, 0, 1),
		testItem("O-1", "P-1", 10, 1, 0, 1),
		testItem("O-3", "P-1", 10, 1, 0, 1),
		testItem("O-2", "P-1", 10, 1, 0, 1),
	}

	out := Deduplicate(items)
	want := []string{"O-3", "O-1", "O-2"}
	if len(out) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(out))
	}
	for i, id := range want {
		if out[i].OrderID != id {
			t.Errorf("Row %d: expected order %s, got %s", i, id, out[i].OrderID)
		}
	}
}

func TestDeduplicatePreservesTotals(t *testing.T) {
	items := []superstore.LineItem{
		testItem("O-1", "P-1", 100, 2, 0.1, 10),
		testItem("O-1", "P-1", 50, 1, 0.3, -5),
		testItem("O-1", "P-2", 75, 4, 0, 20),
		testItem("O-2", "P-1", 30, 1, 0.5, 3),
	}

	var wantSales, wantProfit float64
	wantQuantity := 0
	for _, item := range items {
		wantSales += item.Sales
		wantProfit += item.Profit
		wantQuantity += item.Quantity
	}

	var gotSales, gotProfit float64
	gotQuantity := 0
	for _, row := range Deduplicate(items) {
		gotSales += row.Sales
		gotProfit += row.Profit
		gotQuantity += row.Quantity
	}

	if !almostEqual(gotSales, wantSales) {
		t.Errorf("Sales total changed: expected %f, got %f", wantSales, gotSales)
	}
	if !almostEqual(gotProfit, wantProfit) {
		t.Errorf("Profit total changed: expected %f, got %f", wantProfit, gotProfit)
	}
	if gotQuantity != wantQuantity {
		t.Errorf("Quantity total changed: expected %d, got %d", wantQuantity, gotQuantity)
	}
}

func TestDeduplicateZeroQuantityKeepsRepresentativeDiscount(t *testing.T) {
	items := []superstore.LineItem{
		testItem("O-1", "P-1", 100, 2, 0.25, 10),
		testItem("O-1", "P-1", -100, -2, 0.5, -10),
	}

	out := Deduplicate(items)
	if len(out) != 1 {
		t.Fatalf("Expected 1 merged row, got %d", len(out))
	}
	if out[0].Quantity != 0 {
		t.Fatalf("Expected quantity 0, got %d", out[0].Quantity)
	}
	if !almostEqual(out[0].Discount, 0.25) {
		t.Errorf("Expected representative discount 0.25, got %f", out[0].Discount)
	}
}

func TestDeduplicateDoesNotModifyInput(t *testing.T) {
	items := []superstore.LineItem{
		testItem("O-1", "P-1", 100, 2, 0.1, 10),
		testItem("O-1", "P-1", 50, 3, 0.2, 5),
	}

	Deduplicate(items)

	if !almostEqual(items[0].Sales, 100) || items[0].Quantity != 2 {
		t.Error("Deduplicate modified the input slice")
	}
}

func TestDuplicatePairCount(t *testing.T) {
	items := []superstore.LineItem{
		testItem("O-1", "P-1", 100, 2, 0, 10),
		testItem("O-1", "P-1", 50, 1, 0, 5),
		testItem("O-1", "P-2", 75, 4, 0, 20),
		testItem("O-2", "P-1", 30, 1, 0, 3),
		testItem("O-2", "P-1", 30, 1, 0, 3),
		testItem("O-2", "P-1", 30, 1, 0, 3),
	}

	if got := DuplicatePairCount(items); got != 2 {
		t.Errorf("Expected 2 duplicate pairs, got %d", got)
	}
	if got := DuplicatePairCount(nil); got != 0 {
		t.Errorf("Expected 0 duplicate pairs for empty input, got %d", got)
	}
}
