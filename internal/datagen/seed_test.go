package datagen

import (
	"path/filepath"
	"testing"

	"github.com/datakettle/superstore-etl/internal/superstore"
)

func TestWriteSuperstoreCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.csv")

	cfg := SeedConfig{Orders: 50, Seed: 42, DuplicateRate: 0.2}
	if err := WriteSuperstoreCSV(path, cfg); err != nil {
		t.Fatalf("WriteSuperstoreCSV failed: %v", err)
	}

	// The generated file must parse with the pipeline's own reader.
	items, err := superstore.ReadFile(path, "utf-8")
	if err != nil {
		t.Fatalf("Generated file failed to parse: %v", err)
	}
	if len(items) < cfg.Orders {
		t.Fatalf("Expected at least %d line items, got %d", cfg.Orders, len(items))
	}

	orders := make(map[string]bool)
	for _, item := range items {
		orders[item.OrderID] = true
		if item.Quantity < 1 {
			t.Errorf("Order %s: quantity %d below 1", item.OrderID, item.Quantity)
		}
		if item.Sales <= 0 {
			t.Errorf("Order %s: sales %f not positive", item.OrderID, item.Sales)
		}
		if item.ShipDate.Before(item.OrderDate) {
			t.Errorf("Order %s: ship date before order date", item.OrderID)
		}
		if item.Country != "United States" {
			t.Errorf("Order %s: unexpected country %s", item.OrderID, item.Country)
		}
	}
	// Order ids collide across iterations only rarely; allow some slack.
	if len(orders) < cfg.Orders/2 {
		t.Errorf("Expected around %d distinct orders, got %d", cfg.Orders, len(orders))
	}
}

func TestWriteSuperstoreCSVReproducible(t *testing.T) {
	dir := t.TempDir()
	cfg := SeedConfig{Orders: 20, Seed: 7, DuplicateRate: 0.1}

	pathA := filepath.Join(dir, "a.csv")
	pathB := filepath.Join(dir, "b.csv")
	if err := WriteSuperstoreCSV(pathA, cfg); err != nil {
		t.Fatalf("WriteSuperstoreCSV failed: %v", err)
	}
	if err := WriteSuperstoreCSV(pathB, cfg); err != nil {
		t.Fatalf("WriteSuperstoreCSV failed: %v", err)
	}

	a, err := superstore.ReadFile(pathA, "utf-8")
	if err != nil {
		t.Fatalf("Failed to read first file: %v", err)
	}
	b, err := superstore.ReadFile(pathB, "utf-8")
	if err != nil {
		t.Fatalf("Failed to read second file: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("Same seed produced different row counts: %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Same seed produced different row %d: %+v != %+v", i, a[i], b[i])
		}
	}
}

func TestWriteSuperstoreCSVRegionsConsistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.csv")
	if err := WriteSuperstoreCSV(path, SeedConfig{Orders: 100, Seed: 3, DuplicateRate: 0}); err != nil {
		t.Fatalf("WriteSuperstoreCSV failed: %v", err)
	}

	items, err := superstore.ReadFile(path, "utf-8")
	if err != nil {
		t.Fatalf("Generated file failed to parse: %v", err)
	}

	// Every state must map to exactly one region.
	stateRegion := make(map[string]string)
	for _, item := range items {
		if prev, ok := stateRegion[item.State]; ok && prev != item.Region {
			t.Errorf("State %s appears in regions %s and %s", item.State, prev, item.Region)
		}
		stateRegion[item.State] = item.Region
	}
}
