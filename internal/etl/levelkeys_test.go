package etl

import (
	"testing"

	"github.com/datakettle/superstore-etl/internal/superstore"
)

func TestBuildLevelKeysSequentialFromOne(t *testing.T) {
	items := []superstore.LineItem{
		{SubCategory: "Chairs", Country: "United States", City: "Seattle", State: "Washington"},
		{SubCategory: "Tables", Country: "United States", City: "Portland", State: "Oregon"},
		{SubCategory: "Chairs", Country: "Canada", City: "Seattle", State: "Washington"},
		{SubCategory: "Phones", Country: "United States", City: "Austin", State: "Texas"},
	}

	keys := BuildLevelKeys(items)

	if keys.SubCategory["Chairs"] != 1 || keys.SubCategory["Tables"] != 2 || keys.SubCategory["Phones"] != 3 {
		t.Errorf("Sub-category keys not in first-occurrence order: %v", keys.SubCategory)
	}
	if keys.Country["United States"] != 1 || keys.Country["Canada"] != 2 {
		t.Errorf("Country keys not in first-occurrence order: %v", keys.Country)
	}
	if keys.City[CityState{"Seattle", "Washington"}] != 1 ||
		keys.City[CityState{"Portland", "Oregon"}] != 2 ||
		keys.City[CityState{"Austin", "Texas"}] != 3 {
		t.Errorf("City keys not in first-occurrence order: %v", keys.City)
	}
}

func TestBuildLevelKeysBijective(t *testing.T) {
	items := []superstore.LineItem{
		{SubCategory: "Chairs", Country: "United States", City: "Seattle", State: "Washington"},
		{SubCategory: "Tables", Country: "United States", City: "Portland", State: "Oregon"},
		{SubCategory: "Binders", Country: "Canada", City: "Springfield", State: "Illinois"},
		{SubCategory: "Paper", Country: "Mexico", City: "Springfield", State: "Ohio"},
	}

	keys := BuildLevelKeys(items)

	seen := make(map[int]bool)
	for _, k := range keys.SubCategory {
		if seen[k] {
			t.Fatalf("Duplicate sub-category key %d", k)
		}
		seen[k] = true
	}

	// Same city name in two states gets two distinct keys.
	a := keys.City[CityState{"Springfield", "Illinois"}]
	b := keys.City[CityState{"Springfield", "Ohio"}]
	if a == 0 || b == 0 || a == b {
		t.Errorf("Springfield in two states should get distinct keys, got %d and %d", a, b)
	}
}

func TestBuildLevelKeysDeterministic(t *testing.T) {
	items := []superstore.LineItem{
		{SubCategory: "Chairs", Country: "United States", City: "Seattle", State: "Washington"},
		{SubCategory: "Tables", Country: "Canada", City: "Portland", State: "Oregon"},
		{SubCategory: "Chairs", Country: "United States", City: "Austin", State: "Texas"},
	}

	first := BuildLevelKeys(items)
	second := BuildLevelKeys(items)

	for name, k := range first.SubCategory {
		if second.SubCategory[name] != k {
			t.Errorf("Sub-category %s: %d != %d across runs", name, k, second.SubCategory[name])
		}
	}
	for name, k := range first.Country {
		if second.Country[name] != k {
			t.Errorf("Country %s: %d != %d across runs", name, k, second.Country[name])
		}
	}
	for city, k := range first.City {
		if second.City[city] != k {
			t.Errorf("City %v: %d != %d across runs", city, k, second.City[city])
		}
	}
}

func TestBuildLevelKeysEmpty(t *testing.T) {
	keys := BuildLevelKeys(nil)
	if len(keys.SubCategory) != 0 || len(keys.Country) != 0 || len(keys.City) != 0 {
		t.Error("Expected empty key maps for empty input")
	}
}
