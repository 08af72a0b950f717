package etl

import (
	"github.com/datakettle/superstore-etl/internal/superstore"
)

// CityState is the natural key of a city; city names repeat across states.
type CityState struct {
	City  string
	State string
}

// LevelKeys holds the pre-database surrogate keys for the hierarchy levels
// that the datastore does not assign itself. Keys are sequential integers
// from 1 in first-occurrence order over the cleaned data, so the mapping is
// reproducible for a given input ordering. They cross-reference rows before
// loading and are distinct from the database-assigned primary keys.
type LevelKeys struct {
	SubCategory map[string]int
	Country     map[string]int
	City        map[CityState]int
}

// BuildLevelKeys derives the surrogate key mappings from the cleaned rows.
func BuildLevelKeys(items []superstore.LineItem) LevelKeys {
	keys := LevelKeys{
		SubCategory: make(map[string]int),
		Country:     make(map[string]int),
		City:        make(map[CityState]int),
	}

	for _, item := range items {
		if _, ok := keys.SubCategory[item.SubCategory]; !ok {
			keys.SubCategory[item.SubCategory] = len(keys.SubCategory) + 1
		}
		if _, ok := keys.Country[item.Country]; !ok {
			keys.Country[item.Country] = len(keys.Country) + 1
		}
		city := CityState{City: item.City, State: item.State}
		if _, ok := keys.City[city]; !ok {
			keys.City[city] = len(keys.City) + 1
		}
	}

	return keys
}
