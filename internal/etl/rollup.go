package etl

import (
	"sort"

	"github.com/datakettle/superstore-etl/internal/superstore"
)

// OrderRollup is the order-grain aggregate. Shared order attributes (dates,
// customer, location, ship mode) come from the first line item by stable
// input order; InconsistentFields names any shared attribute on which the
// order's items disagree.
type OrderRollup struct {
	OrderID            string
	First              superstore.LineItem
	Sales              float64
	Quantity           int
	Profit             float64
	LostValue          float64
	InconsistentFields []string
}

// RollupOrders aggregates cleaned line items to one rollup per order id, in
// first-occurrence order.
func RollupOrders(items []superstore.LineItem) []OrderRollup {
	out := make([]OrderRollup, 0)
	index := make(map[string]int)

	for _, item := range items {
		i, seen := index[item.OrderID]
		if !seen {
			index[item.OrderID] = len(out)
			out = append(out, OrderRollup{OrderID: item.OrderID, First: item})
			i = len(out) - 1
		}
		r := &out[i]
		r.Sales += item.Sales
		r.Quantity += item.Quantity
		r.Profit += item.Profit
		r.LostValue += LostValue(item.Sales, item.Discount)
		if seen {
			checkSharedAttrs(r, item)
		}
	}

	return out
}

func checkSharedAttrs(r *OrderRollup, item superstore.LineItem) {
	add := func(name string) {
		for _, f := range r.InconsistentFields {
			if f == name {
				return
			}
		}
		r.InconsistentFields = append(r.InconsistentFields, name)
	}
	if !item.OrderDate.Equal(r.First.OrderDate) {
		add("order_date")
	}
	if !item.ShipDate.Equal(r.First.ShipDate) {
		add("ship_date")
	}
	if item.CustomerID != r.First.CustomerID {
		add("customer")
	}
	if item.PostalCode != r.First.PostalCode || item.City != r.First.City {
		add("location")
	}
	if item.ShipMode != r.First.ShipMode {
		add("ship_mode")
	}
}

// YearMonthState is the grain key of the monthly-by-state fact.
type YearMonthState struct {
	Year  int
	Month int
	State string
}

// MonthlyStateRollup is one month of activity in one state.
type MonthlyStateRollup struct {
	Key       YearMonthState
	Sales     float64
	Quantity  int
	Profit    float64
	LostValue float64
}

// RollupMonthlyByState aggregates sales, quantity, and profit by
// (year, month, state) of the order date. Lost value is accumulated in an
// independent per-row pass over the same key and joined to the aggregate.
func RollupMonthlyByState(items []superstore.LineItem) []MonthlyStateRollup {
	out := make([]MonthlyStateRollup, 0)
	index := make(map[YearMonthState]int)

	for _, item := range items {
		key := YearMonthState{
			Year:  item.OrderDate.Year(),
			Month: int(item.OrderDate.Month()),
			State: item.State,
		}
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, MonthlyStateRollup{Key: key})
			i = len(out) - 1
		}
		r := &out[i]
		r.Sales += item.Sales
		r.Quantity += item.Quantity
		r.Profit += item.Profit
	}

	// Independent pass for the lost-value measure.
	lost := make(map[YearMonthState]float64)
	for _, item := range items {
		key := YearMonthState{
			Year:  item.OrderDate.Year(),
			Month: int(item.OrderDate.Month()),
			State: item.State,
		}
		lost[key] += LostValue(item.Sales, item.Discount)
	}
	for i := range out {
		out[i].LostValue = lost[out[i].Key]
	}

	return out
}

// CategoryStateMonth is the grain key of the product-performance fact.
type CategoryStateMonth struct {
	Category string
	State    string
	Year     int
	Month    int
}

// ProductPerformanceRollup is one month of one category's activity in one
// state. CumulativeProfit is the running total of profit for the
// (category, state) pair across months in chronological order.
type ProductPerformanceRollup struct {
	Key              CategoryStateMonth
	Sales            float64
	Profit           float64
	Quantity         int
	CumulativeProfit float64
}

// RollupProductPerformance aggregates by (category, state, year, month) and
// computes the cumulative profit per (category, state). The rollups are
// returned sorted by (category, state, year, month); the running total is
// only meaningful in that order, so the sort happens here rather than being
// left to the caller.
func RollupProductPerformance(items []superstore.LineItem) []ProductPerformanceRollup {
	index := make(map[CategoryStateMonth]int)
	out := make([]ProductPerformanceRollup, 0)

	for _, item := range items {
		key := CategoryStateMonth{
			Category: item.Category,
			State:    item.State,
			Year:     item.OrderDate.Year(),
			Month:    int(item.OrderDate.Month()),
		}
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, ProductPerformanceRollup{Key: key})
			i = len(out) - 1
		}
		r := &out[i]
		r.Sales += item.Sales
		r.Profit += item.Profit
		r.Quantity += item.Quantity
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.State != b.State {
			return a.State < b.State
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	// Sequential scan in sorted order with per-(category, state) state.
	type categoryState struct {
		category string
		state    string
	}
	running := make(map[categoryState]float64)
	for i := range out {
		cs := categoryState{out[i].Key.Category, out[i].Key.State}
		running[cs] += out[i].Profit
		out[i].CumulativeProfit = running[cs]
	}

	return out
}
