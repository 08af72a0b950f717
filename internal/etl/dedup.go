// Package etl implements the transformation-and-loading pipeline: duplicate
// line-item merging, surrogate key derivation, dimension loading, and the
// four fact-table aggregations.
package etl

import (
	"github.com/datakettle/superstore-etl/internal/superstore"
)

type orderProduct struct {
	orderID   string
	productID string
}

// Deduplicate merges rows that repeat the same (order id, product id) pair.
// Merged rows carry summed quantity, sales, and profit, and the
// quantity-weighted average discount across the group. All other fields come
// from the first row encountered. Output order is first-occurrence order and
// the input slice is left untouched.
func Deduplicate(items []superstore.LineItem) []superstore.LineItem {
	out := make([]superstore.LineItem, 0, len(items))
	index := make(map[orderProduct]int, len(items))
	weighted := make(map[orderProduct]float64)
	repDiscount := make(map[orderProduct]float64)
	mergedPairs := make(map[orderProduct]struct{})

	for _, item := range items {
		key := orderProduct{item.OrderID, item.ProductID}
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			weighted[key] = item.Discount * float64(item.Quantity)
			repDiscount[key] = item.Discount
			out = append(out, item)
			continue
		}

		mergedPairs[key] = struct{}{}
		row := &out[i]
		weighted[key] += item.Discount * float64(item.Quantity)
		row.Quantity += item.Quantity
		row.Sales += item.Sales
		row.Profit += item.Profit
		if row.Quantity != 0 {
			row.Discount = weighted[key] / float64(row.Quantity)
		} else {
			// Quantities cancelled out; the weighted average is undefined,
			// so keep the representative row's discount.
			row.Discount = repDiscount[key]
		}
	}

	return out
}

// DuplicatePairCount returns how many (order id, product id) pairs appear
// more than once in the input.
func DuplicatePairCount(items []superstore.LineItem) int {
	counts := make(map[orderProduct]int, len(items))
	for _, item := range items {
		counts[orderProduct{item.OrderID, item.ProductID}]++
	}
	dupes := 0
	for _, n := range counts {
		if n > 1 {
			dupes++
		}
	}
	return dupes
}
