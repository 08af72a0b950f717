package etl

// LostValue is the revenue given up to the discount: the difference between
// the undiscounted full price and the recorded sales amount. A discount at or
// above 100% makes the full price undefined, and the lost value is defined as
// zero for that case.
func LostValue(sales, discount float64) float64 {
	if discount >= 1 {
		return 0
	}
	fullPrice := sales / (1 - discount)
	return fullPrice - sales
}
