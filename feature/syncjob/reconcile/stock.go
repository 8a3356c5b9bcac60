package reconcile

import (
	"catalog-sync/feature/ers"

	"github.com/shopspring/decimal"
)

// Aggregate sums stock per product over the given warehouses. Balances reported
// without a warehouse count as belonging to the request. Totals are floored and
// negative totals become zero. Products without balances are absent.
func Aggregate(entries []ers.StockEntry, warehouseIDs []int64) map[string]int {
	allowed := make(map[int64]struct{}, len(warehouseIDs))
	for _, id := range warehouseIDs {
		allowed[id] = struct{}{}
	}

	sums := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.ProductID == "" {
			continue
		}
		if e.WarehouseID != 0 {
			if _, ok := allowed[e.WarehouseID]; !ok {
				continue
			}
		}
		sums[e.ProductID] = sums[e.ProductID].Add(e.Quantity)
	}

	out := make(map[string]int, len(sums))
	for id, sum := range sums {
		n := sum.Floor().IntPart()
		if n < 0 {
			n = 0
		}
		out[id] = int(n)
	}
	return out
}
