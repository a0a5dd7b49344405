package reporting

import (
	"sort"

	"github.com/tillpoint/tillpoint/internal/sales"
)

// ProductPerformance accumulates per-product sales across a sale set.
type ProductPerformance struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// TotalRevenue sums the sale totals.
func TotalRevenue(saleList []sales.Sale) float64 {
	var total float64
	for _, sale := range saleList {
		total += sale.TotalAmount
	}
	return total
}

// TotalItemsSold sums item quantities across all sales.
func TotalItemsSold(saleList []sales.Sale) int {
	count := 0
	for _, sale := range saleList {
		count += sale.ItemCount()
	}
	return count
}

// AverageOrderValue divides revenue by the transaction count, flooring the
// denominator at 1 so an empty sale set yields 0 rather than NaN.
func AverageOrderValue(saleList []sales.Sale) float64 {
	count := len(saleList)
	if count < 1 {
		count = 1
	}
	return TotalRevenue(saleList) / float64(count)
}

// GrowthPercent compares the current period against the previous one.
// A zero previous period reports 100 when the current period has any
// revenue, 0 when both are zero.
func GrowthPercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// TopProducts ranks products by revenue descending, ties broken by product ID
// ascending for determinism. n <= 0 returns the full ranking.
func TopProducts(saleList []sales.Sale, n int) []ProductPerformance {
	byProduct := make(map[string]*ProductPerformance)
	order := []string{}
	for _, sale := range saleList {
		for _, item := range sale.Items {
			perf, ok := byProduct[item.ProductID]
			if !ok {
				perf = &ProductPerformance{ProductID: item.ProductID, Name: item.ProductName}
				byProduct[item.ProductID] = perf
				order = append(order, item.ProductID)
			}
			perf.Quantity += item.Quantity
			perf.Revenue += item.Total
		}
	}

	ranked := make([]ProductPerformance, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *byProduct[id])
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// UniqueCustomers counts distinct non-empty customer names across the sales.
func UniqueCustomers(saleList []sales.Sale) int {
	seen := make(map[string]struct{})
	for _, sale := range saleList {
		if sale.CustomerName == "" {
			continue
		}
		seen[sale.CustomerName] = struct{}{}
	}
	return len(seen)
}
