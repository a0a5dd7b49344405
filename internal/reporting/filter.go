package reporting

import (
	"github.com/tillpoint/tillpoint/internal/catalog"
	"github.com/tillpoint/tillpoint/internal/sales"
)

// CategoryAll is the wildcard matching every sale.
const CategoryAll = "all"

// FilterByCategory keeps the sales that contain at least one item resolving
// to a product in the given category. Items whose product is no longer in the
// supplied product list never match a concrete category.
func FilterByCategory(saleList []sales.Sale, products []catalog.Product, category string) []sales.Sale {
	if category == "" || category == CategoryAll {
		return saleList
	}

	categories := make(map[string]string, len(products))
	for _, product := range products {
		categories[product.ID] = product.Category
	}

	filtered := make([]sales.Sale, 0, len(saleList))
	for _, sale := range saleList {
		for _, item := range sale.Items {
			if categories[item.ProductID] == category {
				filtered = append(filtered, sale)
				break
			}
		}
	}
	return filtered
}
