package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/catalog"
	"github.com/tillpoint/tillpoint/internal/sales"
)

func TestFilterByCategory(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Category: "Coffee"},
		{ID: "p2", Category: "Bakery"},
	}
	saleList := []sales.Sale{
		{ID: "s1", Items: []sales.SaleItem{{ProductID: "p1"}}},
		{ID: "s2", Items: []sales.SaleItem{{ProductID: "p2"}}},
		{ID: "s3", Items: []sales.SaleItem{{ProductID: "p1"}, {ProductID: "p2"}}},
		{ID: "s4", Items: []sales.SaleItem{{ProductID: "deleted"}}},
	}

	coffee := FilterByCategory(saleList, products, "Coffee")
	require.Len(t, coffee, 2)
	assert.Equal(t, "s1", coffee[0].ID)
	assert.Equal(t, "s3", coffee[1].ID)

	// Items whose product no longer exists never match a concrete category.
	none := FilterByCategory(saleList, products, "Drinks")
	assert.Empty(t, none)
}

func TestFilterByCategoryWildcard(t *testing.T) {
	saleList := []sales.Sale{{ID: "s1"}, {ID: "s2"}}

	assert.Len(t, FilterByCategory(saleList, nil, CategoryAll), 2)
	assert.Len(t, FilterByCategory(saleList, nil, ""), 2)
}
