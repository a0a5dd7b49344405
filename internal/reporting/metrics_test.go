package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/sales"
)

func TestAverageOrderValue(t *testing.T) {
	assert.Zero(t, AverageOrderValue(nil), "empty set yields 0, not NaN")

	saleList := []sales.Sale{
		{TotalAmount: 10},
		{TotalAmount: 30},
	}
	assert.InDelta(t, 20, AverageOrderValue(saleList), 1e-9)
}

func TestGrowthPercent(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero", 50, 0, 100},
		{"doubling", 200, 100, 100},
		{"decline", 50, 100, -50},
		{"flat", 100, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, GrowthPercent(tc.current, tc.previous), 1e-9)
		})
	}
}

func TestTopProductsRanking(t *testing.T) {
	saleList := []sales.Sale{
		{Items: []sales.SaleItem{
			{ProductID: "b", ProductName: "Mug", Quantity: 1, Total: 50},
			{ProductID: "a", ProductName: "Beans", Quantity: 2, Total: 50},
		}},
		{Items: []sales.SaleItem{
			{ProductID: "c", ProductName: "Tumbler", Quantity: 3, Total: 80},
			{ProductID: "a", ProductName: "Beans", Quantity: 1, Total: 25},
		}},
	}

	ranked := TopProducts(saleList, 0)
	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].ProductID)
	assert.Equal(t, "a", ranked[1].ProductID)
	assert.Equal(t, "b", ranked[2].ProductID)
	assert.Equal(t, 3, ranked[1].Quantity)
	assert.InDelta(t, 75, ranked[1].Revenue, 1e-9)

	top1 := TopProducts(saleList, 1)
	require.Len(t, top1, 1)
	assert.Equal(t, "c", top1[0].ProductID)
}

func TestTopProductsTiesBreakByProductID(t *testing.T) {
	saleList := []sales.Sale{
		{Items: []sales.SaleItem{
			{ProductID: "z", ProductName: "Zeta", Quantity: 1, Total: 40},
			{ProductID: "a", ProductName: "Alpha", Quantity: 1, Total: 40},
		}},
	}
	ranked := TopProducts(saleList, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ProductID)
	assert.Equal(t, "z", ranked[1].ProductID)
}

func TestUniqueCustomers(t *testing.T) {
	saleList := []sales.Sale{
		{CustomerName: "Ada"},
		{CustomerName: "Ada"},
		{CustomerName: "Grace"},
		{CustomerName: ""}, // walk-in, never counted
	}
	assert.Equal(t, 2, UniqueCustomers(saleList))
}

func TestTotalItemsSold(t *testing.T) {
	saleList := []sales.Sale{
		saleOn(time.Now(), 10, 1, 2),
		saleOn(time.Now(), 20, 3),
	}
	assert.Equal(t, 6, TotalItemsSold(saleList))
}
