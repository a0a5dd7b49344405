package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/catalog"
)

func testProduct(id, name string, price float64, stock int) catalog.Product {
	return catalog.Product{ID: id, Name: name, Price: price, Stock: stock}
}

func TestCartAddCapsAtSnapshotStock(t *testing.T) {
	cart := NewCart("session-1")
	product := testProduct("p1", "Espresso Beans", 18.50, 3)

	for i := 0; i < 3; i++ {
		require.NoError(t, cart.Add(product))
	}
	err := cart.Add(product)
	require.ErrorIs(t, err, ErrStockExceeded)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCartAddRejectsOutOfStockProduct(t *testing.T) {
	cart := NewCart("session-1")
	err := cart.Add(testProduct("p1", "Sold Out", 5, 0))
	require.ErrorIs(t, err, ErrStockExceeded)
	assert.Empty(t, cart.Items)
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCart("session-1")
	require.NoError(t, cart.Add(testProduct("p1", "Mug", 12, 5)))

	require.NoError(t, cart.SetQuantity("p1", 4))
	assert.Equal(t, 4, cart.Items[0].Quantity)

	err := cart.SetQuantity("p1", 6)
	require.ErrorIs(t, err, ErrStockExceeded)
	assert.Equal(t, 4, cart.Items[0].Quantity, "rejected update must not change the cart")

	// Unknown products are a no-op.
	require.NoError(t, cart.SetQuantity("missing", 2))
	assert.Len(t, cart.Items, 1)

	// Zero removes the entry.
	require.NoError(t, cart.SetQuantity("p1", 0))
	assert.Empty(t, cart.Items)
}

func TestCartTotalRecomputed(t *testing.T) {
	cart := NewCart("session-1")
	require.NoError(t, cart.Add(testProduct("p1", "Beans", 10.00, 10)))
	require.NoError(t, cart.Add(testProduct("p2", "Mug", 12.50, 10)))
	require.NoError(t, cart.SetQuantity("p1", 2))

	assert.InDelta(t, 32.50, cart.Total(), 1e-9)

	cart.Remove("p2")
	assert.InDelta(t, 20.00, cart.Total(), 1e-9)

	cart.Clear()
	assert.Zero(t, cart.Total())
}
