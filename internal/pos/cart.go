package pos

import (
	"errors"

	"github.com/tillpoint/tillpoint/internal/catalog"
)

// ErrStockExceeded indicates a cart mutation would exceed the stock snapshot.
var ErrStockExceeded = errors.New("pos: quantity exceeds available stock")

// ErrEmptyCart indicates checkout was attempted with no items.
var ErrEmptyCart = errors.New("pos: cart is empty")

// CartItem pairs a product snapshot with the selected quantity. The snapshot
// is taken at add time and may go stale; checkout revalidates against the
// catalog before committing.
type CartItem struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart holds the working selection for one checkout session.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
}

// NewCart returns an empty cart bound to a session.
func NewCart(sessionID string) Cart {
	return Cart{SessionID: sessionID}
}

// Add puts one unit of the product into the cart. An existing entry is
// incremented unless it already sits at the snapshot stock, in which case the
// cart is left unchanged and ErrStockExceeded is returned.
func (c *Cart) Add(product catalog.Product) error {
	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID {
			if c.Items[i].Quantity >= c.Items[i].Product.Stock {
				return ErrStockExceeded
			}
			c.Items[i].Quantity++
			return nil
		}
	}
	if product.Stock < 1 {
		return ErrStockExceeded
	}
	c.Items = append(c.Items, CartItem{Product: product, Quantity: 1})
	return nil
}

// SetQuantity replaces the quantity for a product already in the cart.
// A quantity above the stock snapshot is rejected; zero or below removes the
// entry. Unknown products are a no-op.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	for i := range c.Items {
		if c.Items[i].Product.ID != productID {
			continue
		}
		if quantity <= 0 {
			c.Remove(productID)
			return nil
		}
		if quantity > c.Items[i].Product.Stock {
			return ErrStockExceeded
		}
		c.Items[i].Quantity = quantity
		return nil
	}
	return nil
}

// Remove drops the entry for the product if present.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Total recomputes the cart total from its contents on every call.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}
