package pos

// AddItemRequest selects a product for the session cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// SetQuantityRequest replaces a cart line quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CheckoutRequest carries the optional checkout fields.
type CheckoutRequest struct {
	CustomerName string `json:"customer_name,omitempty" validate:"max=200"`
}

// CartView is the JSON shape returned for cart reads.
type CartView struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
}
