package sales

import "time"

// SaleItem is an immutable line snapshot taken at checkout time.
type SaleItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

// Sale is an append-only record of a completed checkout.
type Sale struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	CustomerName  string     `json:"customer_name,omitempty"`
	Items         []SaleItem `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	Date          time.Time  `json:"date"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ItemCount sums the quantities across all line items.
func (s Sale) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}
