package catalog

import "time"

// Product represents a product entity in the catalog.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListFilters represents standard product list filters.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	Category string
	MaxStock *int
	SortBy   string
	SortDir  string
}
