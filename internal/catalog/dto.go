package catalog

// ProductForm carries product create/update payloads.
type ProductForm struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Category    string  `json:"category" validate:"required,max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty" validate:"omitempty,url"`
}

// SetStockRequest carries a direct stock correction.
type SetStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}
