package catalog

import (
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/google/uuid"
)

// RegisterProductRequest names the product behind a SKU
type RegisterProductRequest struct {
	Name string `json:"name" binding:"required,max=250"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
