package catalog

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
)

// Product is the catalog entry batches are received against.
// The ledger only reads it; catalog maintenance lives elsewhere.
type Product struct {
	shared.BaseEntity
	SKU    string
	Name   string
	Active bool
}

// NewProduct creates a new product
func NewProduct(sku, name string, now time.Time) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewValidationError("Product SKU is required")
	}
	if len(sku) > 80 {
		return nil, shared.NewValidationError("Product SKU cannot exceed 80 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Product name is required")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntityAt(now),
		SKU:        sku,
		Name:       name,
		Active:     true,
	}, nil
}

// Rename changes the display name. It reports whether anything changed.
func (p *Product) Rename(name string, now time.Time) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, shared.NewValidationError("Product name is required")
	}
	if name == p.Name {
		return false, nil
	}
	p.Name = name
	p.Touch(now)
	return true, nil
}

// Label returns the identifier used in user-facing messages
func (p *Product) Label() string {
	if p.SKU != "" {
		return p.SKU
	}
	return p.ID.String()
}
