package trade

import (
	"context"

	"github.com/google/uuid"
)

// SalesOrderRepository defines the interface for sale persistence
type SalesOrderRepository interface {
	// FindByID loads a sale with its lines and their deductions
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	// Create inserts the header and lines; deductions are stored separately
	Create(ctx context.Context, order *SalesOrder) error
	// SaveWithLock updates the header, checking the version it was read at
	SaveWithLock(ctx context.Context, order *SalesOrder) error
	// ReplaceLines deletes the stored lines of a sale and inserts lines in their place
	ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []SalesOrderLine) error
	// Delete removes a sale and its lines
	Delete(ctx context.Context, id uuid.UUID) error
}

// PurchaseOrderRepository defines the interface for purchase persistence
type PurchaseOrderRepository interface {
	// FindByID loads a purchase with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// Create inserts the header and lines
	Create(ctx context.Context, order *PurchaseOrder) error
	// SaveWithLock updates the header, checking the version it was read at
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error
	// ReplaceLines deletes the stored lines of a purchase and inserts lines in their place
	ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []PurchaseOrderLine) error
	// Delete removes a purchase and its lines. Batches are kept.
	Delete(ctx context.Context, id uuid.UUID) error
}
