package inventory

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchRepository defines the interface for batch persistence
type BatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	// FindAll returns a page of batches across all products and the total count
	FindAll(ctx context.Context, filter shared.Filter) ([]Batch, int64, error)
	// FindByProduct returns all batches of a product ordered by expiry date, then creation time
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Batch, error)
	// FindByNumber finds the batch of a product owning a case-insensitive label
	FindByNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*Batch, error)
	// ExistsByNumber checks whether another batch of the product owns the label
	ExistsByNumber(ctx context.Context, productID uuid.UUID, batchNumber string, excludeID uuid.UUID) (bool, error)
	// Create inserts a new batch. A label collision surfaces as DuplicateBatchNumber.
	Create(ctx context.Context, batch *Batch) error
	// UpdateNumber persists a corrected label
	UpdateNumber(ctx context.Context, batch *Batch) error
	// UpdateQuantityReceived persists a restated received quantity
	UpdateQuantityReceived(ctx context.Context, batch *Batch) error
}

// InventoryItemRepository defines the interface for on-hand rows
type InventoryItemRepository interface {
	// FindByBatchAndLocation reads a row without locking it
	FindByBatchAndLocation(ctx context.Context, batchID uuid.UUID, location string) (*InventoryItem, error)
	// FindForUpdate reads a row and holds a write lock on it until the transaction ends
	FindForUpdate(ctx context.Context, batchID uuid.UUID, location string) (*InventoryItem, error)
	// FindByBatch returns every location row of a batch
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]InventoryItem, error)
	// GetOrCreateForUpdate returns the locked row, inserting a zero row first if absent
	GetOrCreateForUpdate(ctx context.Context, batchID uuid.UUID, location string) (*InventoryItem, error)
	// SaveWithLock persists a quantity change, checking the version it was read at
	SaveWithLock(ctx context.Context, item *InventoryItem) error
}

// MovementFilter narrows a ledger read
type MovementFilter struct {
	shared.Filter
	Type      MovementType
	BatchID   uuid.UUID
	ProductID uuid.UUID
	Location  string
	From      time.Time
	To        time.Time
}

// MovementRepository is the append-only movement ledger.
// It has no way to change or remove a movement once written.
type MovementRepository interface {
	// Append writes a new movement
	Append(ctx context.Context, movement *Movement) error
	// Find returns movements matching the filter and the total match count
	Find(ctx context.Context, filter MovementFilter) ([]Movement, int64, error)
	// NetByLocation sums the signed change of every movement of a batch, per location
	NetByLocation(ctx context.Context, batchID uuid.UUID) (map[string]int64, error)
}

// DeductionRepository stores the allocation records of sale lines
type DeductionRepository interface {
	// CreateBatch inserts deductions
	CreateBatch(ctx context.Context, deductions []Deduction) error
	// FindByLines returns the deductions of the given sale lines
	FindByLines(ctx context.Context, lineIDs []uuid.UUID) ([]Deduction, error)
	// DeleteByLines removes the deductions of the given sale lines
	DeleteByLines(ctx context.Context, lineIDs []uuid.UUID) error
	// ExistsByBatch reports whether any sale line has drawn from the batch
	ExistsByBatch(ctx context.Context, batchID uuid.UUID) (bool, error)
}
