package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation is the quantity taken from one batch to satisfy a sale line
type Allocation struct {
	BatchID     uuid.UUID
	BatchNumber string
	ExpiryDate  time.Time
	Location    string
	Quantity    int64
	UnitCost    decimal.Decimal
}

// Cost returns the batch cost of the allocated units
func (a Allocation) Cost() decimal.Decimal {
	return a.UnitCost.Mul(decimal.NewFromInt(a.Quantity))
}

// Deduction links a sale line to the batch and quantity it consumed.
// It lives and dies with its owning line.
type Deduction struct {
	ID               uuid.UUID
	SalesOrderLineID uuid.UUID
	BatchID          uuid.UUID
	Location         string
	Quantity         int64
	CreatedAt        time.Time
}

// NewDeduction records an allocation against a sale line
func NewDeduction(lineID uuid.UUID, a Allocation, now time.Time) (*Deduction, error) {
	if lineID == uuid.Nil {
		return nil, shared.NewValidationError("Sale line ID is required")
	}
	if a.BatchID == uuid.Nil {
		return nil, shared.NewValidationError("Batch ID is required")
	}
	if a.Quantity <= 0 {
		return nil, shared.NewValidationError("Deduction quantity must be positive")
	}
	return &Deduction{
		ID:               uuid.New(),
		SalesOrderLineID: lineID,
		BatchID:          a.BatchID,
		Location:         NormalizeLocation(a.Location),
		Quantity:         a.Quantity,
		CreatedAt:        now,
	}, nil
}

// TotalAllocated sums the quantity of a set of allocations
func TotalAllocated(allocations []Allocation) int64 {
	var total int64
	for _, a := range allocations {
		total += a.Quantity
	}
	return total
}
