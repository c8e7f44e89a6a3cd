package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBatchRequest represents a request to register a batch without stock
type CreateBatchRequest struct {
	ProductID        uuid.UUID       `json:"product_id" binding:"required"`
	BatchNumber      string          `json:"batch_number" binding:"required,max=100"`
	ExpiryDate       string          `json:"expiry_date" binding:"required"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	QuantityReceived int64           `json:"quantity_received" binding:"min=0"`
}

func (r CreateBatchRequest) toInput() CreateBatchInput {
	return CreateBatchInput{
		ProductID:        r.ProductID,
		BatchNumber:      r.BatchNumber,
		ExpiryDate:       r.ExpiryDate,
		UnitCost:         r.UnitCost,
		QuantityReceived: r.QuantityReceived,
	}
}

// ReceiveRequest represents a request to receive a new batch into stock
type ReceiveRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"required,max=100"`
	ExpiryDate  string          `json:"expiry_date" binding:"required"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Quantity    int64           `json:"quantity" binding:"min=0"`
	Location    string          `json:"location" binding:"max=100"`
	Reference   string          `json:"reference" binding:"max=120"`
}

// RenameBatchRequest represents a request to correct a batch label
type RenameBatchRequest struct {
	BatchNumber string `json:"batch_number" binding:"required,max=100"`
}

// AdjustRequest represents a manual stock correction
type AdjustRequest struct {
	BatchID  uuid.UUID `json:"batch_id" binding:"required"`
	Location string    `json:"location" binding:"max=100"`
	Delta    int64     `json:"delta" binding:"required"`
	Note     string    `json:"note" binding:"max=500"`
}

// AllocateRequest represents a direct FEFO draw outside of a sale document
type AllocateRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
	Location  string    `json:"location" binding:"max=100"`
	Reference string    `json:"reference" binding:"max=120"`
}

// MovementListFilter represents filter options for the movement ledger
type MovementListFilter struct {
	Type      string     `form:"type" binding:"omitempty,oneof=IN OUT ADJUSTMENT RETURN"`
	BatchID   *uuid.UUID `form:"batch_id"`
	ProductID *uuid.UUID `form:"product_id"`
	Location  string     `form:"location"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	BatchNumber      string          `json:"batch_number"`
	ExpiryDate       string          `json:"expiry_date"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	QuantityReceived int64           `json:"quantity_received"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StockLevelResponse is the on-hand quantity of a batch at one location
type StockLevelResponse struct {
	Location  string    `json:"location"`
	QtyOnHand int64     `json:"qty_on_hand"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BatchStockResponse is a batch with its stock across locations
type BatchStockResponse struct {
	Batch     BatchResponse        `json:"batch"`
	Expired   bool                 `json:"expired"`
	Total     int64                `json:"total"`
	Locations []StockLevelResponse `json:"locations"`
}

// AdjustResponse is the result of a manual correction
type AdjustResponse struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Location  string    `json:"location"`
	QtyOnHand int64     `json:"qty_on_hand"`
}

// AllocationResponse is one batch pick of a FEFO draw
type AllocationResponse struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  string          `json:"expiry_date"`
	Location    string          `json:"location"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Cost        decimal.Decimal `json:"cost"`
}

// MovementResponse represents a ledger entry in API responses
type MovementResponse struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	BatchID       uuid.UUID `json:"batch_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Location      string    `json:"location"`
	Quantity      int64     `json:"quantity"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	SourceType    string    `json:"source_type"`
	SourceID      string    `json:"source_id,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Discrepancy reports a location whose on-hand quantity disagrees with the
// net of its movements
type Discrepancy struct {
	BatchID    uuid.UUID `json:"batch_id"`
	Location   string    `json:"location"`
	OnHand     int64     `json:"on_hand"`
	LedgerNet  int64     `json:"ledger_net"`
	Difference int64     `json:"difference"`
}

// ToBatchResponse converts a domain batch to a response
func ToBatchResponse(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:               b.ID,
		ProductID:        b.ProductID,
		BatchNumber:      b.BatchNumber,
		ExpiryDate:       b.ExpiryDate.Format(inventory.ExpiryDateLayout),
		UnitCost:         b.UnitCost,
		QuantityReceived: b.QuantityReceived,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// ToAllocationResponses converts allocations to responses
func ToAllocationResponses(allocations []inventory.Allocation) []AllocationResponse {
	out := make([]AllocationResponse, len(allocations))
	for i, a := range allocations {
		out[i] = AllocationResponse{
			BatchID:     a.BatchID,
			BatchNumber: a.BatchNumber,
			ExpiryDate:  a.ExpiryDate.Format(inventory.ExpiryDateLayout),
			Location:    a.Location,
			Quantity:    a.Quantity,
			UnitCost:    a.UnitCost,
			Cost:        a.Cost(),
		}
	}
	return out
}

// ToMovementResponse converts a domain movement to a response
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		Type:          m.Type.String(),
		BatchID:       m.BatchID,
		ProductID:     m.ProductID,
		Location:      m.Location,
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    string(m.SourceType),
		SourceID:      m.SourceID,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements to responses
func ToMovementResponses(movements []inventory.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out
}
