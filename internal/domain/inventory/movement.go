package inventory

import (
	"time"
	"unicode/utf8"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementType is the kind of quantity change recorded in the ledger
type MovementType string

const (
	MovementTypeIn         MovementType = "IN"
	MovementTypeOut        MovementType = "OUT"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	MovementTypeReturn     MovementType = "RETURN"
)

// String returns the string representation
func (t MovementType) String() string {
	return string(t)
}

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeReturn:
		return true
	}
	return false
}

// allows reports whether a movement of this type may change stock by delta.
// IN only adds and OUT only removes; RETURN and ADJUSTMENT go either way.
func (t MovementType) allows(delta int64) bool {
	switch t {
	case MovementTypeIn:
		return delta > 0
	case MovementTypeOut:
		return delta < 0
	default:
		return delta != 0
	}
}

// SourceType names the document that caused a movement
type SourceType string

const (
	SourceTypeSale     SourceType = "SALE"
	SourceTypePurchase SourceType = "PURCHASE"
	SourceTypeManual   SourceType = "MANUAL"
)

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeSale, SourceTypePurchase, SourceTypeManual:
		return true
	}
	return false
}

const (
	MaxMovementNoteLength  = 500
	MaxMovementActorLength = 320
)

// Movement is an immutable audit record of a quantity change against a batch
// at a location. Quantity is always a positive magnitude; BalanceBefore and
// BalanceAfter carry the direction for types that can move either way.
type Movement struct {
	ID            uuid.UUID
	Type          MovementType
	BatchID       uuid.UUID
	ProductID     uuid.UUID
	Location      string
	Quantity      int64
	BalanceBefore int64
	BalanceAfter  int64
	SourceType    SourceType
	SourceID      string
	Note          string
	CreatedBy     string
	CreatedAt     time.Time
}

// NewMovement records the stock change just applied to a batch.
func NewMovement(movementType MovementType, batch *Batch, change StockChange, now time.Time) (*Movement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("Invalid movement type %q", movementType)
	}
	if batch == nil {
		return nil, shared.NewValidationError("Movement requires a batch")
	}
	if change.Item == nil || change.Item.BatchID != batch.ID {
		return nil, shared.NewValidationError("Stock change does not belong to batch %s", batch.BatchNumber)
	}
	delta := change.Delta()
	if !movementType.allows(delta) {
		return nil, shared.NewValidationError("%s movement cannot record a change of %d", movementType, delta)
	}

	quantity := delta
	if quantity < 0 {
		quantity = -quantity
	}

	return &Movement{
		ID:            uuid.New(),
		Type:          movementType,
		BatchID:       batch.ID,
		ProductID:     batch.ProductID,
		Location:      change.Item.Location,
		Quantity:      quantity,
		BalanceBefore: change.Before,
		BalanceAfter:  change.After,
		SourceType:    SourceTypeManual,
		CreatedAt:     now,
	}, nil
}

// WithSource tags the movement with the document that caused it
func (m *Movement) WithSource(sourceType SourceType, sourceID string) *Movement {
	m.SourceType = sourceType
	m.SourceID = sourceID
	return m
}

// WithNote sets the free-text note, truncated to MaxMovementNoteLength runes
func (m *Movement) WithNote(note string) *Movement {
	m.Note = truncate(note, MaxMovementNoteLength)
	return m
}

// WithActor sets the acting-user identifier
func (m *Movement) WithActor(actor string) *Movement {
	m.CreatedBy = truncate(actor, MaxMovementActorLength)
	return m
}

// SignedQuantity returns the net change this movement applied to on-hand stock
func (m *Movement) SignedQuantity() int64 {
	return m.BalanceAfter - m.BalanceBefore
}

// IsCredit reports whether the movement increased on-hand stock
func (m *Movement) IsCredit() bool {
	return m.SignedQuantity() > 0
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
