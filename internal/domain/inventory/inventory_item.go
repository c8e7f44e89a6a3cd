package inventory

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	// DefaultLocation is used whenever a caller leaves the location blank
	DefaultLocation = "MAIN"
	// MaxLocationLength bounds the free-text location label
	MaxLocationLength = 100
)

// InventoryItem is the on-hand quantity of one batch at one location.
// Rows are created lazily and never deleted; zero is a valid resting state.
type InventoryItem struct {
	shared.BaseAggregateRoot
	BatchID   uuid.UUID
	Location  string
	QtyOnHand int64
}

// NewInventoryItem creates an empty inventory row for a batch at a location
func NewInventoryItem(batchID uuid.UUID, location string, now time.Time) (*InventoryItem, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewValidationError("Batch ID is required")
	}
	loc, err := ValidateLocation(location)
	if err != nil {
		return nil, err
	}
	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		BatchID:           batchID,
		Location:          loc,
	}, nil
}

// Credit adds amount to the on-hand quantity
func (i *InventoryItem) Credit(amount int64, now time.Time) error {
	if amount <= 0 {
		return shared.NewValidationError("Credit amount must be positive")
	}
	i.QtyOnHand += amount
	i.Advance(now)
	return nil
}

// Debit removes amount from the on-hand quantity.
// The row is left untouched when it holds less than amount.
func (i *InventoryItem) Debit(amount int64, now time.Time) error {
	if amount <= 0 {
		return shared.NewValidationError("Debit amount must be positive")
	}
	if i.QtyOnHand < amount {
		return shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Insufficient stock at %s: available %d, requested %d", i.Location, i.QtyOnHand, amount)
	}
	i.QtyOnHand -= amount
	i.Advance(now)
	return nil
}

// NormalizeLocation trims a location label and falls back to DefaultLocation.
func NormalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return DefaultLocation
	}
	return location
}

// ValidateLocation normalizes a location label and checks its length.
func ValidateLocation(location string) (string, error) {
	loc := NormalizeLocation(location)
	if utf8.RuneCountInString(loc) > MaxLocationLength {
		return "", shared.NewValidationError("Location cannot exceed %d characters", MaxLocationLength)
	}
	return loc, nil
}
