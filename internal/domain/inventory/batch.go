package inventory

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

const (
	// ExpiryDateLayout is the only accepted textual form of an expiry date
	ExpiryDateLayout = "2006-01-02"
	// MaxBatchNumberLength bounds the human-readable batch label
	MaxBatchNumberLength = 100
)

// Batch is a dated, costed lot of a product received together.
// Expiry date and unit cost are fixed at creation. The label can be corrected,
// and QuantityReceived follows the purchase line that received the batch.
type Batch struct {
	shared.BaseEntity
	ProductID        uuid.UUID
	BatchNumber      string
	ExpiryDate       time.Time
	UnitCost         decimal.Decimal
	QuantityReceived int64
}

// NewBatch creates a new batch for a product
func NewBatch(productID uuid.UUID, batchNumber string, expiryDate time.Time, unitCost decimal.Decimal, quantityReceived int64, now time.Time) (*Batch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID is required")
	}
	number, err := normalizeBatchNumber(batchNumber)
	if err != nil {
		return nil, err
	}
	if expiryDate.IsZero() {
		return nil, shared.NewValidationError("Expiry date is required")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("Unit cost cannot be negative")
	}
	if quantityReceived < 0 {
		return nil, shared.NewValidationError("Quantity received cannot be negative")
	}

	return &Batch{
		BaseEntity:       shared.NewBaseEntityAt(now),
		ProductID:        productID,
		BatchNumber:      number,
		ExpiryDate:       DateOf(expiryDate),
		UnitCost:         unitCost,
		QuantityReceived: quantityReceived,
	}, nil
}

// Rename corrects the batch label. It reports false when newNumber only differs
// from the current label by case or surrounding whitespace, in which case the
// batch is left untouched.
func (b *Batch) Rename(newNumber string, now time.Time) (bool, error) {
	number, err := normalizeBatchNumber(newNumber)
	if err != nil {
		return false, err
	}
	if BatchNumberKey(number) == b.NumberKey() {
		return false, nil
	}
	b.BatchNumber = number
	b.Touch(now)
	return true, nil
}

// Restate replaces the received quantity after the purchase that created the
// batch was edited. It reports false when the quantity is unchanged.
func (b *Batch) Restate(quantityReceived int64, now time.Time) (bool, error) {
	if quantityReceived < 0 {
		return false, shared.NewValidationError("Quantity received cannot be negative")
	}
	if quantityReceived == b.QuantityReceived {
		return false, nil
	}
	b.QuantityReceived = quantityReceived
	b.Touch(now)
	return true, nil
}

// NumberKey returns the case-folded label used for uniqueness checks.
func (b *Batch) NumberKey() string {
	return BatchNumberKey(b.BatchNumber)
}

// IsExpired reports whether the batch expired before the given calendar day.
// A batch expiring today is still sellable.
func (b *Batch) IsExpired(today time.Time) bool {
	return b.ExpiryDate.Before(DateOf(today))
}

// BatchNumberKey folds a batch label so that labels differing only in case collide.
func BatchNumberKey(number string) string {
	return cases.Fold().String(strings.TrimSpace(number))
}

// ParseExpiryDate parses a YYYY-MM-DD date.
func ParseExpiryDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, shared.NewValidationError("Expiry date is required")
	}
	t, err := time.Parse(ExpiryDateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewValidationError("Invalid expiry date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// DateOf truncates t to its calendar day, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeBatchNumber(number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", shared.NewValidationError("Batch number is required")
	}
	if utf8.RuneCountInString(number) > MaxBatchNumberLength {
		return "", shared.NewValidationError("Batch number cannot exceed %d characters", MaxBatchNumberLength)
	}
	return number, nil
}
