package trade

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxCustomerLength  = 200
	MaxReferenceLength = 120
	MaxActorLength     = 320
)

// SalesOrderLine is one product sold on a sale. Its deductions record which
// batches the quantity was drawn from.
type SalesOrderLine struct {
	ID           uuid.UUID
	SalesOrderID uuid.UUID
	ProductID    uuid.UUID
	Quantity     int64
	UnitPrice    decimal.Decimal
	Deductions   []inventory.Deduction
	CreatedAt    time.Time
}

// Amount returns quantity * unit price
func (l *SalesOrderLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Allocated sums the quantity of the line's deductions
func (l *SalesOrderLine) Allocated() int64 {
	var total int64
	for _, d := range l.Deductions {
		total += d.Quantity
	}
	return total
}

// SalesOrder is a sale of stock to a customer
type SalesOrder struct {
	shared.BaseAggregateRoot
	Reference string
	Customer  string
	Location  string
	SoldAt    time.Time
	SoldBy    string
	Lines     []SalesOrderLine
}

// NewSalesOrder creates a sale without lines
func NewSalesOrder(customer, reference, location, soldBy string, now time.Time) (*SalesOrder, error) {
	o := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		SoldAt:            now,
	}
	if err := o.setHeader(customer, reference, location, soldBy); err != nil {
		return nil, err
	}
	return o, nil
}

// Revise replaces the header fields and drops every line.
// The caller is expected to have rolled back the old lines' deductions.
func (o *SalesOrder) Revise(customer, reference, location, soldBy string, now time.Time) error {
	if err := o.setHeader(customer, reference, location, soldBy); err != nil {
		return err
	}
	o.Lines = nil
	o.Advance(now)
	return nil
}

// AddLine appends a product line
func (o *SalesOrder) AddLine(productID uuid.UUID, quantity int64, unitPrice decimal.Decimal, now time.Time) (*SalesOrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID is required")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}
	o.Lines = append(o.Lines, SalesOrderLine{
		ID:           uuid.New(),
		SalesOrderID: o.ID,
		ProductID:    productID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		CreatedAt:    now,
	})
	return &o.Lines[len(o.Lines)-1], nil
}

// LineIDs returns the IDs of all lines
func (o *SalesOrder) LineIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Lines))
	for i := range o.Lines {
		ids[i] = o.Lines[i].ID
	}
	return ids
}

// TotalAmount returns the sum of all line amounts
func (o *SalesOrder) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Amount())
	}
	return total
}

func (o *SalesOrder) setHeader(customer, reference, location, soldBy string) error {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return shared.NewValidationError("Customer is required")
	}
	if utf8.RuneCountInString(customer) > MaxCustomerLength {
		return shared.NewValidationError("Customer cannot exceed %d characters", MaxCustomerLength)
	}
	reference = strings.TrimSpace(reference)
	if utf8.RuneCountInString(reference) > MaxReferenceLength {
		return shared.NewValidationError("Reference number cannot exceed %d characters", MaxReferenceLength)
	}
	if utf8.RuneCountInString(soldBy) > MaxActorLength {
		return shared.NewValidationError("Actor cannot exceed %d characters", MaxActorLength)
	}
	loc, err := inventory.ValidateLocation(location)
	if err != nil {
		return err
	}
	o.Customer = customer
	o.Reference = reference
	o.Location = loc
	o.SoldBy = soldBy
	return nil
}
