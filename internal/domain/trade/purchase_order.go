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

const MaxSupplierLength = 200

// PurchaseOrderLine records one batch received on a purchase.
// BatchNumber is the label at the time the line was written; readers refresh
// it from the batch with RelabelBatch since the batch can be renamed later.
type PurchaseOrderLine struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID
	ProductID       uuid.UUID
	BatchID         uuid.UUID
	BatchNumber     string
	ExpiryDate      time.Time
	UnitCost        decimal.Decimal
	Quantity        int64
	Location        string
	CreatedAt       time.Time
}

// Cost returns quantity * unit cost
func (l *PurchaseOrderLine) Cost() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(l.Quantity))
}

// PurchaseOrder is a supplier delivery. Each line creates its own batch.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	Supplier      string
	Location      string
	ReceivedAt    time.Time
	ReceivedBy    string
	Lines         []PurchaseOrderLine
}

// NewPurchaseOrder creates a purchase without lines
func NewPurchaseOrder(supplier, invoiceNumber, location, receivedBy string, now time.Time) (*PurchaseOrder, error) {
	o := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		ReceivedAt:        now,
	}
	if err := o.setHeader(supplier, invoiceNumber, location, receivedBy); err != nil {
		return nil, err
	}
	return o, nil
}

// Revise replaces the header fields and drops every line.
// The caller is expected to have rolled back the old receipts.
func (o *PurchaseOrder) Revise(supplier, invoiceNumber, location, receivedBy string, now time.Time) error {
	if err := o.setHeader(supplier, invoiceNumber, location, receivedBy); err != nil {
		return err
	}
	o.Lines = nil
	o.Advance(now)
	return nil
}

// AddLine records quantity units of batch received at the order location
func (o *PurchaseOrder) AddLine(batch *inventory.Batch, quantity int64, now time.Time) (*PurchaseOrderLine, error) {
	if batch == nil {
		return nil, shared.NewValidationError("Batch is required")
	}
	if quantity < 0 {
		return nil, shared.NewValidationError("Quantity received cannot be negative")
	}
	o.Lines = append(o.Lines, PurchaseOrderLine{
		ID:              uuid.New(),
		PurchaseOrderID: o.ID,
		ProductID:       batch.ProductID,
		BatchID:         batch.ID,
		BatchNumber:     batch.BatchNumber,
		ExpiryDate:      batch.ExpiryDate,
		UnitCost:        batch.UnitCost,
		Quantity:        quantity,
		Location:        o.Location,
		CreatedAt:       now,
	})
	return &o.Lines[len(o.Lines)-1], nil
}

// LineForBatch finds the line that received the given batch
func (o *PurchaseOrder) LineForBatch(batchID uuid.UUID) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].BatchID == batchID {
			return &o.Lines[i]
		}
	}
	return nil
}

// RelabelBatch sets the label shown on every line of the batch
func (o *PurchaseOrder) RelabelBatch(batchID uuid.UUID, number string) {
	for i := range o.Lines {
		if o.Lines[i].BatchID == batchID {
			o.Lines[i].BatchNumber = number
		}
	}
}

// TotalCost returns the sum of all line costs
func (o *PurchaseOrder) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Cost())
	}
	return total
}

func (o *PurchaseOrder) setHeader(supplier, invoiceNumber, location, receivedBy string) error {
	supplier = strings.TrimSpace(supplier)
	if supplier == "" {
		return shared.NewValidationError("Supplier is required")
	}
	if utf8.RuneCountInString(supplier) > MaxSupplierLength {
		return shared.NewValidationError("Supplier cannot exceed %d characters", MaxSupplierLength)
	}
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if utf8.RuneCountInString(invoiceNumber) > MaxReferenceLength {
		return shared.NewValidationError("Invoice number cannot exceed %d characters", MaxReferenceLength)
	}
	if utf8.RuneCountInString(receivedBy) > MaxActorLength {
		return shared.NewValidationError("Actor cannot exceed %d characters", MaxActorLength)
	}
	loc, err := inventory.ValidateLocation(location)
	if err != nil {
		return err
	}
	o.Supplier = supplier
	o.InvoiceNumber = invoiceNumber
	o.Location = loc
	o.ReceivedBy = receivedBy
	return nil
}
