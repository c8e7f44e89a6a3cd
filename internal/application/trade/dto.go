package trade

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineRequest is one product line of a sale
type SaleLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleRequest represents a request to create or replace a sale
type SaleRequest struct {
	Customer  string            `json:"customer" binding:"required,max=200"`
	Reference string            `json:"reference" binding:"max=120"`
	Location  string            `json:"location" binding:"max=100"`
	Lines     []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// PurchaseLineRequest is one batch received on a purchase
type PurchaseLineRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"required,max=100"`
	ExpiryDate  string          `json:"expiry_date" binding:"required"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Quantity    int64           `json:"quantity" binding:"min=0"`
}

// PurchaseRequest represents a request to record or replace a purchase
type PurchaseRequest struct {
	Supplier      string                `json:"supplier" binding:"required,max=200"`
	InvoiceNumber string                `json:"invoice_number" binding:"max=120"`
	Location      string                `json:"location" binding:"max=100"`
	Lines         []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// DeductionResponse is one batch draw of a sale line
type DeductionResponse struct {
	BatchID  uuid.UUID `json:"batch_id"`
	Location string    `json:"location"`
	Quantity int64     `json:"quantity"`
}

// SaleLineResponse represents a sale line in API responses
type SaleLineResponse struct {
	ID         uuid.UUID           `json:"id"`
	ProductID  uuid.UUID           `json:"product_id"`
	Quantity   int64               `json:"quantity"`
	UnitPrice  decimal.Decimal     `json:"unit_price"`
	Amount     decimal.Decimal     `json:"amount"`
	Allocated  int64               `json:"allocated"`
	Deductions []DeductionResponse `json:"deductions"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID          uuid.UUID          `json:"id"`
	Customer    string             `json:"customer"`
	Reference   string             `json:"reference,omitempty"`
	Location    string             `json:"location"`
	SoldAt      time.Time          `json:"sold_at"`
	SoldBy      string             `json:"sold_by,omitempty"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Lines       []SaleLineResponse `json:"lines"`
	Version     int                `json:"version"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// PurchaseLineResponse represents a purchase line in API responses
type PurchaseLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  string          `json:"expiry_date"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Quantity    int64           `json:"quantity"`
	Location    string          `json:"location"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID            uuid.UUID              `json:"id"`
	Supplier      string                 `json:"supplier"`
	InvoiceNumber string                 `json:"invoice_number,omitempty"`
	Location      string                 `json:"location"`
	ReceivedAt    time.Time              `json:"received_at"`
	ReceivedBy    string                 `json:"received_by,omitempty"`
	TotalCost     decimal.Decimal        `json:"total_cost"`
	Lines         []PurchaseLineResponse `json:"lines"`
	Version       int                    `json:"version"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(o *trade.SalesOrder) SaleResponse {
	resp := SaleResponse{
		ID:          o.ID,
		Customer:    o.Customer,
		Reference:   o.Reference,
		Location:    o.Location,
		SoldAt:      o.SoldAt,
		SoldBy:      o.SoldBy,
		TotalAmount: o.TotalAmount(),
		Lines:       make([]SaleLineResponse, len(o.Lines)),
		Version:     o.Version,
		UpdatedAt:   o.UpdatedAt,
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		line := SaleLineResponse{
			ID:         l.ID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Amount:     l.Amount(),
			Allocated:  l.Allocated(),
			Deductions: make([]DeductionResponse, len(l.Deductions)),
		}
		for j, d := range l.Deductions {
			line.Deductions[j] = DeductionResponse{BatchID: d.BatchID, Location: d.Location, Quantity: d.Quantity}
		}
		resp.Lines[i] = line
	}
	return resp
}

// ToPurchaseResponse converts a domain purchase to a response
func ToPurchaseResponse(o *trade.PurchaseOrder) PurchaseResponse {
	resp := PurchaseResponse{
		ID:            o.ID,
		Supplier:      o.Supplier,
		InvoiceNumber: o.InvoiceNumber,
		Location:      o.Location,
		ReceivedAt:    o.ReceivedAt,
		ReceivedBy:    o.ReceivedBy,
		TotalCost:     o.TotalCost(),
		Lines:         make([]PurchaseLineResponse, len(o.Lines)),
		Version:       o.Version,
		UpdatedAt:     o.UpdatedAt,
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		resp.Lines[i] = PurchaseLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			BatchID:     l.BatchID,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate.Format(inventory.ExpiryDateLayout),
			UnitCost:    l.UnitCost,
			Quantity:    l.Quantity,
			Location:    l.Location,
		}
	}
	return resp
}
