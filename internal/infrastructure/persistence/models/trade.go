package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
type SalesOrderModel struct {
	AggregateModel
	Reference string                `gorm:"type:varchar(120);index"`
	Customer  string                `gorm:"type:varchar(200);not null"`
	Location  string                `gorm:"type:varchar(100);not null"`
	SoldAt    time.Time             `gorm:"not null;index"`
	SoldBy    string                `gorm:"type:varchar(320)"`
	Lines     []SalesOrderLineModel `gorm:"foreignKey:SalesOrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// SalesOrderLineModel is the persistence model for a sale line.
type SalesOrderLineModel struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key"`
	SalesOrderID uuid.UUID        `gorm:"type:uuid;not null;index"`
	LineNo       int              `gorm:"not null"`
	ProductID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity     int64            `gorm:"not null"`
	UnitPrice    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	CreatedAt    time.Time        `gorm:"not null"`
	Deductions   []DeductionModel `gorm:"foreignKey:SalesOrderLineID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SalesOrderLineModel) TableName() string {
	return "sales_order_lines"
}

// ToDomain converts the persistence model to a domain SalesOrder.
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Reference:         m.Reference,
		Customer:          m.Customer,
		Location:          m.Location,
		SoldAt:            m.SoldAt,
		SoldBy:            m.SoldBy,
		Lines:             make([]trade.SalesOrderLine, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// ToDomain converts the persistence model to a domain SalesOrderLine.
func (m *SalesOrderLineModel) ToDomain() trade.SalesOrderLine {
	line := trade.SalesOrderLine{
		ID:           m.ID,
		SalesOrderID: m.SalesOrderID,
		ProductID:    m.ProductID,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		CreatedAt:    m.CreatedAt,
		Deductions:   make([]inventory.Deduction, len(m.Deductions)),
	}
	for i := range m.Deductions {
		line.Deductions[i] = m.Deductions[i].ToDomain()
	}
	return line
}

// SalesOrderModelFromDomain creates a header model without lines.
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{
		Reference: o.Reference,
		Customer:  o.Customer,
		Location:  o.Location,
		SoldAt:    o.SoldAt,
		SoldBy:    o.SoldBy,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// SalesOrderLineModelsFromDomain converts lines, numbering them in order.
// Deductions are stored separately and are not included.
func SalesOrderLineModelsFromDomain(lines []trade.SalesOrderLine) []SalesOrderLineModel {
	out := make([]SalesOrderLineModel, len(lines))
	for i, l := range lines {
		out[i] = SalesOrderLineModel{
			ID:           l.ID,
			SalesOrderID: l.SalesOrderID,
			LineNo:       i + 1,
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			CreatedAt:    l.CreatedAt,
		}
	}
	return out
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	AggregateModel
	InvoiceNumber string                   `gorm:"type:varchar(120);index"`
	Supplier      string                   `gorm:"type:varchar(200);not null"`
	Location      string                   `gorm:"type:varchar(100);not null"`
	ReceivedAt    time.Time                `gorm:"not null;index"`
	ReceivedBy    string                   `gorm:"type:varchar(320)"`
	Lines         []PurchaseOrderLineModel `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderLineModel is the persistence model for a purchase line.
type PurchaseOrderLineModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo          int             `gorm:"not null"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	BatchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchNumber     string          `gorm:"type:varchar(100);not null"`
	ExpiryDate      time.Time       `gorm:"type:date;not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity        int64           `gorm:"not null"`
	Location        string          `gorm:"type:varchar(100);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		Supplier:          m.Supplier,
		Location:          m.Location,
		ReceivedAt:        m.ReceivedAt,
		ReceivedBy:        m.ReceivedBy,
		Lines:             make([]trade.PurchaseOrderLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		order.Lines[i] = trade.PurchaseOrderLine{
			ID:              l.ID,
			PurchaseOrderID: l.PurchaseOrderID,
			ProductID:       l.ProductID,
			BatchID:         l.BatchID,
			BatchNumber:     l.BatchNumber,
			ExpiryDate:      inventory.DateOf(l.ExpiryDate),
			UnitCost:        l.UnitCost,
			Quantity:        l.Quantity,
			Location:        l.Location,
			CreatedAt:       l.CreatedAt,
		}
	}
	return order
}

// PurchaseOrderModelFromDomain creates a header model without lines.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		InvoiceNumber: o.InvoiceNumber,
		Supplier:      o.Supplier,
		Location:      o.Location,
		ReceivedAt:    o.ReceivedAt,
		ReceivedBy:    o.ReceivedBy,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// PurchaseOrderLineModelsFromDomain converts lines, numbering them in order.
func PurchaseOrderLineModelsFromDomain(lines []trade.PurchaseOrderLine) []PurchaseOrderLineModel {
	out := make([]PurchaseOrderLineModel, len(lines))
	for i, l := range lines {
		out[i] = PurchaseOrderLineModel{
			ID:              l.ID,
			PurchaseOrderID: l.PurchaseOrderID,
			LineNo:          i + 1,
			ProductID:       l.ProductID,
			BatchID:         l.BatchID,
			BatchNumber:     l.BatchNumber,
			ExpiryDate:      l.ExpiryDate,
			UnitCost:        l.UnitCost,
			Quantity:        l.Quantity,
			Location:        l.Location,
			CreatedAt:       l.CreatedAt,
		}
	}
	return out
}
