package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchModel is the persistence model for the Batch entity.
// BatchNumberKey holds the case-folded label; the unique index on it together
// with ProductID makes labels case-insensitively unique per product.
type BatchModel struct {
	BaseModel
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batches_product_number_key,priority:1;index:idx_batches_fefo,priority:1"`
	BatchNumber      string          `gorm:"type:varchar(100);not null"`
	BatchNumberKey   string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_batches_product_number_key,priority:2"`
	ExpiryDate       time.Time       `gorm:"type:date;not null;index:idx_batches_fefo,priority:2"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived int64           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch entity.
func (m *BatchModel) ToDomain() *inventory.Batch {
	return &inventory.Batch{
		BaseEntity:       m.BaseModel.ToDomain(),
		ProductID:        m.ProductID,
		BatchNumber:      m.BatchNumber,
		ExpiryDate:       inventory.DateOf(m.ExpiryDate),
		UnitCost:         m.UnitCost,
		QuantityReceived: m.QuantityReceived,
	}
}

// FromDomain populates the persistence model from a domain Batch entity.
func (m *BatchModel) FromDomain(b *inventory.Batch) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.ProductID = b.ProductID
	m.BatchNumber = b.BatchNumber
	m.BatchNumberKey = b.NumberKey()
	m.ExpiryDate = b.ExpiryDate
	m.UnitCost = b.UnitCost
	m.QuantityReceived = b.QuantityReceived
}

// BatchModelFromDomain creates a new persistence model from a domain Batch entity.
func BatchModelFromDomain(b *inventory.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}

// InventoryItemModel is the persistence model for on-hand stock of a batch at a location.
type InventoryItemModel struct {
	AggregateModel
	BatchID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_items_batch_location,priority:1"`
	Location  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_inventory_items_batch_location,priority:2"`
	QtyOnHand int64     `gorm:"not null;check:chk_inventory_items_qty_on_hand,qty_on_hand >= 0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem.
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return &inventory.InventoryItem{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BatchID:           m.BatchID,
		Location:          m.Location,
		QtyOnHand:         m.QtyOnHand,
	}
}

// FromDomain populates the persistence model from a domain InventoryItem.
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.BatchID = i.BatchID
	m.Location = i.Location
	m.QtyOnHand = i.QtyOnHand
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// MovementModel is the persistence model for a ledger movement. Rows are only
// ever inserted.
type MovementModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Type          string    `gorm:"type:varchar(20);not null;index"`
	BatchID       uuid.UUID `gorm:"type:uuid;not null;index:idx_movements_batch_location,priority:1"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Location      string    `gorm:"type:varchar(100);not null;index:idx_movements_batch_location,priority:2"`
	Quantity      int64     `gorm:"not null;check:chk_movements_quantity,quantity > 0"`
	BalanceBefore int64     `gorm:"not null"`
	BalanceAfter  int64     `gorm:"not null"`
	SourceType    string    `gorm:"type:varchar(20);not null"`
	SourceID      string    `gorm:"type:varchar(64);index"`
	Note          string    `gorm:"type:varchar(500)"`
	CreatedBy     string    `gorm:"type:varchar(320)"`
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "inventory_movements"
}

// ToDomain converts the persistence model to a domain Movement.
func (m *MovementModel) ToDomain() *inventory.Movement {
	return &inventory.Movement{
		ID:            m.ID,
		Type:          inventory.MovementType(m.Type),
		BatchID:       m.BatchID,
		ProductID:     m.ProductID,
		Location:      m.Location,
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    inventory.SourceType(m.SourceType),
		SourceID:      m.SourceID,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// MovementModelFromDomain creates a new persistence model from a domain Movement.
func MovementModelFromDomain(mv *inventory.Movement) *MovementModel {
	return &MovementModel{
		ID:            mv.ID,
		Type:          string(mv.Type),
		BatchID:       mv.BatchID,
		ProductID:     mv.ProductID,
		Location:      mv.Location,
		Quantity:      mv.Quantity,
		BalanceBefore: mv.BalanceBefore,
		BalanceAfter:  mv.BalanceAfter,
		SourceType:    string(mv.SourceType),
		SourceID:      mv.SourceID,
		Note:          mv.Note,
		CreatedBy:     mv.CreatedBy,
		CreatedAt:     mv.CreatedAt,
	}
}

// DeductionModel is the persistence model for a sale line's draw on a batch.
type DeductionModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	SalesOrderLineID uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Location         string    `gorm:"type:varchar(100);not null"`
	Quantity         int64     `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeductionModel) TableName() string {
	return "sales_order_line_deductions"
}

// ToDomain converts the persistence model to a domain Deduction.
func (m *DeductionModel) ToDomain() inventory.Deduction {
	return inventory.Deduction{
		ID:               m.ID,
		SalesOrderLineID: m.SalesOrderLineID,
		BatchID:          m.BatchID,
		Location:         m.Location,
		Quantity:         m.Quantity,
		CreatedAt:        m.CreatedAt,
	}
}

// DeductionModelFromDomain creates a new persistence model from a domain Deduction.
func DeductionModelFromDomain(d *inventory.Deduction) DeductionModel {
	return DeductionModel{
		ID:               d.ID,
		SalesOrderLineID: d.SalesOrderLineID,
		BatchID:          d.BatchID,
		Location:         d.Location,
		Quantity:         d.Quantity,
		CreatedAt:        d.CreatedAt,
	}
}
