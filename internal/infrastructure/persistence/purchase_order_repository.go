package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements trade.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID loads a purchase with its lines in entry order
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Purchase", id)
	}
	return m.ToDomain(), nil
}

// Create inserts the header and its lines
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(models.PurchaseOrderModelFromDomain(order)).Error; err != nil {
		return wrap(err, "insert purchase")
	}
	return r.insertLines(db, order.Lines)
}

// SaveWithLock updates the header if the stored version is the one it was read at
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]any{
			"invoice_number": order.InvoiceNumber,
			"supplier":       order.Supplier,
			"location":       order.Location,
			"received_by":    order.ReceivedBy,
			"version":        order.Version,
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Purchase was modified by another transaction")
	}
	return nil
}

// ReplaceLines deletes the stored lines of a purchase and inserts lines in their place
func (r *GormPurchaseOrderRepository) ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []trade.PurchaseOrderLine) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("purchase_order_id = ?", orderID).Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
		return wrap(err, "delete purchase lines")
	}
	return r.insertLines(db, lines)
}

// Delete removes a purchase and its lines. Batches are kept.
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("purchase_order_id = ?", id).Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
		return wrap(err, "delete purchase lines")
	}
	result := db.Delete(&models.PurchaseOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Purchase", id)
	}
	return nil
}

func (r *GormPurchaseOrderRepository) insertLines(db *gorm.DB, lines []trade.PurchaseOrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	rows := models.PurchaseOrderLineModelsFromDomain(lines)
	return wrap(db.Create(&rows).Error, "insert purchase lines")
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
