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

// GormSalesOrderRepository implements trade.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID loads a sale with its lines in entry order and their deductions
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var m models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Lines.Deductions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Sale", id)
	}
	return m.ToDomain(), nil
}

// Create inserts the header and its lines
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *trade.SalesOrder) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(models.SalesOrderModelFromDomain(order)).Error; err != nil {
		return wrap(err, "insert sale")
	}
	return r.insertLines(db, order.Lines)
}

// SaveWithLock updates the header if the stored version is the one it was read at
func (r *GormSalesOrderRepository) SaveWithLock(ctx context.Context, order *trade.SalesOrder) error {
	result := r.db.WithContext(ctx).Model(&models.SalesOrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]any{
			"reference":  order.Reference,
			"customer":   order.Customer,
			"location":   order.Location,
			"sold_by":    order.SoldBy,
			"version":    order.Version,
			"updated_at": order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Sale was modified by another transaction")
	}
	return nil
}

// ReplaceLines deletes the stored lines of a sale, with any deductions left
// on them, and inserts lines in their place
func (r *GormSalesOrderRepository) ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []trade.SalesOrderLine) error {
	db := r.db.WithContext(ctx)
	if err := r.deleteLines(db, orderID); err != nil {
		return err
	}
	return r.insertLines(db, lines)
}

// Delete removes a sale with its lines and deductions
func (r *GormSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := r.deleteLines(db, id); err != nil {
		return err
	}
	result := db.Delete(&models.SalesOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Sale", id)
	}
	return nil
}

func (r *GormSalesOrderRepository) insertLines(db *gorm.DB, lines []trade.SalesOrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	rows := models.SalesOrderLineModelsFromDomain(lines)
	return wrap(db.Omit(clause.Associations).Create(&rows).Error, "insert sale lines")
}

func (r *GormSalesOrderRepository) deleteLines(db *gorm.DB, orderID uuid.UUID) error {
	lineIDs := db.Model(&models.SalesOrderLineModel{}).Select("id").Where("sales_order_id = ?", orderID)
	if err := db.Where("sales_order_line_id IN (?)", lineIDs).Delete(&models.DeductionModel{}).Error; err != nil {
		return wrap(err, "delete sale deductions")
	}
	return wrap(db.Where("sales_order_id = ?", orderID).Delete(&models.SalesOrderLineModel{}).Error, "delete sale lines")
}

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
