package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeductionRepository implements inventory.DeductionRepository using GORM
type GormDeductionRepository struct {
	db *gorm.DB
}

// NewGormDeductionRepository creates a new GormDeductionRepository
func NewGormDeductionRepository(db *gorm.DB) *GormDeductionRepository {
	return &GormDeductionRepository{db: db}
}

// CreateBatch inserts deductions in one statement
func (r *GormDeductionRepository) CreateBatch(ctx context.Context, deductions []inventory.Deduction) error {
	if len(deductions) == 0 {
		return nil
	}
	rows := make([]models.DeductionModel, len(deductions))
	for i := range deductions {
		rows[i] = models.DeductionModelFromDomain(&deductions[i])
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByLines returns the deductions of the given sale lines in insertion order
func (r *GormDeductionRepository) FindByLines(ctx context.Context, lineIDs []uuid.UUID) ([]inventory.Deduction, error) {
	if len(lineIDs) == 0 {
		return []inventory.Deduction{}, nil
	}
	var rows []models.DeductionModel
	if err := r.db.WithContext(ctx).
		Where("sales_order_line_id IN ?", lineIDs).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Deduction, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// DeleteByLines removes the deductions of the given sale lines
func (r *GormDeductionRepository) DeleteByLines(ctx context.Context, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("sales_order_line_id IN ?", lineIDs).
		Delete(&models.DeductionModel{}).Error
}

// ExistsByBatch reports whether any sale line has drawn from the batch
func (r *GormDeductionRepository) ExistsByBatch(ctx context.Context, batchID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DeductionModel{}).
		Where("batch_id = ?", batchID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ inventory.DeductionRepository = (*GormDeductionRepository)(nil)
