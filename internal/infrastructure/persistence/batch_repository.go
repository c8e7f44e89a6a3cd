package persistence

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepository implements inventory.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var m models.BatchModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Batch", id)
	}
	return m.ToDomain(), nil
}

// FindAll returns a page of batches and the total count
func (r *GormBatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Batch, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BatchModel{})
	if productID, ok := filter.Filters["product_id"].(uuid.UUID); ok && productID != uuid.Nil {
		query = query.Where("product_id = ?", productID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := ValidateSortField(filter.OrderBy, BatchSortFields, "created_at")
	query = query.Order(fmt.Sprintf("%s %s", field, ValidateSortOrder(filter.OrderDir))).Order("id ASC")
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}

	var rows []models.BatchModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return batchesToDomain(rows), total, nil
}

// FindByProduct returns every batch of a product in FEFO storage order
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Batch, error) {
	var rows []models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiry_date ASC, created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return batchesToDomain(rows), nil
}

// FindByNumber finds a batch of a product by its label, ignoring case
func (r *GormBatchRepository) FindByNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	var m models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND batch_number_key = ?", productID, inventory.BatchNumberKey(batchNumber)).
		First(&m).Error; err != nil {
		return nil, notFound(err, "Batch", batchNumber)
	}
	return m.ToDomain(), nil
}

// ExistsByNumber checks whether another batch of the product owns the label
func (r *GormBatchRepository) ExistsByNumber(ctx context.Context, productID uuid.UUID, batchNumber string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.BatchModel{}).
		Where("product_id = ? AND batch_number_key = ?", productID, inventory.BatchNumberKey(batchNumber))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new batch
func (r *GormBatchRepository) Create(ctx context.Context, batch *inventory.Batch) error {
	err := r.db.WithContext(ctx).Create(models.BatchModelFromDomain(batch)).Error
	return duplicateBatchNumber(err, batch.BatchNumber)
}

// UpdateNumber persists a corrected label. Expiry and cost columns are never written.
func (r *GormBatchRepository) UpdateNumber(ctx context.Context, batch *inventory.Batch) error {
	result := r.db.WithContext(ctx).Model(&models.BatchModel{}).
		Where("id = ?", batch.ID).
		Updates(map[string]any{
			"batch_number":     batch.BatchNumber,
			"batch_number_key": batch.NumberKey(),
			"updated_at":       batch.UpdatedAt,
		})
	if result.Error != nil {
		return duplicateBatchNumber(result.Error, batch.BatchNumber)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Batch", batch.ID)
	}
	return nil
}

// UpdateQuantityReceived persists the received quantity of a refilled batch
func (r *GormBatchRepository) UpdateQuantityReceived(ctx context.Context, batch *inventory.Batch) error {
	result := r.db.WithContext(ctx).Model(&models.BatchModel{}).
		Where("id = ?", batch.ID).
		Updates(map[string]any{
			"quantity_received": batch.QuantityReceived,
			"updated_at":        batch.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Batch", batch.ID)
	}
	return nil
}

func batchesToDomain(rows []models.BatchModel) []inventory.Batch {
	out := make([]inventory.Batch, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
