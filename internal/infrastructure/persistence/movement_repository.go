package persistence

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements the append-only inventory.MovementRepository.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts a movement
func (r *GormMovementRepository) Append(ctx context.Context, movement *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(models.MovementModelFromDomain(movement)).Error
}

// Find returns a page of movements matching the filter, newest first by default
func (r *GormMovementRepository) Find(ctx context.Context, filter inventory.MovementFilter) ([]inventory.Movement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MovementModel{})
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.BatchID != uuid.Nil {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.ProductID != uuid.Nil {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", inventory.NormalizeLocation(filter.Location))
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := ValidateSortField(filter.OrderBy, MovementSortFields, "created_at")
	query = query.Order(fmt.Sprintf("%s %s", field, ValidateSortOrder(filter.OrderDir))).Order("id ASC")
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}

	var rows []models.MovementModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]inventory.Movement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// NetByLocation sums the signed change of every movement of a batch, per location
func (r *GormMovementRepository) NetByLocation(ctx context.Context, batchID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Location string
		Net      int64
	}
	if err := r.db.WithContext(ctx).Model(&models.MovementModel{}).
		Select("location, COALESCE(SUM(balance_after - balance_before), 0) AS net").
		Where("batch_id = ?", batchID).
		Group("location").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Location] = row.Net
	}
	return out, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
