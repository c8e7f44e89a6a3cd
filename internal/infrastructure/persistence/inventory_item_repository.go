package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryItemRepository implements inventory.InventoryItemRepository using GORM.
// On Postgres, FindForUpdate takes a row lock; SQLite serialises whole
// transactions instead and ignores the locking clause.
type GormInventoryItemRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// FindByBatchAndLocation reads a row without locking it
func (r *GormInventoryItemRepository) FindByBatchAndLocation(ctx context.Context, batchID uuid.UUID, location string) (*inventory.InventoryItem, error) {
	var m models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ? AND location = ?", batchID, location).
		First(&m).Error; err != nil {
		return nil, notFound(err, "Inventory row", batchID.String()+"@"+location)
	}
	return m.ToDomain(), nil
}

// FindForUpdate reads a row with SELECT ... FOR UPDATE
func (r *GormInventoryItemRepository) FindForUpdate(ctx context.Context, batchID uuid.UUID, location string) (*inventory.InventoryItem, error) {
	var m models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("batch_id = ? AND location = ?", batchID, location).
		First(&m).Error; err != nil {
		return nil, notFound(err, "Inventory row", batchID.String()+"@"+location)
	}
	return m.ToDomain(), nil
}

// FindByBatch returns every location row of a batch ordered by location
func (r *GormInventoryItemRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("location ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.InventoryItem, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// GetOrCreateForUpdate inserts a zero row if none exists, then locks and returns it.
// Concurrent first credits race on the unique (batch_id, location) index and
// the loser's insert is silently skipped.
func (r *GormInventoryItemRepository) GetOrCreateForUpdate(ctx context.Context, batchID uuid.UUID, location string) (*inventory.InventoryItem, error) {
	item, err := inventory.NewInventoryItem(batchID, location, r.now())
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "batch_id"}, {Name: "location"}},
			DoNothing: true,
		}).
		Create(models.InventoryItemModelFromDomain(item)).Error; err != nil {
		return nil, wrap(err, "insert inventory row")
	}
	return r.FindForUpdate(ctx, batchID, item.Location)
}

// SaveWithLock writes the quantity if the stored version is the one the item was read at
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]any{
			"qty_on_hand": item.QtyOnHand,
			"version":     item.Version,
			"updated_at":  item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Inventory row was modified by another transaction")
	}
	return nil
}

var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
