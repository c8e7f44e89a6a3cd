package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func appendMovement(t *testing.T, db *gorm.DB, typ inventory.MovementType, batch *inventory.Batch, location string, before, after int64, at time.Time) {
	t.Helper()
	item := &inventory.InventoryItem{BatchID: batch.ID, Location: location}
	m, err := inventory.NewMovement(typ, batch, inventory.StockChange{Item: item, Before: before, After: after}, at)
	require.NoError(t, err)
	require.NoError(t, NewGormMovementRepository(db).Append(context.Background(), m))
}

func TestGormMovementRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormMovementRepository(db)
	product := seedProduct(t, db, "BUTTER")
	batch := seedBatch(t, db, product.ID, "BT1", "2025-05-01")

	appendMovement(t, db, inventory.MovementTypeIn, batch, "MAIN", 0, 10, testNow)
	appendMovement(t, db, inventory.MovementTypeOut, batch, "MAIN", 10, 7, testNow.Add(time.Minute))
	appendMovement(t, db, inventory.MovementTypeAdjustment, batch, "SHOP", 0, 2, testNow.Add(2*time.Minute))
	appendMovement(t, db, inventory.MovementTypeReturn, batch, "MAIN", 7, 10, testNow.Add(3*time.Minute))

	t.Run("NetByLocation sums signed changes", func(t *testing.T) {
		net, err := repo.NetByLocation(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"MAIN": 10, "SHOP": 2}, net)
	})

	t.Run("Find filters by type", func(t *testing.T) {
		out, total, err := repo.Find(ctx, inventory.MovementFilter{Type: inventory.MovementTypeOut})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, out, 1)
		assert.Equal(t, int64(3), out[0].Quantity)
		assert.Equal(t, int64(10), out[0].BalanceBefore)
	})

	t.Run("Find filters by location and time window, oldest first", func(t *testing.T) {
		out, total, err := repo.Find(ctx, inventory.MovementFilter{
			Filter:   shared.Filter{OrderBy: "created_at", OrderDir: "asc"},
			BatchID:  batch.ID,
			Location: " MAIN ",
			From:     testNow.Add(30 * time.Second),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, out, 2)
		assert.Equal(t, inventory.MovementTypeOut, out[0].Type)
		assert.Equal(t, inventory.MovementTypeReturn, out[1].Type)
	})

	t.Run("Find pages newest first by default", func(t *testing.T) {
		out, total, err := repo.Find(ctx, inventory.MovementFilter{Filter: shared.Filter{Page: 1, PageSize: 2}})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, out, 2)
		assert.Equal(t, inventory.MovementTypeReturn, out[0].Type)
	})
}
