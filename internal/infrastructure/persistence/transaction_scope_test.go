package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	product := seedProduct(t, db, "SOAP")
	batch := seedBatch(t, db, product.ID, "S-1", "2026-01-01")
	scope := NewGormTransactionScope(db)
	clock := func() time.Time { return testNow }

	credit := func(repos appinv.TransactionalRepositories, qty int64) error {
		change, err := inventory.NewItemStore(repos.ItemRepo(), clock).Credit(ctx, batch.ID, "MAIN", qty)
		if err != nil {
			return err
		}
		mv, err := inventory.NewMovement(inventory.MovementTypeIn, batch, change, testNow)
		if err != nil {
			return err
		}
		return repos.MovementRepo().Append(ctx, mv)
	}

	t.Run("commits on success", func(t *testing.T) {
		require.NoError(t, scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			return credit(repos, 4)
		}))

		item, err := NewGormInventoryItemRepository(db).FindByBatchAndLocation(ctx, batch.ID, "MAIN")
		require.NoError(t, err)
		assert.Equal(t, int64(4), item.QtyOnHand)
	})

	t.Run("rolls back stock and ledger together", func(t *testing.T) {
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := credit(repos, 6); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		item, err := NewGormInventoryItemRepository(db).FindByBatchAndLocation(ctx, batch.ID, "MAIN")
		require.NoError(t, err)
		assert.Equal(t, int64(4), item.QtyOnHand)

		_, total, err := NewGormMovementRepository(db).Find(ctx, inventory.MovementFilter{BatchID: batch.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}
