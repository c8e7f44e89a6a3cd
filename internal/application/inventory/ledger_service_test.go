package inventory_test

import (
	"context"
	"testing"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_AllocateFEFO(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "YOGURT")
	b2 := f.receive(t, p.ID, "B2", "2025-02-01", 5, "")
	b1 := f.receive(t, p.ID, "B1", "2025-01-01", 5, "")

	picks, err := f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 7, Reference: "POS-9"})
	require.NoError(t, err)

	require.Len(t, picks, 2)
	assert.Equal(t, b1.ID, picks[0].BatchID)
	assert.Equal(t, int64(5), picks[0].Quantity)
	assert.Equal(t, b2.ID, picks[1].BatchID)
	assert.Equal(t, int64(2), picks[1].Quantity)
	assert.True(t, decimal.NewFromInt(4).Equal(picks[1].Cost), "quantity * unit cost")

	assert.Equal(t, int64(0), f.onHand(t, b1.ID, "MAIN"))
	assert.Equal(t, int64(3), f.onHand(t, b2.ID, "MAIN"))

	outs := f.movements(t, b2.ID)
	require.Len(t, outs, 2)
	assert.Equal(t, inventory.MovementTypeOut, outs[1].Type)
	assert.Equal(t, "Sale ref: POS-9", outs[1].Note)
	assert.Equal(t, "clerk", outs[1].CreatedBy)
	f.assertConsistent(t)
}

func TestLedgerService_AllocateSkipsExpired(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "CHEESE")
	b1 := f.receive(t, p.ID, "B1", "2025-01-01", 5, "")
	b2 := f.receive(t, p.ID, "B2", "2025-02-01", 5, "")

	f.clock.Set(time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC))

	t.Run("expired stock cannot cover the shortfall", func(t *testing.T) {
		_, err := f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 7})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.ErrorContains(t, err, "CHEESE")

		assert.Equal(t, int64(5), f.onHand(t, b1.ID, "MAIN"), "nothing is debited")
		assert.Equal(t, int64(5), f.onHand(t, b2.ID, "MAIN"))
		assert.Len(t, f.movements(t, b2.ID), 1)
	})

	t.Run("only the live batch is drawn", func(t *testing.T) {
		picks, err := f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 4})
		require.NoError(t, err)
		require.Len(t, picks, 1)
		assert.Equal(t, b2.ID, picks[0].BatchID)
		assert.Equal(t, int64(5), f.onHand(t, b1.ID, "MAIN"))
	})

	t.Run("batch expiring today is still sellable", func(t *testing.T) {
		f.clock.Set(time.Date(2025, 2, 1, 23, 59, 0, 0, time.UTC))
		picks, err := f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, b2.ID, picks[0].BatchID)
	})
	f.assertConsistent(t)
}

func TestLedgerService_AllocateIsPerLocation(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "BREAD")
	f.receive(t, p.ID, "MAIN-1", "2025-01-01", 5, "")
	shop := f.receive(t, p.ID, "SHOP-1", "2025-03-01", 2, "SHOP")

	_, err := f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 3, Location: "SHOP"})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	picks, err := f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 2, Location: "SHOP"})
	require.NoError(t, err)
	assert.Equal(t, shop.ID, picks[0].BatchID)
	assert.Equal(t, "SHOP", picks[0].Location)
}

func TestLedgerService_AllocateValidation(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "EGGS")

	_, err := f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 0})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock, "no batches at all")
}

func TestLedgerService_Receive(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "HONEY")

	t.Run("credits and records IN", func(t *testing.T) {
		b := f.receive(t, p.ID, "H-1", "2026-01-01", 12, " BACK ")
		assert.Equal(t, int64(12), f.onHand(t, b.ID, "BACK"))

		mv := f.movements(t, b.ID)
		require.Len(t, mv, 1)
		assert.Equal(t, inventory.MovementTypeIn, mv[0].Type)
		assert.Equal(t, int64(12), mv[0].Quantity)
		assert.Equal(t, int64(0), mv[0].BalanceBefore)
		assert.Equal(t, "Purchase received", mv[0].Note)
	})

	t.Run("zero quantity records no movement", func(t *testing.T) {
		b := f.receive(t, p.ID, "H-0", "2026-01-01", 0, "")
		assert.Empty(t, f.movements(t, b.ID))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := f.service.Receive(ctx, "r", appinv.ReceiveRequest{ProductID: p.ID, BatchNumber: "X", ExpiryDate: "01/02/2026", Quantity: 1})
		assert.ErrorIs(t, err, shared.ErrValidation)
		_, err = f.service.Receive(ctx, "r", appinv.ReceiveRequest{ProductID: p.ID, BatchNumber: "X", ExpiryDate: "2026-01-01", Quantity: -1})
		assert.ErrorIs(t, err, shared.ErrValidation)
		_, err = f.service.Receive(ctx, "r", appinv.ReceiveRequest{ProductID: p.ID, BatchNumber: "X", ExpiryDate: "2026-01-01", UnitCost: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("duplicate label differing only in case", func(t *testing.T) {
		_, err := f.service.Receive(ctx, "r", appinv.ReceiveRequest{ProductID: p.ID, BatchNumber: "h-1", ExpiryDate: "2026-02-01", Quantity: 1})
		assert.ErrorIs(t, err, shared.ErrDuplicateBatchNumber)
	})
	f.assertConsistent(t)
}

func TestLedgerService_CreateAndRenameBatch(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "OIL")

	created, err := f.service.CreateBatch(ctx, "admin", appinv.CreateBatchRequest{
		ProductID: p.ID, BatchNumber: "OIL-A", ExpiryDate: "2026-05-01", UnitCost: decimal.NewFromInt(7), QuantityReceived: 30,
	})
	require.NoError(t, err)
	assert.Empty(t, f.movements(t, created.ID), "registering a batch moves no stock")
	f.receive(t, p.ID, "OIL-B", "2026-06-01", 1, "")

	t.Run("case-only change is a no-op", func(t *testing.T) {
		got, err := f.service.RenameBatch(ctx, "admin", created.ID, appinv.RenameBatchRequest{BatchNumber: "oil-a"})
		require.NoError(t, err)
		assert.Equal(t, "OIL-A", got.BatchNumber)
	})

	t.Run("label owned by a sibling batch", func(t *testing.T) {
		_, err := f.service.RenameBatch(ctx, "admin", created.ID, appinv.RenameBatchRequest{BatchNumber: "Oil-B"})
		assert.ErrorIs(t, err, shared.ErrDuplicateBatchNumber)
	})

	t.Run("renames", func(t *testing.T) {
		got, err := f.service.RenameBatch(ctx, "admin", created.ID, appinv.RenameBatchRequest{BatchNumber: "OIL-A2"})
		require.NoError(t, err)
		assert.Equal(t, "OIL-A2", got.BatchNumber)

		stock, err := f.service.GetOnHand(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "OIL-A2", stock.Batch.BatchNumber)
		assert.Equal(t, int64(30), stock.Batch.QuantityReceived)
	})

	t.Run("unknown batch", func(t *testing.T) {
		_, err := f.service.RenameBatch(ctx, "admin", uuid.New(), appinv.RenameBatchRequest{BatchNumber: "Z"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLedgerService_Adjust(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "RICE")
	b := f.receive(t, p.ID, "R-1", "2026-01-01", 10, "")

	resp, err := f.service.Adjust(ctx, "auditor", appinv.AdjustRequest{BatchID: b.ID, Delta: -4, Note: "water damage"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), resp.QtyOnHand)
	assert.Equal(t, "MAIN", resp.Location)

	mv := f.movements(t, b.ID)
	require.Len(t, mv, 2)
	last := mv[1]
	assert.Equal(t, inventory.MovementTypeAdjustment, last.Type)
	assert.Equal(t, int64(4), last.Quantity)
	assert.Equal(t, int64(-4), last.SignedQuantity())
	assert.Equal(t, "Adj @MAIN: water damage", last.Note)
	assert.Equal(t, "auditor", last.CreatedBy)

	t.Run("positive delta opens a new location", func(t *testing.T) {
		resp, err := f.service.Adjust(ctx, "auditor", appinv.AdjustRequest{BatchID: b.ID, Location: "COLD", Delta: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.QtyOnHand)
		assert.Equal(t, "Adj @COLD", f.movements(t, b.ID)[2].Note)
	})

	t.Run("never below zero", func(t *testing.T) {
		_, err := f.service.Adjust(ctx, "auditor", appinv.AdjustRequest{BatchID: b.ID, Delta: -7})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(6), f.onHand(t, b.ID, "MAIN"))
	})

	t.Run("zero delta", func(t *testing.T) {
		_, err := f.service.Adjust(ctx, "auditor", appinv.AdjustRequest{BatchID: b.ID, Delta: 0})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown batch", func(t *testing.T) {
		_, err := f.service.Adjust(ctx, "auditor", appinv.AdjustRequest{BatchID: uuid.New(), Delta: 1})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
	f.assertConsistent(t)
}

func TestLedgerService_GetOnHand(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "SALT")
	b := f.receive(t, p.ID, "S-1", "2025-01-01", 8, "")
	_, err := f.service.Adjust(ctx, "a", appinv.AdjustRequest{BatchID: b.ID, Location: "AISLE", Delta: 3})
	require.NoError(t, err)

	stock, err := f.service.GetOnHand(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, stock.Expired)
	assert.Equal(t, int64(11), stock.Total)
	require.Len(t, stock.Locations, 2)
	assert.Equal(t, "AISLE", stock.Locations[0].Location)
	assert.Equal(t, "MAIN", stock.Locations[1].Location)

	f.clock.Set(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	stock, err = f.service.GetOnHand(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stock.Expired)

	_, err = f.service.GetOnHand(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLedgerService_GetOnHandAt(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "PEPPER")
	b := f.receive(t, p.ID, "P-1", "2025-01-01", 8, "")
	_, err := f.service.Adjust(ctx, "a", appinv.AdjustRequest{BatchID: b.ID, Location: "AISLE", Delta: 3})
	require.NoError(t, err)

	stock, err := f.service.GetOnHandAt(ctx, b.ID, " AISLE ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stock.Total)
	require.Len(t, stock.Locations, 1)
	assert.Equal(t, "AISLE", stock.Locations[0].Location)

	stock, err = f.service.GetOnHandAt(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), stock.Total, "blank location reads the default location")

	stock, err = f.service.GetOnHandAt(ctx, b.ID, "BACKROOM")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock.Total)
	assert.Equal(t, "BACKROOM", stock.Locations[0].Location)

	_, err = f.service.GetOnHandAt(ctx, uuid.New(), "MAIN")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLedgerService_ListMovements(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "FLOUR")
	b := f.receive(t, p.ID, "F-1", "2026-01-01", 10, "")
	f.clock.Set(f.clock.Now().Add(time.Hour))
	_, err := f.service.Allocate(ctx, "clerk", appinv.AllocateRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	all, total, err := f.service.ListMovements(ctx, appinv.MovementListFilter{BatchID: &b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "OUT", all[0].Type, "newest first")

	ins, total, err := f.service.ListMovements(ctx, appinv.MovementListFilter{Type: "in", ProductID: &p.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(10), ins[0].Quantity)

	_, _, err = f.service.ListMovements(ctx, appinv.MovementListFilter{Type: "MOVE"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestLedgerService_Reconcile(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.product(t, "NUTS")
	b := f.receive(t, p.ID, "N-1", "2026-01-01", 10, "")
	other := f.receive(t, p.ID, "N-2", "2026-01-01", 4, "")

	found, err := f.service.Reconcile(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, found)

	// a write that bypassed the ledger
	require.NoError(t, f.db.Exec("UPDATE inventory_items SET qty_on_hand = 13 WHERE batch_id = ?", b.ID).Error)

	found, err = f.service.Reconcile(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, appinv.Discrepancy{BatchID: b.ID, Location: "MAIN", OnHand: 13, LedgerNet: 10, Difference: 3}, found[0])

	all, checked, err := f.service.ReconcileAll(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, checked)
	require.Len(t, all, 1)
	assert.NotEqual(t, other.ID, all[0].BatchID)

	_, err = f.service.Reconcile(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
