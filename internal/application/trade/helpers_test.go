package trade_test

import (
	"context"
	"testing"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	apptrade "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tradeFixture struct {
	db         *gorm.DB
	now        time.Time
	ledger     *appinv.LedgerService
	sales      *apptrade.SalesService
	purchasing *apptrade.PurchasingService
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	db, err := persistence.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &tradeFixture{db: db.DB, now: time.Date(2024, 12, 15, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time {
		f.now = f.now.Add(time.Millisecond)
		return f.now
	}
	uow := appinv.NewUnitOfWork(persistence.NewGormTransactionScope(db.DB), appinv.EngineConfig{Clock: clock}, nil)
	f.ledger = appinv.NewLedgerService(uow)
	f.sales = apptrade.NewSalesService(uow)
	f.purchasing = apptrade.NewPurchasingService(uow)
	return f
}

func (f *tradeFixture) product(t *testing.T, sku string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, f.now)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProductRepository(f.db).Save(context.Background(), p))
	return p
}

func (f *tradeFixture) onHand(t *testing.T, batchID uuid.UUID) int64 {
	t.Helper()
	stock, err := f.ledger.GetOnHand(context.Background(), batchID)
	require.NoError(t, err)
	return stock.Total
}

func (f *tradeFixture) movements(t *testing.T, batchID uuid.UUID) []inventory.Movement {
	t.Helper()
	var filter inventory.MovementFilter
	filter.BatchID = batchID
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"
	out, _, err := persistence.NewGormMovementRepository(f.db).Find(context.Background(), filter)
	require.NoError(t, err)
	return out
}

func (f *tradeFixture) assertConsistent(t *testing.T) {
	t.Helper()
	found, _, err := f.ledger.ReconcileAll(context.Background(), 50)
	require.NoError(t, err)
	require.Empty(t, found)
}
