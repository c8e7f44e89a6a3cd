package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testClock advances a millisecond per reading so movements written by one
// test sort in the order they were made
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type ledgerFixture struct {
	db      *gorm.DB
	clock   *testClock
	uow     *appinv.UnitOfWork
	service *appinv.LedgerService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db, err := persistence.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := &testClock{now: time.Date(2024, 12, 15, 10, 0, 0, 0, time.UTC)}
	uow := appinv.NewUnitOfWork(persistence.NewGormTransactionScope(db.DB),
		appinv.EngineConfig{Clock: clock.Now, TimeZone: time.UTC}, nil)
	return &ledgerFixture{db: db.DB, clock: clock, uow: uow, service: appinv.NewLedgerService(uow)}
}

func (f *ledgerFixture) product(t *testing.T, sku string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProductRepository(f.db).Save(context.Background(), p))
	return p
}

// receive stocks a new batch at location and returns its id
func (f *ledgerFixture) receive(t *testing.T, productID uuid.UUID, number, expiry string, qty int64, location string) appinv.BatchResponse {
	t.Helper()
	resp, err := f.service.Receive(context.Background(), "receiver", appinv.ReceiveRequest{
		ProductID:   productID,
		BatchNumber: number,
		ExpiryDate:  expiry,
		UnitCost:    decimal.NewFromInt(2),
		Quantity:    qty,
		Location:    location,
	})
	require.NoError(t, err)
	return *resp
}

func (f *ledgerFixture) onHand(t *testing.T, batchID uuid.UUID, location string) int64 {
	t.Helper()
	stock, err := f.service.GetOnHandAt(context.Background(), batchID, location)
	require.NoError(t, err)
	return stock.Total
}

func (f *ledgerFixture) movements(t *testing.T, batchID uuid.UUID) []inventory.Movement {
	t.Helper()
	var filter inventory.MovementFilter
	filter.BatchID = batchID
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"
	out, _, err := persistence.NewGormMovementRepository(f.db).Find(context.Background(), filter)
	require.NoError(t, err)
	return out
}

// assertConsistent checks every batch against its movement ledger
func (f *ledgerFixture) assertConsistent(t *testing.T) {
	t.Helper()
	found, _, err := f.service.ReconcileAll(context.Background(), 50)
	require.NoError(t, err)
	require.Empty(t, found, "on-hand quantities disagree with the movement ledger")
}
