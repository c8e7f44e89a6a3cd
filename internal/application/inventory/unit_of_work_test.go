package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingMetrics struct {
	mu        sync.Mutex
	movements []inventory.Movement
	rejected  []string
}

func (m *recordingMetrics) RecordMovements(_ context.Context, movements []inventory.Movement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movements...)
}

func (m *recordingMetrics) RecordRejected(_ context.Context, operation string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, operation)
}

func TestUnitOfWork_Run(t *testing.T) {
	ctx := context.Background()
	db, err := persistence.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	uow := appinv.NewUnitOfWork(persistence.NewGormTransactionScope(db.DB), appinv.EngineConfig{}, zap.New(core))
	metrics := &recordingMetrics{}
	uow.SetMetrics(metrics)
	service := appinv.NewLedgerService(uow)

	f := &ledgerFixture{db: db.DB, clock: &testClock{now: uow.Now()}, uow: uow, service: service}
	p := f.product(t, "TEA")
	b := f.receive(t, p.ID, "T-1", "2099-01-01", 3, "")

	t.Run("committed work reports its movements", func(t *testing.T) {
		require.Len(t, metrics.movements, 1)
		assert.Equal(t, b.ID, metrics.movements[0].BatchID)

		entries := logs.FilterMessage("ledger updated").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "ledger.receive", entries[0].ContextMap()["operation"])
		assert.Equal(t, "receiver", entries[0].ContextMap()["actor"])
	})

	t.Run("domain rejections are warnings", func(t *testing.T) {
		_, err := service.Adjust(ctx, "auditor", appinv.AdjustRequest{BatchID: b.ID, Delta: -5})
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		assert.Equal(t, []string{"ledger.adjust"}, metrics.rejected)
		entries := logs.FilterMessage("ledger operation rejected").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, shared.CodeInsufficientStock, entries[0].ContextMap()["code"])
	})

	t.Run("unknown movement source is rejected", func(t *testing.T) {
		err := uow.Run(ctx, "ledger", "custom", "ops", func(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories) error {
			batch, err := repos.BatchRepo().FindByID(ctx, b.ID)
			if err != nil {
				return err
			}
			_, err = e.ReceiveInto(ctx, batch, 4, "MAIN", appinv.Source{Type: "TRANSFER"})
			return err
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.ErrorContains(t, err, "TRANSFER")
		assert.Equal(t, int64(3), f.onHand(t, b.ID, "MAIN"), "the credit is rolled back")
	})

	t.Run("other failures are errors and roll back", func(t *testing.T) {
		boom := errors.New("disk on fire")
		err := uow.Run(ctx, "ledger", "custom", "ops", func(ctx context.Context, e *appinv.Engine, _ appinv.TransactionalRepositories) error {
			if _, err := e.Adjust(ctx, appinv.AdjustInput{BatchID: b.ID, Delta: 10}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, logs.FilterMessage("ledger operation failed").FilterLevelExact(zapcore.ErrorLevel).Len())
		assert.Equal(t, int64(3), f.onHand(t, b.ID, "MAIN"))
		assert.Len(t, metrics.movements, 1, "rolled back movements are not reported")
	})
}
