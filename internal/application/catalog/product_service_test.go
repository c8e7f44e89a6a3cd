package catalog_test

import (
	"context"
	"testing"
	"time"

	appcatalog "github.com/erp/ledger/internal/application/catalog"
	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductService(t *testing.T, now *time.Time) *appcatalog.ProductService {
	t.Helper()
	db, err := persistence.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := func() time.Time { return *now }
	uow := appinv.NewUnitOfWork(persistence.NewGormTransactionScope(db.DB), appinv.EngineConfig{Clock: clock}, nil)
	return appcatalog.NewProductService(uow)
}

func TestProductService_Register(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newProductService(t, &now)

	created, err := svc.Register(ctx, "admin", "YOG-500", appcatalog.RegisterProductRequest{Name: "Yogurt 500g"})
	require.NoError(t, err)
	assert.Equal(t, "YOG-500", created.SKU)
	assert.Equal(t, "Yogurt 500g", created.Name)
	assert.True(t, created.Active)

	t.Run("same name is a no-op", func(t *testing.T) {
		now = now.Add(time.Hour)
		again, err := svc.Register(ctx, "admin", "YOG-500", appcatalog.RegisterProductRequest{Name: " Yogurt 500g "})
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
		assert.True(t, created.UpdatedAt.Equal(again.UpdatedAt))
	})

	t.Run("new name renames", func(t *testing.T) {
		renamed, err := svc.Register(ctx, "admin", "YOG-500", appcatalog.RegisterProductRequest{Name: "Greek Yogurt 500g"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, renamed.ID)

		stored, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Greek Yogurt 500g", stored.Name)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Register(ctx, "admin", " ", appcatalog.RegisterProductRequest{Name: "x"})
		assert.ErrorIs(t, err, shared.ErrValidation)
		_, err = svc.Register(ctx, "admin", "YOG-500", appcatalog.RegisterProductRequest{Name: ""})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestProductService_GetByIDNotFound(t *testing.T) {
	now := time.Now()
	svc := newProductService(t, &now)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
