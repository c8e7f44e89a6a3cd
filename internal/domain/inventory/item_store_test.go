package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInventoryItemRepository is a mock implementation of InventoryItemRepository
type MockInventoryItemRepository struct {
	mock.Mock
}

func (m *MockInventoryItemRepository) FindByBatchAndLocation(ctx context.Context, batchID uuid.UUID, location string) (*InventoryItem, error) {
	args := m.Called(ctx, batchID, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindForUpdate(ctx context.Context, batchID uuid.UUID, location string) (*InventoryItem, error) {
	args := m.Called(ctx, batchID, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]InventoryItem, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) GetOrCreateForUpdate(ctx context.Context, batchID uuid.UUID, location string) (*InventoryItem, error) {
	args := m.Called(ctx, batchID, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) SaveWithLock(ctx context.Context, item *InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func fixedClock() time.Time { return testNow }

func TestItemStore_Get(t *testing.T) {
	ctx := context.Background()
	batchID := uuid.New()

	t.Run("returns quantity of existing row", func(t *testing.T) {
		repo := new(MockInventoryItemRepository)
		item := &InventoryItem{BatchID: batchID, Location: "MAIN", QtyOnHand: 8}
		repo.On("FindForUpdate", ctx, batchID, "MAIN").Return(item, nil)

		qty, found, err := NewItemStore(repo, fixedClock).Get(ctx, batchID, "")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(8), qty)
		repo.AssertExpectations(t)
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		repo := new(MockInventoryItemRepository)
		repo.On("FindForUpdate", ctx, batchID, "BACK").Return(nil, shared.ErrNotFound)

		qty, found, err := NewItemStore(repo, fixedClock).Get(ctx, batchID, "BACK")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, int64(0), qty)
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		repo := new(MockInventoryItemRepository)
		repo.On("FindForUpdate", ctx, batchID, "MAIN").Return(nil, errors.New("connection reset"))

		_, _, err := NewItemStore(repo, fixedClock).Get(ctx, batchID, "MAIN")
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestItemStore_Credit(t *testing.T) {
	ctx := context.Background()
	batchID := uuid.New()

	repo := new(MockInventoryItemRepository)
	item, err := NewInventoryItem(batchID, "MAIN", testNow)
	require.NoError(t, err)
	repo.On("GetOrCreateForUpdate", ctx, batchID, "MAIN").Return(item, nil)
	repo.On("SaveWithLock", ctx, item).Return(nil)

	change, err := NewItemStore(repo, fixedClock).Credit(ctx, batchID, " ", 5)

	require.NoError(t, err)
	assert.Equal(t, int64(0), change.Before)
	assert.Equal(t, int64(5), change.After)
	assert.Equal(t, int64(5), change.Delta())
	assert.Same(t, item, change.Item)
	repo.AssertExpectations(t)
}

func TestItemStore_Debit(t *testing.T) {
	ctx := context.Background()
	batchID := uuid.New()

	t.Run("debits existing stock", func(t *testing.T) {
		repo := new(MockInventoryItemRepository)
		item := &InventoryItem{BatchID: batchID, Location: "MAIN", QtyOnHand: 10}
		repo.On("FindForUpdate", ctx, batchID, "MAIN").Return(item, nil)
		repo.On("SaveWithLock", ctx, item).Return(nil)

		change, err := NewItemStore(repo, fixedClock).Debit(ctx, batchID, "MAIN", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(10), change.Before)
		assert.Equal(t, int64(7), change.After)
		repo.AssertExpectations(t)
	})

	t.Run("insufficient stock never saves", func(t *testing.T) {
		repo := new(MockInventoryItemRepository)
		item := &InventoryItem{BatchID: batchID, Location: "MAIN", QtyOnHand: 2}
		repo.On("FindForUpdate", ctx, batchID, "MAIN").Return(item, nil)

		_, err := NewItemStore(repo, fixedClock).Debit(ctx, batchID, "MAIN", 3)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(2), item.QtyOnHand)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("missing row is insufficient stock", func(t *testing.T) {
		repo := new(MockInventoryItemRepository)
		repo.On("FindForUpdate", ctx, batchID, "MAIN").Return(nil, shared.ErrNotFound)

		_, err := NewItemStore(repo, fixedClock).Debit(ctx, batchID, "MAIN", 1)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("version conflicts propagate", func(t *testing.T) {
		repo := new(MockInventoryItemRepository)
		item := &InventoryItem{BatchID: batchID, Location: "MAIN", QtyOnHand: 5}
		repo.On("FindForUpdate", ctx, batchID, "MAIN").Return(item, nil)
		repo.On("SaveWithLock", ctx, item).Return(shared.ErrConcurrencyConflict)

		_, err := NewItemStore(repo, fixedClock).Debit(ctx, batchID, "MAIN", 1)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}
