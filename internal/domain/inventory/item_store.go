package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// StockChange describes one applied credit or debit
type StockChange struct {
	Item   *InventoryItem
	Before int64
	After  int64
}

// Delta returns the signed quantity change
func (c StockChange) Delta() int64 {
	return c.After - c.Before
}

// ItemStore is the only path through which on-hand quantities change.
// Every method must run inside the caller's transaction.
type ItemStore struct {
	repo  InventoryItemRepository
	clock func() time.Time
}

// NewItemStore creates an ItemStore over a transaction-scoped repository
func NewItemStore(repo InventoryItemRepository, clock func() time.Time) *ItemStore {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &ItemStore{repo: repo, clock: clock}
}

// Get returns the locked on-hand quantity of a batch at a location.
// found is false when no row exists yet.
func (s *ItemStore) Get(ctx context.Context, batchID uuid.UUID, location string) (int64, bool, error) {
	item, err := s.repo.FindForUpdate(ctx, batchID, NormalizeLocation(location))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read inventory row: %w", err)
	}
	return item.QtyOnHand, true, nil
}

// Credit adds amount to a batch at a location, creating the row if needed
func (s *ItemStore) Credit(ctx context.Context, batchID uuid.UUID, location string, amount int64) (StockChange, error) {
	if amount <= 0 {
		return StockChange{}, shared.NewValidationError("Credit amount must be positive")
	}
	loc, err := ValidateLocation(location)
	if err != nil {
		return StockChange{}, err
	}
	item, err := s.repo.GetOrCreateForUpdate(ctx, batchID, loc)
	if err != nil {
		return StockChange{}, fmt.Errorf("load inventory row: %w", err)
	}
	before := item.QtyOnHand
	if err := item.Credit(amount, s.clock()); err != nil {
		return StockChange{}, err
	}
	if err := s.repo.SaveWithLock(ctx, item); err != nil {
		return StockChange{}, err
	}
	return StockChange{Item: item, Before: before, After: item.QtyOnHand}, nil
}

// Debit removes amount from a batch at a location.
// It fails with InsufficientStock, leaving the row unchanged, when the
// location holds less than amount or has never held this batch.
func (s *ItemStore) Debit(ctx context.Context, batchID uuid.UUID, location string, amount int64) (StockChange, error) {
	if amount <= 0 {
		return StockChange{}, shared.NewValidationError("Debit amount must be positive")
	}
	loc := NormalizeLocation(location)
	item, err := s.repo.FindForUpdate(ctx, batchID, loc)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return StockChange{}, shared.NewDomainErrorf(shared.CodeInsufficientStock,
				"Insufficient stock at %s: available 0, requested %d", loc, amount)
		}
		return StockChange{}, fmt.Errorf("load inventory row: %w", err)
	}
	before := item.QtyOnHand
	if err := item.Debit(amount, s.clock()); err != nil {
		return StockChange{}, err
	}
	if err := s.repo.SaveWithLock(ctx, item); err != nil {
		return StockChange{}, err
	}
	return StockChange{Item: item, Before: before, After: item.QtyOnHand}, nil
}
