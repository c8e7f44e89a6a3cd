package inventory

import (
	"context"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Stock quantities must only change through an inventory.ItemStore built on
// ItemRepo, and every change must be followed by a MovementRepo append inside
// the same transaction.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() inventory.BatchRepository
	// ItemRepo returns the inventory item repository scoped to the current transaction
	ItemRepo() inventory.InventoryItemRepository
	// MovementRepo returns the movement ledger scoped to the current transaction
	MovementRepo() inventory.MovementRepository
	// DeductionRepo returns the deduction repository scoped to the current transaction
	DeductionRepo() inventory.DeductionRepository
	// SalesOrderRepo returns the sale repository scoped to the current transaction
	SalesOrderRepo() trade.SalesOrderRepository
	// PurchaseOrderRepo returns the purchase repository scoped to the current transaction
	PurchaseOrderRepo() trade.PurchaseOrderRepository
}
