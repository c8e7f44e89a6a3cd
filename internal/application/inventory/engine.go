package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EngineConfig holds the settings shared by every Engine
type EngineConfig struct {
	// Clock returns the current instant. Defaults to time.Now in UTC.
	Clock func() time.Time
	// TimeZone decides which calendar day "today" is when checking expiry
	TimeZone *time.Location
}

func (c EngineConfig) now() time.Time {
	if c.Clock == nil {
		return time.Now().UTC()
	}
	return c.Clock()
}

func (c EngineConfig) today() time.Time {
	return inventory.Today(c.now(), c.TimeZone)
}

// Source identifies the document a movement is recorded for
type Source struct {
	Type      inventory.SourceType
	ID        string
	Reference string
}

// CreateBatchInput describes a new batch
type CreateBatchInput struct {
	ProductID        uuid.UUID
	BatchNumber      string
	ExpiryDate       string
	UnitCost         decimal.Decimal
	QuantityReceived int64
}

// ReceiveInput describes a batch arriving into stock
type ReceiveInput struct {
	Batch    CreateBatchInput
	Location string
	Source   Source
}

// AllocateInput describes a quantity of a product to draw from stock
type AllocateInput struct {
	ProductID uuid.UUID
	Quantity  int64
	Location  string
	Source    Source
}

// ReceiptLine is a previously received quantity to take back out of stock
type ReceiptLine struct {
	BatchID  uuid.UUID
	Location string
	Quantity int64
}

// AdjustInput describes a manual correction of on-hand stock
type AdjustInput struct {
	BatchID  uuid.UUID
	Location string
	Delta    int64
	Note     string
}

// Engine applies ledger operations on one transaction's repositories.
// It is created per unit of work and must not outlive it.
type Engine struct {
	repos     TransactionalRepositories
	items     *inventory.ItemStore
	policy    inventory.FEFOPolicy
	cfg       EngineConfig
	actor     string
	movements []inventory.Movement
}

// NewEngine creates an Engine acting on behalf of actor
func NewEngine(repos TransactionalRepositories, cfg EngineConfig, actor string) *Engine {
	return &Engine{
		repos: repos,
		items: inventory.NewItemStore(repos.ItemRepo(), cfg.now),
		cfg:   cfg,
		actor: actor,
	}
}

// Movements returns the movements appended so far
func (e *Engine) Movements() []inventory.Movement {
	return e.movements
}

// CreateBatch registers a batch without touching stock
func (e *Engine) CreateBatch(ctx context.Context, in CreateBatchInput) (*inventory.Batch, error) {
	if _, err := e.findProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	expiry, err := inventory.ParseExpiryDate(in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	batch, err := inventory.NewBatch(in.ProductID, in.BatchNumber, expiry, in.UnitCost, in.QuantityReceived, e.cfg.now())
	if err != nil {
		return nil, err
	}

	taken, err := e.repos.BatchRepo().ExistsByNumber(ctx, batch.ProductID, batch.BatchNumber, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicateBatchNumber(batch.BatchNumber)
	}
	if err := e.repos.BatchRepo().Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// RenameBatch corrects a batch label. A case-only change is a no-op.
func (e *Engine) RenameBatch(ctx context.Context, batchID uuid.UUID, newNumber string) (*inventory.Batch, error) {
	batch, err := e.repos.BatchRepo().FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	changed, err := batch.Rename(newNumber, e.cfg.now())
	if err != nil || !changed {
		return batch, err
	}

	taken, err := e.repos.BatchRepo().ExistsByNumber(ctx, batch.ProductID, batch.BatchNumber, batch.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicateBatchNumber(batch.BatchNumber)
	}
	if err := e.repos.BatchRepo().UpdateNumber(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Receive creates a batch and credits its received quantity at the location
func (e *Engine) Receive(ctx context.Context, in ReceiveInput) (*inventory.Batch, error) {
	loc, err := inventory.ValidateLocation(in.Location)
	if err != nil {
		return nil, err
	}
	batch, err := e.CreateBatch(ctx, in.Batch)
	if err != nil {
		return nil, err
	}
	if batch.QuantityReceived > 0 {
		if _, err := e.ReceiveInto(ctx, batch, batch.QuantityReceived, loc, in.Source); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

// ReceiveInto credits an existing batch and records an IN movement.
// It returns the new on-hand quantity at the location.
func (e *Engine) ReceiveInto(ctx context.Context, batch *inventory.Batch, quantity int64, location string, src Source) (int64, error) {
	change, err := e.items.Credit(ctx, batch.ID, location, quantity)
	if err != nil {
		return 0, err
	}
	src = withDefaultType(src, inventory.SourceTypePurchase)
	if err := e.record(ctx, inventory.MovementTypeIn, batch, change, src,
		note("Purchase invoice: ", src.Reference, "Purchase received")); err != nil {
		return 0, err
	}
	return change.After, nil
}

// Refill receives quantity units into an existing batch on behalf of the
// edited purchase that created it. The batch's received quantity is restated
// to match the new purchase line.
func (e *Engine) Refill(ctx context.Context, batch *inventory.Batch, quantity int64, location string, src Source) error {
	changed, err := batch.Restate(quantity, e.cfg.now())
	if err != nil {
		return err
	}
	if changed {
		if err := e.repos.BatchRepo().UpdateQuantityReceived(ctx, batch); err != nil {
			return err
		}
	}
	if quantity > 0 {
		if _, err := e.ReceiveInto(ctx, batch, quantity, location, src); err != nil {
			return err
		}
	}
	return nil
}

// Allocate draws quantity units of a product from non-expired batches at a
// location, earliest expiry first. Nothing is debited when the sellable stock
// cannot cover the full quantity.
func (e *Engine) Allocate(ctx context.Context, in AllocateInput) ([]inventory.Allocation, error) {
	if in.Quantity <= 0 {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	loc, err := inventory.ValidateLocation(in.Location)
	if err != nil {
		return nil, err
	}
	product, err := e.findProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	batches, err := e.repos.BatchRepo().FindByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	sellable := e.policy.Sellable(batches, e.cfg.today())

	byID := make(map[uuid.UUID]*inventory.Batch, len(sellable))
	candidates := make([]inventory.StockCandidate, 0, len(sellable))
	for i := range sellable {
		qty, found, err := e.items.Get(ctx, sellable[i].ID, loc)
		if err != nil {
			return nil, err
		}
		if !found || qty <= 0 {
			continue
		}
		byID[sellable[i].ID] = &sellable[i]
		candidates = append(candidates, inventory.StockCandidate{Batch: sellable[i], Available: qty})
	}

	picks, shortfall := e.policy.Plan(candidates, loc, in.Quantity)
	if shortfall > 0 {
		return nil, shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Insufficient non-expired stock for product %s at location %s", product.Label(), loc)
	}

	src := withDefaultType(in.Source, inventory.SourceTypeSale)
	for _, pick := range picks {
		change, err := e.items.Debit(ctx, pick.BatchID, loc, pick.Quantity)
		if err != nil {
			return nil, err
		}
		if err := e.record(ctx, inventory.MovementTypeOut, byID[pick.BatchID], change, src,
			note("Sale ref: ", src.Reference, "Sale")); err != nil {
			return nil, err
		}
	}
	return picks, nil
}

// RollbackDeductions puts the stock drawn by a sale back where it came from
func (e *Engine) RollbackDeductions(ctx context.Context, deductions []inventory.Deduction, src Source) error {
	src = withDefaultType(src, inventory.SourceTypeSale)
	batches := make(map[uuid.UUID]*inventory.Batch)
	for _, d := range deductions {
		batch, err := e.cachedBatch(ctx, batches, d.BatchID)
		if err != nil {
			return err
		}
		change, err := e.items.Credit(ctx, d.BatchID, d.Location, d.Quantity)
		if err != nil {
			return err
		}
		if err := e.record(ctx, inventory.MovementTypeReturn, batch, change, src,
			note("Sale rollback ref: ", src.Reference, "Sale rollback")); err != nil {
			return err
		}
	}
	return nil
}

// RollbackReceipts takes received stock back out. It refuses once any sale
// has drawn from one of the batches, or when stock has been moved or adjusted
// away so the location no longer holds the received quantity.
func (e *Engine) RollbackReceipts(ctx context.Context, lines []ReceiptLine, src Source) error {
	src = withDefaultType(src, inventory.SourceTypePurchase)
	batches := make(map[uuid.UUID]*inventory.Batch)

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		batch, err := e.cachedBatch(ctx, batches, line.BatchID)
		if err != nil {
			return err
		}
		consumed, err := e.repos.DeductionRepo().ExistsByBatch(ctx, line.BatchID)
		if err != nil {
			return err
		}
		if consumed {
			return shared.NewDomainErrorf(shared.CodeBatchAlreadyConsumed,
				"Cannot edit/delete purchase: batch %s has already been sold", batch.BatchNumber)
		}
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		batch := batches[line.BatchID]
		onHand, _, err := e.items.Get(ctx, line.BatchID, line.Location)
		if err != nil {
			return err
		}
		if onHand < line.Quantity {
			return shared.NewDomainErrorf(shared.CodeInsufficientStock,
				"Cannot edit/delete purchase: insufficient stock to rollback batch %s", batch.BatchNumber)
		}
		change, err := e.items.Debit(ctx, line.BatchID, line.Location, line.Quantity)
		if err != nil {
			return err
		}
		if err := e.record(ctx, inventory.MovementTypeReturn, batch, change, src,
			note("Purchase rollback invoice: ", src.Reference, "Purchase rollback")); err != nil {
			return err
		}
	}
	return nil
}

// Adjust applies a signed manual correction and returns the new on-hand quantity
func (e *Engine) Adjust(ctx context.Context, in AdjustInput) (int64, error) {
	if in.Delta == 0 {
		return 0, shared.NewValidationError("Adjustment delta cannot be zero")
	}
	loc, err := inventory.ValidateLocation(in.Location)
	if err != nil {
		return 0, err
	}
	batch, err := e.repos.BatchRepo().FindByID(ctx, in.BatchID)
	if err != nil {
		return 0, err
	}

	var change inventory.StockChange
	if in.Delta > 0 {
		change, err = e.items.Credit(ctx, batch.ID, loc, in.Delta)
	} else {
		change, err = e.items.Debit(ctx, batch.ID, loc, -in.Delta)
	}
	if err != nil {
		return 0, err
	}

	src := Source{Type: inventory.SourceTypeManual, ID: batch.ID.String()}
	if err := e.record(ctx, inventory.MovementTypeAdjustment, batch, change, src,
		note("Adj @"+loc+": ", in.Note, "Adj @"+loc)); err != nil {
		return 0, err
	}
	return change.After, nil
}

func (e *Engine) record(ctx context.Context, movementType inventory.MovementType, batch *inventory.Batch, change inventory.StockChange, src Source, text string) error {
	if !src.Type.IsValid() {
		return shared.NewValidationError("Invalid movement source %q", src.Type)
	}
	m, err := inventory.NewMovement(movementType, batch, change, e.cfg.now())
	if err != nil {
		return err
	}
	m.WithSource(src.Type, src.ID).WithNote(text).WithActor(e.actor)
	if err := e.repos.MovementRepo().Append(ctx, m); err != nil {
		return fmt.Errorf("append %s movement: %w", movementType, err)
	}
	e.movements = append(e.movements, *m)
	return nil
}

func (e *Engine) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := e.repos.ProductRepo().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Product", id)
		}
		return nil, err
	}
	return product, nil
}

func (e *Engine) cachedBatch(ctx context.Context, cache map[uuid.UUID]*inventory.Batch, id uuid.UUID) (*inventory.Batch, error) {
	if b, ok := cache[id]; ok {
		return b, nil
	}
	b, err := e.repos.BatchRepo().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = b
	return b, nil
}

func duplicateBatchNumber(number string) error {
	return shared.NewDomainErrorf(shared.CodeDuplicateBatchNumber,
		"Batch number %q already exists for this product", number)
}

func withDefaultType(src Source, t inventory.SourceType) Source {
	if src.Type == "" {
		src.Type = t
	}
	return src
}

func note(prefix, value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return prefix + value
}
