package trade

import (
	"context"
	"errors"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
)

// PurchasingService records supplier deliveries. Every line becomes a batch.
// A purchase can only be edited or deleted while none of its batches has been
// sold from and all of the received stock is still at the receiving location.
type PurchasingService struct {
	uow *appinv.UnitOfWork
}

// NewPurchasingService creates a new PurchasingService
func NewPurchasingService(uow *appinv.UnitOfWork) *PurchasingService {
	return &PurchasingService{uow: uow}
}

// GetPurchase returns a purchase with its lines
func (s *PurchasingService) GetPurchase(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	var resp PurchaseResponse
	err := s.uow.Run(ctx, "purchasing", "get", "", func(ctx context.Context, _ *appinv.Engine, repos appinv.TransactionalRepositories) error {
		order, err := repos.PurchaseOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := relabel(ctx, repos, order); err != nil {
			return err
		}
		resp = ToPurchaseResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReceivePurchase records a purchase and receives every line as a new batch
func (s *PurchasingService) ReceivePurchase(ctx context.Context, actor string, req PurchaseRequest) (*PurchaseResponse, error) {
	var resp PurchaseResponse
	err := s.uow.Run(ctx, "purchasing", "receive", actor, func(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories) error {
		now := s.uow.Now()
		order, err := trade.NewPurchaseOrder(req.Supplier, req.InvoiceNumber, req.Location, actor, now)
		if err != nil {
			return err
		}
		if err := s.receiveLines(ctx, e, repos, order, nil, req.Lines, now); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().Create(ctx, order); err != nil {
			return err
		}
		resp = ToPurchaseResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePurchase takes the old receipts back out of stock and receives the
// new lines. A line naming one of the purchase's own batches by its current
// label refills that batch, provided its expiry date and cost are unchanged.
func (s *PurchasingService) UpdatePurchase(ctx context.Context, actor string, id uuid.UUID, req PurchaseRequest) (*PurchaseResponse, error) {
	var resp PurchaseResponse
	err := s.uow.Run(ctx, "purchasing", "update", actor, func(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories) error {
		now := s.uow.Now()
		order, err := repos.PurchaseOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := rollbackPurchase(ctx, e, order); err != nil {
			return err
		}

		previous := &trade.PurchaseOrder{Lines: append([]trade.PurchaseOrderLine(nil), order.Lines...)}
		if err := order.Revise(req.Supplier, req.InvoiceNumber, req.Location, actor, now); err != nil {
			return err
		}
		if err := s.receiveLines(ctx, e, repos, order, previous, req.Lines, now); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().ReplaceLines(ctx, order.ID, order.Lines); err != nil {
			return err
		}
		resp = ToPurchaseResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePurchase takes a purchase's stock back out and removes it.
// Its batches remain, empty, so the movement history stays resolvable.
func (s *PurchasingService) DeletePurchase(ctx context.Context, actor string, id uuid.UUID) error {
	return s.uow.Run(ctx, "purchasing", "delete", actor, func(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories) error {
		order, err := repos.PurchaseOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := rollbackPurchase(ctx, e, order); err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().Delete(ctx, order.ID)
	})
}

func rollbackPurchase(ctx context.Context, e *appinv.Engine, order *trade.PurchaseOrder) error {
	lines := make([]appinv.ReceiptLine, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = appinv.ReceiptLine{BatchID: l.BatchID, Location: l.Location, Quantity: l.Quantity}
	}
	src := appinv.Source{Type: inventory.SourceTypePurchase, ID: order.ID.String(), Reference: order.InvoiceNumber}
	return e.RollbackReceipts(ctx, lines, src)
}

// relabel refreshes line labels from the batches, which may have been renamed
// since the purchase was written
func relabel(ctx context.Context, repos appinv.TransactionalRepositories, order *trade.PurchaseOrder) error {
	done := make(map[uuid.UUID]bool, len(order.Lines))
	for _, l := range order.Lines {
		if done[l.BatchID] {
			continue
		}
		done[l.BatchID] = true
		batch, err := repos.BatchRepo().FindByID(ctx, l.BatchID)
		if err != nil {
			return err
		}
		order.RelabelBatch(batch.ID, batch.BatchNumber)
	}
	return nil
}

func (s *PurchasingService) receiveLines(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories, order, previous *trade.PurchaseOrder, lines []PurchaseLineRequest, now time.Time) error {
	if len(lines) == 0 {
		return shared.NewValidationError("At least one line is required")
	}
	src := appinv.Source{Type: inventory.SourceTypePurchase, ID: order.ID.String(), Reference: order.InvoiceNumber}
	seen := make(map[string]bool, len(lines))

	for _, l := range lines {
		key := l.ProductID.String() + "/" + inventory.BatchNumberKey(l.BatchNumber)
		if seen[key] {
			return shared.NewDomainErrorf(shared.CodeDuplicateBatchNumber,
				"Batch number %q is listed twice on this purchase", l.BatchNumber)
		}
		seen[key] = true

		var (
			batch *inventory.Batch
			err   error
		)
		if previous != nil {
			batch, err = ownBatch(ctx, repos, previous, l)
			if err != nil {
				return err
			}
		}
		if batch != nil {
			if err := refill(ctx, e, batch, l, order.Location, src); err != nil {
				return err
			}
		} else {
			batch, err = e.Receive(ctx, appinv.ReceiveInput{
				Batch: appinv.CreateBatchInput{
					ProductID:        l.ProductID,
					BatchNumber:      l.BatchNumber,
					ExpiryDate:       l.ExpiryDate,
					UnitCost:         l.UnitCost,
					QuantityReceived: l.Quantity,
				},
				Location: order.Location,
				Source:   src,
			})
			if err != nil {
				return err
			}
		}
		if _, err := order.AddLine(batch, l.Quantity, now); err != nil {
			return err
		}
	}
	return nil
}

// ownBatch returns the batch currently labelled as the line names it when
// that batch was received by the purchase being edited
func ownBatch(ctx context.Context, repos appinv.TransactionalRepositories, previous *trade.PurchaseOrder, l PurchaseLineRequest) (*inventory.Batch, error) {
	batch, err := repos.BatchRepo().FindByNumber(ctx, l.ProductID, l.BatchNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if previous.LineForBatch(batch.ID) == nil {
		return nil, nil
	}
	return batch, nil
}

func refill(ctx context.Context, e *appinv.Engine, batch *inventory.Batch, l PurchaseLineRequest, location string, src appinv.Source) error {
	expiry, err := inventory.ParseExpiryDate(l.ExpiryDate)
	if err != nil {
		return err
	}
	if !inventory.DateOf(expiry).Equal(batch.ExpiryDate) || !l.UnitCost.Equal(batch.UnitCost) {
		return shared.NewDomainErrorf(shared.CodeDuplicateBatchNumber,
			"Batch number %q already exists for this product with a different expiry date or cost", l.BatchNumber)
	}
	return e.Refill(ctx, batch, l.Quantity, location, src)
}
