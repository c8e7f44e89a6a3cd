package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

const serviceName = "ledger"

// LedgerService exposes the batch, stock and movement operations of the ledger.
// Each call is its own transaction.
type LedgerService struct {
	uow *UnitOfWork
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(uow *UnitOfWork) *LedgerService {
	return &LedgerService{uow: uow}
}

// CreateBatch registers a batch without crediting any stock
func (s *LedgerService) CreateBatch(ctx context.Context, actor string, req CreateBatchRequest) (*BatchResponse, error) {
	var resp BatchResponse
	err := s.uow.Run(ctx, serviceName, "create_batch", actor, func(ctx context.Context, e *Engine, _ TransactionalRepositories) error {
		batch, err := e.CreateBatch(ctx, req.toInput())
		if err != nil {
			return err
		}
		resp = ToBatchResponse(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Receive creates a batch and credits its quantity at the requested location
func (s *LedgerService) Receive(ctx context.Context, actor string, req ReceiveRequest) (*BatchResponse, error) {
	var resp BatchResponse
	err := s.uow.Run(ctx, serviceName, "receive", actor, func(ctx context.Context, e *Engine, _ TransactionalRepositories) error {
		batch, err := e.Receive(ctx, ReceiveInput{
			Batch: CreateBatchInput{
				ProductID:        req.ProductID,
				BatchNumber:      req.BatchNumber,
				ExpiryDate:       req.ExpiryDate,
				UnitCost:         req.UnitCost,
				QuantityReceived: req.Quantity,
			},
			Location: req.Location,
			Source:   Source{Type: inventory.SourceTypePurchase, Reference: req.Reference},
		})
		if err != nil {
			return err
		}
		resp = ToBatchResponse(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenameBatch corrects the label of a batch
func (s *LedgerService) RenameBatch(ctx context.Context, actor string, batchID uuid.UUID, req RenameBatchRequest) (*BatchResponse, error) {
	var resp BatchResponse
	err := s.uow.Run(ctx, serviceName, "rename_batch", actor, func(ctx context.Context, e *Engine, _ TransactionalRepositories) error {
		batch, err := e.RenameBatch(ctx, batchID, req.BatchNumber)
		if err != nil {
			return err
		}
		resp = ToBatchResponse(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Adjust applies a manual stock correction
func (s *LedgerService) Adjust(ctx context.Context, actor string, req AdjustRequest) (*AdjustResponse, error) {
	var resp AdjustResponse
	err := s.uow.Run(ctx, serviceName, "adjust", actor, func(ctx context.Context, e *Engine, _ TransactionalRepositories) error {
		qty, err := e.Adjust(ctx, AdjustInput{
			BatchID:  req.BatchID,
			Location: req.Location,
			Delta:    req.Delta,
			Note:     req.Note,
		})
		if err != nil {
			return err
		}
		resp = AdjustResponse{BatchID: req.BatchID, Location: inventory.NormalizeLocation(req.Location), QtyOnHand: qty}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Allocate draws stock FEFO without a sale document
func (s *LedgerService) Allocate(ctx context.Context, actor string, req AllocateRequest) ([]AllocationResponse, error) {
	var resp []AllocationResponse
	err := s.uow.Run(ctx, serviceName, "allocate", actor, func(ctx context.Context, e *Engine, _ TransactionalRepositories) error {
		picks, err := e.Allocate(ctx, AllocateInput{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Location:  req.Location,
			Source:    Source{Type: inventory.SourceTypeSale, Reference: req.Reference},
		})
		if err != nil {
			return err
		}
		resp = ToAllocationResponses(picks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetOnHand returns a batch with its quantity at every location it has been stocked at
func (s *LedgerService) GetOnHand(ctx context.Context, batchID uuid.UUID) (*BatchStockResponse, error) {
	var resp BatchStockResponse
	err := s.uow.Run(ctx, serviceName, "get_on_hand", "", func(ctx context.Context, _ *Engine, repos TransactionalRepositories) error {
		batch, err := repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		items, err := repos.ItemRepo().FindByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		resp = BatchStockResponse{
			Batch:     ToBatchResponse(batch),
			Expired:   batch.IsExpired(s.uow.Config().today()),
			Locations: make([]StockLevelResponse, 0, len(items)),
		}
		for _, item := range items {
			resp.Total += item.QtyOnHand
			resp.Locations = append(resp.Locations, StockLevelResponse{
				Location:  item.Location,
				QtyOnHand: item.QtyOnHand,
				Version:   item.Version,
				UpdatedAt: item.UpdatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOnHandAt returns a batch with its quantity at one location. A location
// the batch was never stocked at reads as zero.
func (s *LedgerService) GetOnHandAt(ctx context.Context, batchID uuid.UUID, location string) (*BatchStockResponse, error) {
	loc, err := inventory.ValidateLocation(location)
	if err != nil {
		return nil, err
	}
	var resp BatchStockResponse
	err = s.uow.Run(ctx, serviceName, "get_on_hand", "", func(ctx context.Context, _ *Engine, repos TransactionalRepositories) error {
		batch, err := repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		level := StockLevelResponse{Location: loc}
		item, err := repos.ItemRepo().FindByBatchAndLocation(ctx, batchID, loc)
		switch {
		case err == nil:
			level.QtyOnHand, level.Version, level.UpdatedAt = item.QtyOnHand, item.Version, item.UpdatedAt
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}
		resp = BatchStockResponse{
			Batch:     ToBatchResponse(batch),
			Expired:   batch.IsExpired(s.uow.Config().today()),
			Total:     level.QtyOnHand,
			Locations: []StockLevelResponse{level},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMovements returns a page of the movement ledger, newest first
func (s *LedgerService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	f := inventory.MovementFilter{
		Filter:   shared.DefaultFilter(),
		Type:     inventory.MovementType(strings.ToUpper(filter.Type)),
		Location: strings.TrimSpace(filter.Location),
	}
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.BatchID != nil {
		f.BatchID = *filter.BatchID
	}
	if filter.ProductID != nil {
		f.ProductID = *filter.ProductID
	}
	if filter.From != nil {
		f.From = *filter.From
	}
	if filter.To != nil {
		f.To = *filter.To
	}
	if f.Type != "" && !f.Type.IsValid() {
		return nil, 0, shared.NewValidationError("Invalid movement type %q", filter.Type)
	}

	var (
		resp  []MovementResponse
		total int64
	)
	err := s.uow.Run(ctx, serviceName, "list_movements", "", func(ctx context.Context, _ *Engine, repos TransactionalRepositories) error {
		movements, n, err := repos.MovementRepo().Find(ctx, f)
		if err != nil {
			return err
		}
		resp, total = ToMovementResponses(movements), n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return resp, total, nil
}

// Reconcile compares the on-hand rows of a batch with the net of its movements.
// An empty result means the batch is consistent.
func (s *LedgerService) Reconcile(ctx context.Context, batchID uuid.UUID) ([]Discrepancy, error) {
	var out []Discrepancy
	err := s.uow.Run(ctx, serviceName, "reconcile", "", func(ctx context.Context, _ *Engine, repos TransactionalRepositories) error {
		if _, err := repos.BatchRepo().FindByID(ctx, batchID); err != nil {
			return err
		}
		var err error
		out, err = reconcileBatch(ctx, repos, batchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReconcileAll checks every batch page by page. It returns the discrepancies
// found and the number of batches checked.
func (s *LedgerService) ReconcileAll(ctx context.Context, pageSize int) ([]Discrepancy, int, error) {
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}
	var (
		out     []Discrepancy
		checked int
	)
	for page := 1; ; page++ {
		var batches []inventory.Batch
		err := s.uow.Run(ctx, serviceName, "reconcile_all", "", func(ctx context.Context, _ *Engine, repos TransactionalRepositories) error {
			filter := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "created_at", OrderDir: "asc"}
			var err error
			batches, _, err = repos.BatchRepo().FindAll(ctx, filter)
			if err != nil {
				return err
			}
			for _, b := range batches {
				found, err := reconcileBatch(ctx, repos, b.ID)
				if err != nil {
					return err
				}
				out = append(out, found...)
			}
			return nil
		})
		if err != nil {
			return nil, checked, err
		}
		checked += len(batches)
		if len(batches) < pageSize {
			return out, checked, nil
		}
	}
}

func reconcileBatch(ctx context.Context, repos TransactionalRepositories, batchID uuid.UUID) ([]Discrepancy, error) {
	items, err := repos.ItemRepo().FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	net, err := repos.MovementRepo().NetByLocation(ctx, batchID)
	if err != nil {
		return nil, err
	}

	onHand := make(map[string]int64, len(items))
	for _, item := range items {
		onHand[item.Location] = item.QtyOnHand
	}
	locations := make([]string, 0, len(onHand)+len(net))
	for loc := range onHand {
		locations = append(locations, loc)
	}
	for loc := range net {
		if _, ok := onHand[loc]; !ok {
			locations = append(locations, loc)
		}
	}
	sort.Strings(locations)

	var out []Discrepancy
	for _, loc := range locations {
		if onHand[loc] != net[loc] {
			out = append(out, Discrepancy{
				BatchID:    batchID,
				Location:   loc,
				OnHand:     onHand[loc],
				LedgerNet:  net[loc],
				Difference: onHand[loc] - net[loc],
			})
		}
	}
	return out, nil
}
