package trade

import (
	"context"
	"fmt"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
)

// SalesService records sales against FEFO-allocated stock.
// Edits and deletes roll back every prior deduction before anything else happens.
type SalesService struct {
	uow *appinv.UnitOfWork
}

// NewSalesService creates a new SalesService
func NewSalesService(uow *appinv.UnitOfWork) *SalesService {
	return &SalesService{uow: uow}
}

// GetSale returns a sale with its deductions
func (s *SalesService) GetSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	var resp SaleResponse
	err := s.uow.Run(ctx, "sales", "get", "", func(ctx context.Context, _ *appinv.Engine, repos appinv.TransactionalRepositories) error {
		order, err := repos.SalesOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToSaleResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateSale records a sale and allocates every line
func (s *SalesService) CreateSale(ctx context.Context, actor string, req SaleRequest) (*SaleResponse, error) {
	var resp SaleResponse
	err := s.uow.Run(ctx, "sales", "create", actor, func(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories) error {
		now := s.uow.Now()
		order, err := trade.NewSalesOrder(req.Customer, req.Reference, req.Location, actor, now)
		if err != nil {
			return err
		}
		if err := addSaleLines(order, req.Lines, now); err != nil {
			return err
		}
		if err := repos.SalesOrderRepo().Create(ctx, order); err != nil {
			return err
		}
		if err := s.allocateLines(ctx, e, repos, order); err != nil {
			return err
		}
		resp = ToSaleResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateSale replaces the header and lines of a sale. Old deductions are
// returned to stock first, then the new lines are allocated from scratch.
func (s *SalesService) UpdateSale(ctx context.Context, actor string, id uuid.UUID, req SaleRequest) (*SaleResponse, error) {
	var resp SaleResponse
	err := s.uow.Run(ctx, "sales", "update", actor, func(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories) error {
		now := s.uow.Now()
		order, err := repos.SalesOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.rollback(ctx, e, repos, order); err != nil {
			return err
		}

		if err := order.Revise(req.Customer, req.Reference, req.Location, actor, now); err != nil {
			return err
		}
		if err := addSaleLines(order, req.Lines, now); err != nil {
			return err
		}
		if err := repos.SalesOrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		if err := repos.SalesOrderRepo().ReplaceLines(ctx, order.ID, order.Lines); err != nil {
			return err
		}
		if err := s.allocateLines(ctx, e, repos, order); err != nil {
			return err
		}
		resp = ToSaleResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSale returns a sale's stock and removes it
func (s *SalesService) DeleteSale(ctx context.Context, actor string, id uuid.UUID) error {
	return s.uow.Run(ctx, "sales", "delete", actor, func(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories) error {
		order, err := repos.SalesOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.rollback(ctx, e, repos, order); err != nil {
			return err
		}
		return repos.SalesOrderRepo().Delete(ctx, order.ID)
	})
}

// rollback returns the stored deductions of every line to stock and removes them
func (s *SalesService) rollback(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories, order *trade.SalesOrder) error {
	lineIDs := order.LineIDs()
	deductions, err := repos.DeductionRepo().FindByLines(ctx, lineIDs)
	if err != nil {
		return err
	}
	src := appinv.Source{Type: inventory.SourceTypeSale, ID: order.ID.String(), Reference: order.Reference}
	if err := e.RollbackDeductions(ctx, deductions, src); err != nil {
		return err
	}
	return repos.DeductionRepo().DeleteByLines(ctx, lineIDs)
}

func (s *SalesService) allocateLines(ctx context.Context, e *appinv.Engine, repos appinv.TransactionalRepositories, order *trade.SalesOrder) error {
	now := s.uow.Now()
	src := appinv.Source{Type: inventory.SourceTypeSale, ID: order.ID.String(), Reference: order.Reference}
	var all []inventory.Deduction
	for i := range order.Lines {
		line := &order.Lines[i]
		picks, err := e.Allocate(ctx, appinv.AllocateInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Location:  order.Location,
			Source:    src,
		})
		if err != nil {
			return err
		}
		if got := inventory.TotalAllocated(picks); got != line.Quantity {
			return fmt.Errorf("allocated %d of %d units for sale line %s", got, line.Quantity, line.ID)
		}
		line.Deductions = make([]inventory.Deduction, 0, len(picks))
		for _, pick := range picks {
			d, err := inventory.NewDeduction(line.ID, pick, now)
			if err != nil {
				return err
			}
			line.Deductions = append(line.Deductions, *d)
		}
		all = append(all, line.Deductions...)
	}
	if len(all) == 0 {
		return nil
	}
	return repos.DeductionRepo().CreateBatch(ctx, all)
}

func addSaleLines(order *trade.SalesOrder, lines []SaleLineRequest, now time.Time) error {
	if len(lines) == 0 {
		return shared.NewValidationError("At least one line is required")
	}
	for _, l := range lines {
		if _, err := order.AddLine(l.ProductID, l.Quantity, l.UnitPrice, now); err != nil {
			return err
		}
	}
	return nil
}
