package catalog

import (
	"context"
	"errors"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

const serviceName = "catalog"

// ProductService registers the products batches are received against
type ProductService struct {
	uow *appinv.UnitOfWork
}

// NewProductService creates a new ProductService
func NewProductService(uow *appinv.UnitOfWork) *ProductService {
	return &ProductService{uow: uow}
}

// Register creates the product with sku, or renames it if it already exists.
// Registering the same sku and name again changes nothing.
func (s *ProductService) Register(ctx context.Context, actor, sku string, req RegisterProductRequest) (*ProductResponse, error) {
	var resp ProductResponse
	err := s.uow.Run(ctx, serviceName, "register_product", actor, func(ctx context.Context, _ *appinv.Engine, repos appinv.TransactionalRepositories) error {
		repo := repos.ProductRepo()
		product, err := repo.FindBySKU(ctx, sku)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			product, err = catalog.NewProduct(sku, req.Name, s.uow.Now())
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			changed, err := product.Rename(req.Name, s.uow.Now())
			if err != nil {
				return err
			}
			if !changed {
				resp = ToProductResponse(product)
				return nil
			}
		}
		if err := repo.Save(ctx, product); err != nil {
			return err
		}
		resp = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByID returns a product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	var resp ProductResponse
	err := s.uow.Run(ctx, serviceName, "get_product", "", func(ctx context.Context, _ *appinv.Engine, repos appinv.TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
