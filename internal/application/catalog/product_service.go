package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product operations
type ProductService struct {
	productRepo catalog.ProductRepository
	stockRepo   inventory.StockRepository
	txScope     uow.TransactionScope
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	stockRepo inventory.StockRepository,
	txScope uow.TransactionScope,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// Create creates a product and, when a location and a positive quantity
// are given, its initial FOR_SALE stock row in the same transaction
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, catalog.ProductType(req.Type))
	if err != nil {
		return nil, err
	}
	product.Brand = strings.TrimSpace(req.Brand)
	product.Model = strings.TrimSpace(req.Model)
	product.SerialNumber = strings.TrimSpace(req.SerialNumber)
	if err := product.SetPrices(decimalOr(req.PurchasePrice, product.PurchasePrice), decimalOr(req.SellingPrice, product.SellingPrice)); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		if req.StockLocationID == nil || req.StockQuantity <= 0 {
			return nil
		}
		if _, err := repos.Locations().FindByID(ctx, *req.StockLocationID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_LOCATION", "Stock location not found")
			}
			return err
		}
		stock, err := inventory.NewStock(*req.StockLocationID, product.ID, req.StockQuantity, inventory.StockStatusForSale)
		if err != nil {
			return err
		}
		return repos.Stocks().Save(ctx, stock)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.Int("initial_stock", req.StockQuantity))
	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("type", filter.Type)

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name is required")
		}
		product.Name = name
	}
	if req.Type != nil {
		product.Type = catalog.ProductType(*req.Type)
	}
	product.Brand = stringOr(req.Brand, product.Brand)
	product.Model = stringOr(req.Model, product.Model)
	product.SerialNumber = stringOr(req.SerialNumber, product.SerialNumber)
	if err := product.SetPrices(decimalOr(req.PurchasePrice, product.PurchasePrice), decimalOr(req.SellingPrice, product.SellingPrice)); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product that has no stock left anywhere
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	rows, err := s.stockRepo.FindAvailableByProduct(ctx, id)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return shared.NewDomainError("HAS_DEPENDENCIES", "Product still has stock and cannot be deleted")
	}
	return s.productRepo.Delete(ctx, id)
}
