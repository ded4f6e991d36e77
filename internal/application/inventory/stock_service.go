package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService handles stock listing, adjustments and direct transfers
type StockService struct {
	repos   uow.Repositories
	txScope uow.TransactionScope
	logger  *zap.Logger
}

// NewStockService creates a new StockService. repos serves reads outside
// transactions.
func NewStockService(repos uow.Repositories, txScope uow.TransactionScope, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{repos: repos, txScope: txScope, logger: logger}
}

// Inventory lists stock rows with product and location names
func (s *StockService) Inventory(ctx context.Context, filter InventoryListFilter) ([]StockResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("location_id", filter.LocationID).
		With("status", filter.Status).
		With("product_type", filter.ProductType)

	rows, err := s.repos.Stocks().FindInventory(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Stocks().CountInventory(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.describe(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MyInventory lists the stock held at the caller's own location
func (s *StockService) MyInventory(ctx context.Context, actor identity.Actor, filter InventoryListFilter) ([]StockResponse, int64, error) {
	if actor.StockLocationID == nil {
		return nil, 0, shared.NewDomainError("NO_STOCK_LOCATION", "You are not assigned to a stock location")
	}
	filter.LocationID = actor.StockLocationID.String()
	return s.Inventory(ctx, filter)
}

// Adjust sets a row's quantity and/or status. Moving a row onto a status
// that already has a row at the same location merges the two.
func (s *StockService) Adjust(ctx context.Context, actor identity.Actor, id uuid.UUID, req AdjustStockRequest) (*StockResponse, error) {
	var result *inventory.Stock
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		row, err := repos.Stocks().FindByID(ctx, id)
		if err != nil {
			return err
		}
		before := shared.JSONMap{"quantity": row.Quantity, "status": string(row.Status)}

		quantity := row.Quantity
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		status := inventory.StockStatus(req.Status)
		if status != "" && status != row.Status {
			existing, err := repos.Stocks().FindRow(ctx, row.LocationID, row.ProductID, status)
			switch {
			case err == nil:
				if err := existing.Adjust(existing.Quantity+quantity, ""); err != nil {
					return err
				}
				if err := repos.Stocks().Save(ctx, existing); err != nil {
					return err
				}
				if err := repos.Stocks().Delete(ctx, row.ID); err != nil {
					return err
				}
				result = existing
				return s.recordAdjustment(ctx, repos, actor, existing, before)
			case !errors.Is(err, shared.ErrNotFound):
				return err
			}
		}

		if err := row.Adjust(quantity, status); err != nil {
			return err
		}
		if err := repos.Stocks().Save(ctx, row); err != nil {
			return err
		}
		result = row
		return s.recordAdjustment(ctx, repos, actor, row, before)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("stock_id", result.ID.String()),
		zap.Int("quantity", result.Quantity),
		zap.String("status", string(result.Status)))
	out, err := s.describe(ctx, []inventory.Stock{*result})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *StockService) recordAdjustment(ctx context.Context, repos uow.Repositories, actor identity.Actor, row *inventory.Stock, before shared.JSONMap) error {
	entry := inventory.NewUserActionHistory(actor.UserID, inventory.UserActionStockAdjust, row.ID, "stock", shared.JSONMap{
		"before":     before,
		"quantity":   row.Quantity,
		"status":     string(row.Status),
		"product_id": row.ProductID.String(),
	})
	return repos.ActionHistory().Save(ctx, entry)
}

// Transfer moves product units or one device between two locations in a
// single transaction and records the transfer
func (s *StockService) Transfer(ctx context.Context, actor identity.Actor, req CreateTransferRequest) (*TransferResponse, error) {
	if (req.ProductID == nil) == (req.MedicalDeviceID == nil) {
		return nil, shared.NewDomainError("INVALID_ITEM", "Either a product or a medical device is required")
	}
	if err := inventory.ValidateTransferEndpoints(req.FromLocationID, req.ToLocationID, req.Quantity); err != nil {
		return nil, err
	}

	var transfer *inventory.StockTransfer
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if err := ensureLocations(ctx, repos, req.FromLocationID, req.ToLocationID); err != nil {
			return err
		}
		var err error
		if req.MedicalDeviceID != nil {
			transfer, err = s.transferDevice(ctx, repos, actor, req)
		} else {
			transfer, err = s.transferProduct(ctx, repos, actor, req)
		}
		if err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, transfer); err != nil {
			return err
		}
		entry := inventory.NewUserActionHistory(actor.UserID, inventory.UserActionTransfer, transfer.ID, "stock_transfer", shared.JSONMap{
			"from_location_id": req.FromLocationID.String(),
			"to_location_id":   req.ToLocationID.String(),
			"quantity":         req.Quantity,
		})
		return repos.ActionHistory().Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock transferred",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("from", req.FromLocationID.String()),
		zap.String("to", req.ToLocationID.String()),
		zap.Int("quantity", req.Quantity))
	response := ToTransferResponse(transfer)
	return &response, nil
}

func (s *StockService) transferProduct(ctx context.Context, repos uow.Repositories, actor identity.Actor, req CreateTransferRequest) (*inventory.StockTransfer, error) {
	productID := *req.ProductID
	if _, err := repos.Products().FindByID(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := repos.Stocks().FindByLocationAndProduct(ctx, req.FromLocationID, productID)
	if err != nil {
		return nil, err
	}
	source, err := inventory.PickLargestRow(req.Quantity, rows)
	if err != nil {
		return nil, err
	}
	status := source.Status
	if req.NewStatus != "" {
		status = inventory.StockStatus(req.NewStatus)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STOCK_STATUS", "Invalid stock status")
		}
	}

	if err := source.Decrease(req.Quantity); err != nil {
		return nil, err
	}
	if err := repos.Stocks().Save(ctx, source); err != nil {
		return nil, err
	}
	if _, err := inventory.ReceiveStock(ctx, repos.Stocks(), req.ToLocationID, productID, req.Quantity, status); err != nil {
		return nil, err
	}
	return inventory.NewProductTransfer(req.FromLocationID, req.ToLocationID, productID, actor.UserID, req.Quantity, status, req.Notes)
}

func (s *StockService) transferDevice(ctx context.Context, repos uow.Repositories, actor identity.Actor, req CreateTransferRequest) (*inventory.StockTransfer, error) {
	if req.Quantity != 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Device transfers must have a quantity of 1")
	}
	device, err := repos.Devices().FindByID(ctx, *req.MedicalDeviceID)
	if err != nil {
		return nil, err
	}
	if err := device.EnsureAvailable(); err != nil {
		return nil, err
	}
	device.MoveTo(req.ToLocationID)
	if req.NewStatus != "" {
		if err := device.SetStatus(catalog.DeviceStatus(req.NewStatus)); err != nil {
			return nil, err
		}
	}
	if err := repos.Devices().Save(ctx, device); err != nil {
		return nil, err
	}
	return inventory.NewDeviceTransfer(req.FromLocationID, req.ToLocationID, device.ID, actor.UserID, req.Notes)
}

// ListTransfers lists transfer records, newest first
func (s *StockService) ListTransfers(ctx context.Context, filter TransferListFilter) ([]TransferResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, "").
		With("location_id", filter.LocationID)
	if filter.FromDate != nil {
		domainFilter = domainFilter.With("from_date", *filter.FromDate)
	}
	if filter.ToDate != nil {
		domainFilter = domainFilter.With("to_date", filter.ToDate.AddDate(0, 0, 1))
	}
	if filter.OrderBy == "" {
		domainFilter.OrderBy = "transfer_date"
	}

	transfers, err := s.repos.Transfers().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Transfers().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = ToTransferResponse(&transfers[i])
	}
	return out, total, nil
}

// VerifyTransfer marks a transfer as received and verified by the caller
func (s *StockService) VerifyTransfer(ctx context.Context, actor identity.Actor, id uuid.UUID) (*TransferResponse, error) {
	transfer, err := s.repos.Transfers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transfer.Verify(actor.UserID); err != nil {
		return nil, err
	}
	if err := s.repos.Transfers().Save(ctx, transfer); err != nil {
		return nil, err
	}
	response := ToTransferResponse(transfer)
	return &response, nil
}

// describe attaches product and location names to stock rows
func (s *StockService) describe(ctx context.Context, rows []inventory.Stock) ([]StockResponse, error) {
	products := make(map[uuid.UUID]*catalog.Product)
	locations := make(map[uuid.UUID]*inventory.StockLocation)
	out := make([]StockResponse, len(rows))
	for i, row := range rows {
		product, ok := products[row.ProductID]
		if !ok {
			p, err := s.repos.Products().FindByID(ctx, row.ProductID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			product, products[row.ProductID] = p, p
		}
		location, ok := locations[row.LocationID]
		if !ok {
			l, err := s.repos.Locations().FindByID(ctx, row.LocationID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			location, locations[row.LocationID] = l, l
		}

		out[i] = StockResponse{
			ID:         row.ID,
			LocationID: row.LocationID,
			ProductID:  row.ProductID,
			Quantity:   row.Quantity,
			Status:     string(row.Status),
			UpdatedAt:  row.UpdatedAt,
		}
		if product != nil {
			out[i].ProductName = product.Name
			out[i].ProductType = string(product.Type)
		}
		if location != nil {
			out[i].LocationName = location.Name
		}
	}
	return out, nil
}

func ensureLocations(ctx context.Context, repos uow.Repositories, ids ...uuid.UUID) error {
	for _, id := range ids {
		if _, err := repos.Locations().FindByID(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_LOCATION", "Stock location not found")
			}
			return err
		}
	}
	return nil
}
