package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// ReceiveStock adds quantity units of a product to the (location, status)
// row, creating the row when it does not exist yet
func ReceiveStock(ctx context.Context, repo StockRepository, locationID, productID uuid.UUID, quantity int, status StockStatus) (*Stock, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if status == "" {
		status = StockStatusForSale
	}
	row, err := repo.FindRow(ctx, locationID, productID, status)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		row, err = NewStock(locationID, productID, quantity, status)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := row.Increase(quantity); err != nil {
			return nil, err
		}
	}
	if err := repo.Save(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Relabel moves every unit of row to status, merging into the existing row
// of that status at the same location. It returns the row now holding the
// units; an empty row merged away yields the target row unchanged.
func Relabel(ctx context.Context, repo StockRepository, row *Stock, status StockStatus) (*Stock, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STOCK_STATUS", "Invalid stock status")
	}
	if row.Status == status {
		return row, repo.Save(ctx, row)
	}

	target, err := repo.FindRow(ctx, row.LocationID, row.ProductID, status)
	if errors.Is(err, shared.ErrNotFound) {
		if err := row.Adjust(row.Quantity, status); err != nil {
			return nil, err
		}
		return row, repo.Save(ctx, row)
	}
	if err != nil {
		return nil, err
	}

	if row.Quantity > 0 {
		if err := target.Increase(row.Quantity); err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, target); err != nil {
			return nil, err
		}
	}
	if err := repo.Delete(ctx, row.ID); err != nil {
		return nil, err
	}
	return target, nil
}
