package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
)

// StockDeduction is the amount taken from one stock row
type StockDeduction struct {
	StockID    uuid.UUID
	LocationID uuid.UUID
	Quantity   int
	Remaining  int
}

// PlanFIFODeduction spreads requested units over the rows oldest first.
// It fails with ErrInsufficientStock when the rows do not hold enough in
// total, without touching any row.
func PlanFIFODeduction(requested int, rows []Stock) ([]StockDeduction, error) {
	if requested <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	ordered := make([]Stock, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	available := 0
	for _, r := range ordered {
		available += r.Quantity
	}
	if available < requested {
		return nil, shared.ErrInsufficientStock
	}

	remaining := requested
	plan := make([]StockDeduction, 0, len(ordered))
	for _, r := range ordered {
		if remaining == 0 {
			break
		}
		if r.Quantity <= 0 {
			continue
		}
		take := r.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, StockDeduction{
			StockID:    r.ID,
			LocationID: r.LocationID,
			Quantity:   take,
			Remaining:  r.Quantity - take,
		})
		remaining -= take
	}
	return plan, nil
}

// PickLargestRow returns the row with the most units, provided it covers
// the requested quantity on its own.
func PickLargestRow(requested int, rows []Stock) (*Stock, error) {
	var best *Stock
	for i := range rows {
		if best == nil || rows[i].Quantity > best.Quantity {
			best = &rows[i]
		}
	}
	if best == nil || best.Quantity < requested {
		return nil, shared.ErrInsufficientStock
	}
	return best, nil
}
