package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStock_Decrease(t *testing.T) {
	s, err := NewStock(uuid.New(), uuid.New(), 5, "")
	require.NoError(t, err)
	assert.Equal(t, StockStatusForSale, s.Status)

	require.NoError(t, s.Decrease(3))
	assert.Equal(t, 2, s.Quantity)

	err = s.Decrease(3)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.Equal(t, 2, s.Quantity)

	assert.Error(t, s.Decrease(0))
}

func TestStock_Adjust(t *testing.T) {
	s, err := NewStock(uuid.New(), uuid.New(), 1, StockStatusForRent)
	require.NoError(t, err)

	require.NoError(t, s.Adjust(10, StockStatusInRepair))
	assert.Equal(t, 10, s.Quantity)
	assert.Equal(t, StockStatusInRepair, s.Status)

	assert.Error(t, s.Adjust(-1, ""))
	assert.Error(t, s.Adjust(1, StockStatus("LOST")))
}

func stockRow(qty int, age time.Duration) Stock {
	s, _ := NewStock(uuid.New(), uuid.New(), qty, StockStatusForSale)
	s.CreatedAt = time.Now().Add(-age)
	return *s
}

func TestPlanFIFODeduction(t *testing.T) {
	newest := stockRow(10, time.Hour)
	oldest := stockRow(3, 48*time.Hour)
	middle := stockRow(4, 24*time.Hour)

	t.Run("takes oldest rows first", func(t *testing.T) {
		plan, err := PlanFIFODeduction(6, []Stock{newest, oldest, middle})
		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.Equal(t, oldest.ID, plan[0].StockID)
		assert.Equal(t, 3, plan[0].Quantity)
		assert.Equal(t, 0, plan[0].Remaining)
		assert.Equal(t, middle.ID, plan[1].StockID)
		assert.Equal(t, 3, plan[1].Quantity)
		assert.Equal(t, 1, plan[1].Remaining)
	})

	t.Run("fails when total is short", func(t *testing.T) {
		_, err := PlanFIFODeduction(18, []Stock{newest, oldest, middle})
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := PlanFIFODeduction(0, []Stock{newest})
		assert.Error(t, err)
	})
}

func TestPickLargestRow(t *testing.T) {
	a := stockRow(2, time.Hour)
	b := stockRow(7, time.Hour)

	row, err := PickLargestRow(5, []Stock{a, b})
	require.NoError(t, err)
	assert.Equal(t, b.ID, row.ID)

	_, err = PickLargestRow(8, []Stock{a, b})
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	_, err = PickLargestRow(1, nil)
	assert.Error(t, err)
}
