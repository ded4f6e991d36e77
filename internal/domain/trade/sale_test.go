package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalZero() decimal.Decimal { return decimal.Zero }

func TestNewSale(t *testing.T) {
	patient := uuid.New()

	s, err := NewSale("SAL-0001", "FACTURE-2025-0001", &patient, nil, uuid.New(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, SaleStatusPending, s.Status)
	assert.False(t, s.SaleDate.IsZero())
	require.Len(t, s.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeSaleCreated, s.GetDomainEvents()[0].EventType())

	_, err = NewSale("SAL-0002", "", nil, nil, uuid.New(), time.Now())
	assert.Error(t, err)
}

func TestSale_SetAmounts(t *testing.T) {
	patient := uuid.New()
	s, err := NewSale("SAL-0001", "FACTURE-2025-0001", &patient, nil, uuid.New(), time.Now())
	require.NoError(t, err)

	require.NoError(t, s.SetAmounts(decimal.NewFromInt(1000), decimal.NewFromInt(150)))
	assert.True(t, s.FinalAmount.Equal(decimal.NewFromInt(850)))

	assert.Error(t, s.SetAmounts(decimal.NewFromInt(10), decimal.NewFromInt(20)))
	assert.Error(t, s.SetAmounts(decimal.NewFromInt(-1), decimal.Zero))
}

func TestNewSaleItem(t *testing.T) {
	product := uuid.New()
	device := uuid.New()
	price := decimal.NewFromInt(80)

	item, err := NewSaleItem(uuid.New(), &product, nil, 2, price, decimal.Zero, decimal.NewFromInt(160))
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	_, err = NewSaleItem(uuid.New(), &product, &device, 1, price, decimal.Zero, price)
	assert.Error(t, err)
	_, err = NewSaleItem(uuid.New(), nil, nil, 1, price, decimal.Zero, price)
	assert.Error(t, err)
	_, err = NewSaleItem(uuid.New(), &product, nil, 0, price, decimal.Zero, price)
	assert.Error(t, err)
}
