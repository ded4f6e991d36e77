package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMedicalDevice(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d, err := NewMedicalDevice("DEV-0001", "ResMed AirSense 10", "")
		require.NoError(t, err)
		assert.Equal(t, DeviceTypeMedical, d.Type)
		assert.Equal(t, DeviceStatusActive, d.Status)
		assert.Equal(t, DestinationForRent, d.Destination)
		assert.Equal(t, 1, d.StockQuantity)
		assert.NoError(t, d.EnsureAvailable())
	})

	t.Run("requires name", func(t *testing.T) {
		_, err := NewMedicalDevice("DEV-0001", " ", DeviceTypeMedical)
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewMedicalDevice("DEV-0001", "X", DeviceType("TOASTER"))
		assert.Error(t, err)
	})
}

func TestMedicalDevice_MarkSold(t *testing.T) {
	d, err := NewMedicalDevice("DEV-0002", "Yuwell 8F-5", DeviceTypeMedical)
	require.NoError(t, err)

	sold := uuid.New()
	patient := uuid.New()
	d.MarkSold(sold, &patient, nil)

	assert.Equal(t, DeviceStatusSold, d.Status)
	assert.Equal(t, sold, *d.StockLocationID)
	assert.Equal(t, patient, *d.PatientID)
	assert.True(t, d.IsUnavailable())
	assert.Error(t, d.EnsureAvailable())
}

func TestMedicalDevice_SetStatus(t *testing.T) {
	d, err := NewMedicalDevice("DEV-0003", "Philips DreamStation", DeviceTypeMedical)
	require.NoError(t, err)

	require.NoError(t, d.SetStatus(DeviceStatusRetired))
	assert.Error(t, d.EnsureAvailable())
	assert.Error(t, d.SetStatus(DeviceStatus("BROKEN")))
}

func TestProduct_SetPrices(t *testing.T) {
	p, err := NewProduct("Masque facial M", ProductTypeAccessory)
	require.NoError(t, err)

	require.NoError(t, p.SetPrices(decimal.NewFromInt(40), decimal.NewFromInt(65)))
	assert.True(t, p.SellingPrice.Equal(decimal.NewFromInt(65)))
	assert.Error(t, p.SetPrices(decimal.NewFromInt(-1), decimal.Zero))

	_, err = NewProduct("", ProductTypeAccessory)
	assert.Error(t, err)
}
