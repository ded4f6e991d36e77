package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRentals struct {
	rented map[uuid.UUID]bool
}

func (s stubRentals) HasActiveRentalForDevice(_ context.Context, deviceID uuid.UUID) (bool, error) {
	return s.rented[deviceID], nil
}

func TestProductService_CreateWithInitialStock(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	svc := NewProductService(repos.Products(), repos.Stocks(), persistence.NewGormTransactionScope(db), nil)
	loc := testutil.SeedLocation(t, db, "Tunis")

	price := decimal.NewFromInt(45)
	resp, err := svc.Create(ctx, CreateProductRequest{
		Name:            "Masque facial",
		SellingPrice:    &price,
		StockLocationID: &loc.ID,
		StockQuantity:   12,
	})
	require.NoError(t, err)
	assert.Equal(t, "ACCESSORY", resp.Type)
	assert.True(t, price.Equal(resp.SellingPrice))

	row, err := repos.Stocks().FindRow(ctx, loc.ID, resp.ID, inventory.StockStatusForSale)
	require.NoError(t, err)
	assert.Equal(t, 12, row.Quantity)

	t.Run("unknown location rolls back the product", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.Create(ctx, CreateProductRequest{Name: "Tuyau", StockLocationID: &missing, StockQuantity: 3})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_LOCATION", domainErr.Code)
		assert.Equal(t, int64(0), testutil.CountRows(t, db, &catalog.Product{}, "name = ?", "Tuyau"))
	})

	t.Run("delete refused while stock remains", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, resp.ID), shared.ErrHasDependencies)

		row.Quantity = 0
		require.NoError(t, repos.Stocks().Save(ctx, row))
		require.NoError(t, svc.Delete(ctx, resp.ID))
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	svc := NewProductService(repos.Products(), repos.Stocks(), persistence.NewGormTransactionScope(db), nil)
	product := testutil.SeedProduct(t, db, "Filtre")

	negative := decimal.NewFromInt(-1)
	_, err := svc.Update(ctx, product.ID, UpdateProductRequest{SellingPrice: &negative})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRICE", domainErr.Code)

	kind := "SPARE_PART"
	resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{Type: &kind})
	require.NoError(t, err)
	assert.Equal(t, "SPARE_PART", resp.Type)
}

func TestDeviceService(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	rentals := stubRentals{rented: map[uuid.UUID]bool{}}
	svc := NewDeviceService(repos.Devices(), repos.Locations(), rentals, testutil.NewSequenceCodes(), nil)
	loc := testutil.SeedLocation(t, db, "Sousse")

	rate := decimal.NewFromInt(250)
	created, err := svc.Create(ctx, CreateDeviceRequest{
		Name:            "Concentrateur 5L",
		RentalPrice:     &rate,
		StockLocationID: &loc.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "DEV-0001", created.DeviceCode)
	assert.Equal(t, "ACTIVE", created.Status)
	assert.Equal(t, "FOR_RENT", created.Destination)
	assert.Equal(t, 1, created.StockQuantity)

	t.Run("unknown location", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.Create(ctx, CreateDeviceRequest{Name: "CPAP", StockLocationID: &missing})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_LOCATION", domainErr.Code)
	})

	t.Run("list by location", func(t *testing.T) {
		items, total, err := svc.List(ctx, DeviceListFilter{StockLocationID: loc.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, created.ID, items[0].ID)
	})

	t.Run("sold device cannot change status", func(t *testing.T) {
		sold := "SOLD"
		_, err := svc.Update(ctx, created.ID, UpdateDeviceRequest{Status: &sold})
		require.NoError(t, err)

		active := "ACTIVE"
		_, err = svc.Update(ctx, created.ID, UpdateDeviceRequest{Status: &active})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("delete refused while rented", func(t *testing.T) {
		rentals.rented[created.ID] = true
		assert.ErrorIs(t, svc.Delete(ctx, created.ID), shared.ErrHasDependencies)

		rentals.rented[created.ID] = false
		require.NoError(t, svc.Delete(ctx, created.ID))
		_, err := svc.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
