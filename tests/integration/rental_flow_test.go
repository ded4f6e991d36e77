//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	financeapp "github.com/medrent/backend/internal/application/finance"
	tradeapp "github.com/medrent/backend/internal/application/trade"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRentalFlow_Postgres(t *testing.T) {
	ctx := context.Background()
	tdb := NewTestDB(t)
	db := tdb.DB

	repos := persistence.NewRepositories(db)
	rentals := tradeapp.NewRentalService(repos, persistence.NewGormTransactionScope(db), nil)

	depot := testutil.SeedLocation(t, db, "Depot Tunis")
	device := testutil.SeedDevice(t, db, "DEV-0001", "Concentrateur O2", depot.ID)
	product := testutil.SeedProduct(t, db, "Lunettes O2")
	stock := testutil.SeedStock(t, db, depot.ID, product.ID, 5, inventory.StockStatusForSale)
	patient := testutil.SeedPatient(t, db, "PAT-0001", "Hedi", "Jaziri")
	user := testutil.SeedUser(t, db, "emp@medrent.tn", identity.RoleEmployee)

	request := func(accessories int) tradeapp.CreateRentalRequest {
		return tradeapp.CreateRentalRequest{
			ClientID:   patient.ID,
			ClientType: "patient",
			Products: []tradeapp.RentalProductInput{
				{ProductID: device.ID, Type: "MEDICAL_DEVICE", Quantity: 1, RentalPrice: decimal.NewFromInt(250)},
				{ProductID: product.ID, Type: "ACCESSORY", Quantity: accessories, RentalPrice: decimal.NewFromInt(5)},
			},
			GlobalStartDate: day(2026, 3, 1),
			GlobalEndDate:   day(2026, 3, 31),
			PaymentPeriods: []tradeapp.PaymentPeriodInput{
				{StartDate: "2026-03-01", EndDate: "2026-03-31", Amount: decimal.NewFromInt(250), PaymentMethod: "CNAM",
					CNAMStatus: "EN_ATTENTE_APPROBATION", CNAMBondNumber: "B-1"},
			},
			CNAMBonds:  []financeapp.BondInput{{BondNumber: "B-1", BondType: "O2", TotalAmount: decimal.NewFromInt(250)}},
			TotalPrice: decimal.NewFromInt(250),
		}
	}

	t.Run("short accessory stock rolls the whole rental back", func(t *testing.T) {
		_, err := rentals.Create(ctx, user.ID, request(6))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

		assert.Equal(t, int64(0), testutil.CountRows(t, db, &trade.Rental{}, ""))
		assert.Equal(t, int64(0), testutil.CountRows(t, db, &finance.Payment{}, ""))
		assert.Equal(t, 5, testutil.ReloadStock(t, db, stock.ID).Quantity)
		assert.Nil(t, testutil.ReloadDevice(t, db, device.ID).PatientID)
	})

	t.Run("rental commits across every table", func(t *testing.T) {
		res, err := rentals.Create(ctx, user.ID, request(2))
		require.NoError(t, err)
		require.Len(t, res.Rentals, 1)
		assert.Equal(t, "RNT-0001", res.Rentals[0].RentalCode)

		assert.Equal(t, 3, testutil.ReloadStock(t, db, stock.ID).Quantity)
		assert.Equal(t, patient.ID, *testutil.ReloadDevice(t, db, device.ID).PatientID)
		assert.Equal(t, int64(1), testutil.CountRows(t, db, &finance.CNAMBondRental{}, "rental_id = ?", res.Rentals[0].ID))

		detail, err := rentals.GetByID(ctx, res.Rentals[0].ID)
		require.NoError(t, err)
		assert.Len(t, detail.Periods, 1)
		assert.True(t, detail.Financials.CNAMAmount.Equal(decimal.NewFromInt(250)))
	})
}
