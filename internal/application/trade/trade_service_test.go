package trade

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	financeapp "github.com/medrent/backend/internal/application/finance"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/medrent/backend/internal/domain/workflow"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tradeFixture struct {
	db        *gorm.DB
	depot     *inventory.StockLocation
	device    *catalog.MedicalDevice
	product   *catalog.Product
	stock     *inventory.Stock
	patient   *partner.Patient
	user      *identity.User
	publisher *testutil.RecordingPublisher
	rentals   *RentalService
	periods   *RentalPeriodService
	sales     *SaleService
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	tx := persistence.NewGormTransactionScope(db)

	f := &tradeFixture{db: db, publisher: testutil.NewRecordingPublisher()}
	f.depot = testutil.SeedLocation(t, db, "Depot")
	f.device = testutil.SeedDevice(t, db, "DEV-0001", "CPAP ResMed", f.depot.ID)
	f.product = testutil.SeedProduct(t, db, "Masque nasal")
	f.stock = testutil.SeedStock(t, db, f.depot.ID, f.product.ID, 10, inventory.StockStatusForSale)
	f.patient = testutil.SeedPatient(t, db, "PAT-0001", "Amel", "Trabelsi")
	f.user = testutil.SeedUser(t, db, "emp@medrent.tn", identity.RoleEmployee)
	f.rentals = NewRentalService(repos, tx, nil)
	f.periods = NewRentalPeriodService(tx, nil)
	f.sales = NewSaleService(repos, tx, f.publisher, nil)
	return f
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func (f *tradeFixture) rentalRequest() CreateRentalRequest {
	return CreateRentalRequest{
		ClientID:   f.patient.ID,
		ClientType: "patient",
		Products: []RentalProductInput{
			{ProductID: f.device.ID, Type: "MEDICAL_DEVICE", Quantity: 1, RentalPrice: decimal.NewFromInt(300)},
			{ProductID: f.product.ID, Type: "ACCESSORY", Quantity: 3, RentalPrice: decimal.NewFromInt(10)},
		},
		GlobalStartDate: date(2026, 1, 1),
		GlobalEndDate:   date(2026, 2, 28),
		PaymentPeriods: []PaymentPeriodInput{
			{StartDate: "2026-01-01", EndDate: "2026-01-31", Amount: decimal.NewFromInt(300), PaymentMethod: "cash"},
			{StartDate: "2026-02-01", EndDate: "2026-02-28", Amount: decimal.NewFromInt(300), PaymentMethod: "CNAM",
				CNAMStatus: "APPROUVE", CNAMBondNumber: "B-77"},
		},
		CNAMBonds:     []financeapp.BondInput{{BondNumber: "B-77", BondType: "CPAP", TotalAmount: decimal.NewFromInt(600)}},
		DepositAmount: decimal.NewFromInt(200),
		DepositMethod: "cheque",
		TotalPrice:    decimal.NewFromInt(600),
	}
}

func accessoryStockID(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	var a trade.RentalAccessory
	require.NoError(t, db.First(&a).Error)
	require.NotNil(t, a.StockID)
	return *a.StockID
}

// ===== Rentals

func TestRentalService_Create(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)

	res, err := f.rentals.Create(ctx, f.user.ID, f.rentalRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.TotalRentals)
	assert.Equal(t, 1, res.Summary.TotalAccessories)
	assert.Equal(t, 2, res.Summary.TotalProducts)
	assert.Equal(t, 2, res.Summary.TotalPaymentPeriods)
	assert.Equal(t, 1, res.Summary.TotalCNAMBonds)
	assert.Equal(t, 2, res.Summary.TotalRentalPeriods)
	assert.True(t, res.Summary.HasDeposit)
	assert.True(t, res.Summary.HasStockReduction)
	assert.False(t, res.Summary.IsOpenEnded)
	assert.True(t, res.Summary.TotalAmount.Equal(decimal.NewFromInt(600)))

	rental := res.Rentals[0]
	assert.Equal(t, "RNT-0001", rental.RentalCode)
	require.NotNil(t, rental.PaymentID)
	assert.Equal(t, res.Payments[0].ID, *rental.PaymentID)
	require.NotNil(t, rental.Configuration)
	assert.True(t, rental.Configuration.DepositAmount.Equal(decimal.NewFromInt(200)))

	require.Len(t, res.Payments, 2)
	assert.Equal(t, "PAY-0001", res.Payments[0].PaymentCode)
	assert.Equal(t, "PENDING", res.Payments[0].Status)
	assert.Equal(t, "PAID", res.Payments[1].Status)
	require.NotNil(t, res.Deposit)
	assert.Equal(t, "GUARANTEE", res.Deposit.Status)
	assert.Equal(t, "CHEQUE", res.Deposit.Method)

	require.Len(t, res.Periods, 2)
	require.NotNil(t, res.Periods[0].PaymentID)
	assert.Equal(t, res.Payments[0].ID, *res.Periods[0].PaymentID)
	assert.Nil(t, res.Periods[0].CNAMBondID)
	require.NotNil(t, res.Periods[1].CNAMBondID)
	assert.Equal(t, res.Bonds[0].ID, *res.Periods[1].CNAMBondID)

	row := testutil.ReloadStock(t, f.db, f.stock.ID)
	assert.Equal(t, 7, row.Quantity)
	assert.Equal(t, inventory.StockStatusForRent, row.Status)
	assert.Equal(t, f.stock.ID, accessoryStockID(t, f.db))

	assert.Equal(t, f.patient.ID, *testutil.ReloadDevice(t, f.db, f.device.ID).PatientID)
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &finance.CNAMBondRental{}, "rental_id = ?", rental.ID))
	assert.Equal(t, int64(3), testutil.CountRows(t, f.db, &finance.Payment{}, "rental_id = ?", rental.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &partner.PatientHistory{}, "action_type = ?", partner.HistoryRental))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Notification{}, "type = ? AND user_id = ?", workflow.NotificationRentalExpiring, f.user.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Notification{}, "type = ?", workflow.NotificationPaymentDue))
	var upcoming workflow.Notification
	require.NoError(t, f.db.First(&upcoming, "type = ?", workflow.NotificationPaymentDue).Error)
	assert.Equal(t, workflow.ReminderUpcoming, upcoming.Reminder())

	t.Run("device already rented", func(t *testing.T) {
		_, err := f.rentals.Create(ctx, f.user.ID, f.rentalRequest())
		assertDomainCode(t, err, "DEVICE_ALREADY_RENTED")
		assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &trade.Rental{}, ""))
	})

	t.Run("detail carries money summary", func(t *testing.T) {
		detail, err := f.rentals.GetByID(ctx, rental.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Payments, 3)
		assert.Len(t, detail.Periods, 2)
		assert.Len(t, detail.Accessories, 1)
		assert.True(t, detail.Financial.DepositAmount.Equal(decimal.NewFromInt(200)))
		assert.True(t, detail.Financial.PaidAmount.Equal(decimal.NewFromInt(300)))
		assert.True(t, detail.Financial.PendingAmount.Equal(decimal.NewFromInt(300)))
		assert.True(t, detail.Financials.CNAMAmount.Equal(decimal.NewFromInt(300)))
		assert.Empty(t, detail.DetectedGaps)
	})

	t.Run("list by patient", func(t *testing.T) {
		list, total, err := f.rentals.List(ctx, RentalListFilter{PatientID: f.patient.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Financial)
		assert.True(t, list[0].Financial.TotalAmount.Equal(decimal.NewFromInt(600)))
	})
}

func TestRentalService_CreateRollsBackOnShortAccessoryStock(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)

	req := f.rentalRequest()
	req.Products[1].Quantity = 11
	_, err := f.rentals.Create(ctx, f.user.ID, req)
	assertDomainCode(t, err, "INSUFFICIENT_STOCK")

	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &trade.Rental{}, ""))
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &finance.Payment{}, ""))
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &finance.CNAMBondRental{}, ""))
	assert.Equal(t, 10, testutil.ReloadStock(t, f.db, f.stock.ID).Quantity)
	assert.Nil(t, testutil.ReloadDevice(t, f.db, f.device.ID).PatientID)
}

func TestRentalService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)

	t.Run("company clients are refused", func(t *testing.T) {
		req := f.rentalRequest()
		req.ClientType = "societe"
		_, err := f.rentals.Create(ctx, f.user.ID, req)
		assertDomainCode(t, err, "PATIENT_REQUIRED")
	})

	t.Run("accessories alone are refused", func(t *testing.T) {
		req := f.rentalRequest()
		req.Products = req.Products[1:]
		_, err := f.rentals.Create(ctx, f.user.ID, req)
		assertDomainCode(t, err, "DEVICE_REQUIRED")
	})

	t.Run("start date is required", func(t *testing.T) {
		req := f.rentalRequest()
		req.GlobalStartDate = nil
		_, err := f.rentals.Create(ctx, f.user.ID, req)
		assertDomainCode(t, err, "INVALID_INPUT")
	})

	t.Run("overlapping periods are refused", func(t *testing.T) {
		req := f.rentalRequest()
		req.PaymentPeriods[1].StartDate = "2026-01-20"
		_, err := f.rentals.Create(ctx, f.user.ID, req)
		assertDomainCode(t, err, "INVALID_PERIODS")
	})

	t.Run("unknown patient", func(t *testing.T) {
		req := f.rentalRequest()
		req.ClientID = testutil.NewTestUUID("ghost")
		_, err := f.rentals.Create(ctx, f.user.ID, req)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &trade.Rental{}, ""))
}

func TestRentalService_DeleteRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)

	res, err := f.rentals.Create(ctx, f.user.ID, f.rentalRequest())
	require.NoError(t, err)
	rentalID := res.Rentals[0].ID

	require.NoError(t, f.rentals.Delete(ctx, rentalID))

	assert.Equal(t, 10, testutil.ReloadStock(t, f.db, f.stock.ID).Quantity)
	assert.Nil(t, testutil.ReloadDevice(t, f.db, f.device.ID).PatientID)
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &trade.Rental{}, ""))
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &trade.RentalPeriod{}, ""))
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &trade.RentalAccessory{}, ""))
	assert.Equal(t, int64(3), testutil.CountRows(t, f.db, &finance.Payment{}, "rental_id IS NULL"))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &finance.CNAMBondRental{}, "rental_id IS NULL"))

	_, err = f.rentals.GetByID(ctx, rentalID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRentalService_UpdateReleasesDevice(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)

	res, err := f.rentals.Create(ctx, f.user.ID, f.rentalRequest())
	require.NoError(t, err)

	notes := "Retour anticipé"
	updated, err := f.rentals.Update(ctx, res.Rentals[0].ID, UpdateRentalRequest{Status: "COMPLETED", Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", updated.Status)
	assert.Equal(t, "COMPLETED", updated.DisplayStatus)
	assert.Equal(t, notes, updated.Notes)
	assert.Nil(t, testutil.ReloadDevice(t, f.db, f.device.ID).PatientID)

	_, err = f.rentals.Update(ctx, res.Rentals[0].ID, UpdateRentalRequest{EndDate: date(2025, 12, 1)})
	assertDomainCode(t, err, "INVALID_END_DATE")
}

func TestRentalService_ValidatePeriods(t *testing.T) {
	f := newTradeFixture(t)
	f.rentals.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }

	res := f.rentals.ValidatePeriods(ValidatePeriodsRequest{
		Periods: []PaymentPeriodInput{
			{ID: "a", StartDate: "2026-01-01", EndDate: "2026-01-31", Amount: decimal.NewFromInt(300), PaymentMethod: "CNAM"},
			{ID: "b", StartDate: "2026-02-11", EndDate: "2026-03-20", Amount: decimal.NewFromInt(300)},
		},
		RentalStartDate: date(2026, 1, 1),
		RentalEndDate:   date(2026, 3, 10),
		DailyRate:       decimal.NewFromInt(10),
	})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, trade.GapInBetween, res.Gaps[0].Type)
	assert.Equal(t, 10, res.Gaps[0].DurationDays)
	assert.True(t, res.Gaps[0].EstimatedAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Financials.CNAMAmount.Equal(decimal.NewFromInt(300)))

	bad := f.rentals.ValidatePeriods(ValidatePeriodsRequest{
		Periods: []PaymentPeriodInput{
			{StartDate: "2026-01-01", EndDate: "2026-01-31", Amount: decimal.NewFromInt(300)},
			{StartDate: "2026-01-15", EndDate: "not a date", Amount: decimal.NewFromInt(-5)},
		},
	})
	assert.False(t, bad.IsValid)
	assert.NotEmpty(t, bad.Errors)
	assert.Empty(t, bad.Gaps)
}

func TestRentalPeriodService(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)

	res, err := f.rentals.Create(ctx, f.user.ID, f.rentalRequest())
	require.NoError(t, err)
	rentalID := res.Rentals[0].ID

	_, err = f.periods.Add(ctx, rentalID, PeriodRequest{
		StartDate: *date(2026, 2, 15), EndDate: *date(2026, 3, 15), Amount: decimal.NewFromInt(300),
	})
	assertDomainCode(t, err, "INVALID_PERIODS")

	added, err := f.periods.Add(ctx, rentalID, PeriodRequest{
		StartDate: *date(2026, 3, 1), EndDate: *date(2026, 3, 31), Amount: decimal.NewFromInt(300), PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "CASH", added.PaymentMethod)
	assert.Equal(t, int64(3), testutil.CountRows(t, f.db, &trade.RentalPeriod{}, "rental_id = ?", rentalID))

	updated, err := f.periods.Update(ctx, added.ID, PeriodRequest{
		StartDate: *date(2026, 3, 1), EndDate: *date(2026, 3, 20), Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(200)))

	_, err = f.periods.Update(ctx, added.ID, PeriodRequest{
		StartDate: *date(2026, 3, 20), EndDate: *date(2026, 3, 1),
	})
	assertDomainCode(t, err, "INVALID_DATE")

	require.NoError(t, f.periods.Delete(ctx, added.ID))
	assert.ErrorIs(t, f.periods.Delete(ctx, added.ID), shared.ErrNotFound)
}

// ===== Sales

func TestSaleService_CreateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)

	branch := testutil.SeedLocation(t, f.db, "Sousse")
	newer := testutil.SeedStock(t, f.db, branch.ID, f.product.ID, 4, inventory.StockStatusForSale)
	require.NoError(t, f.db.Model(f.stock).Update("created_at", time.Now().Add(-time.Hour)).Error)
	require.NoError(t, f.db.Model(f.stock).Update("quantity", 3).Error)

	detail, err := f.sales.Create(ctx, f.user.ID, CreateSaleRequest{
		PatientID: &f.patient.ID,
		Discount:  decimal.NewFromInt(20),
		Items: []SaleItemInput{
			{ProductID: &f.product.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(25), ItemTotal: decimal.NewFromInt(125)},
			{MedicalDeviceID: &f.device.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1500), ItemTotal: decimal.NewFromInt(1500),
				Configuration: &SaleConfigurationInput{Pression: "10", AdditionalParams: map[string]interface{}{"humidifier": "2"}}},
		},
		Payments: []SalePaymentInput{
			{Type: "cash", Amount: decimal.NewFromInt(205)},
			{Type: "cnam", Amount: decimal.NewFromInt(1400), DossierNumber: "D-1",
				CNAMInfo: &CNAMInfoInput{BonType: "CPAP", Status: "EN_COURS", CurrentStep: 2}},
		},
		CNAMBonds: []financeapp.BondInput{{BondType: "MASQUE", TotalAmount: decimal.NewFromInt(50)}},
	})
	require.NoError(t, err)

	assert.Equal(t, "SAL-0001", detail.SaleCode)
	assert.Equal(t, "FACTURE-"+strconv.Itoa(time.Now().Year())+"-0001", detail.InvoiceNumber)
	assert.True(t, detail.FinalAmount.Equal(decimal.NewFromInt(1605)))
	require.Len(t, detail.Items, 2)
	assert.Equal(t, f.depot.ID, *detail.Items[0].SourceLocationID)
	assert.Equal(t, "10", detail.Items[1].Configuration["pression"])

	require.Len(t, detail.Payments, 2)
	for _, p := range detail.Payments {
		assert.Equal(t, "PAID", p.Status)
		assert.Equal(t, "SALE", p.Source)
		assert.Len(t, p.Details, 1)
	}
	require.Len(t, detail.Dossiers, 1)
	assert.Equal(t, "CNAM-0001", detail.Dossiers[0].DossierNumber)
	assert.Equal(t, 2, detail.Dossiers[0].CurrentStep)
	assert.Equal(t, "EN_COURS", detail.Dossiers[0].Status)
	require.Len(t, detail.Bonds, 1)
	assert.Equal(t, "ACHAT", detail.Bonds[0].Category)
	assert.Equal(t, []string{trade.EventTypeSaleCreated}, f.publisher.Types())

	assert.Equal(t, 0, testutil.ReloadStock(t, f.db, f.stock.ID).Quantity)
	assert.Equal(t, 2, testutil.ReloadStock(t, f.db, newer.ID).Quantity)
	device := testutil.ReloadDevice(t, f.db, f.device.ID)
	assert.Equal(t, catalog.DeviceStatusSold, device.Status)
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &inventory.StockLocation{}, "name = ? AND id = ?", SoldLocationName, *device.StockLocationID))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &finance.CNAMStepHistory{}, ""))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &partner.PatientHistory{}, "action_type = ?", partner.HistorySale))

	loaded, err := f.sales.GetByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Payments, 2)
	assert.Len(t, loaded.Dossiers, 1)

	t.Run("sold device cannot be sold again", func(t *testing.T) {
		_, err := f.sales.Create(ctx, f.user.ID, CreateSaleRequest{
			PatientID: &f.patient.ID,
			Items:     []SaleItemInput{{MedicalDeviceID: &f.device.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1), ItemTotal: decimal.NewFromInt(1)}},
		})
		assertDomainCode(t, err, "INVALID_STATE")
	})

	require.NoError(t, f.sales.Delete(ctx, detail.ID))

	assert.Equal(t, 5, testutil.ReloadStock(t, f.db, f.stock.ID).Quantity)
	assert.Equal(t, 2, testutil.ReloadStock(t, f.db, newer.ID).Quantity)
	device = testutil.ReloadDevice(t, f.db, f.device.ID)
	assert.Equal(t, catalog.DeviceStatusActive, device.Status)
	assert.Nil(t, device.PatientID)
	for _, model := range []interface{}{
		&trade.Sale{}, &trade.SaleItem{}, &trade.SaleConfiguration{}, &finance.Payment{}, &finance.PaymentDetail{},
		&finance.CNAMDossier{}, &finance.CNAMStepHistory{}, &finance.CNAMBondRental{},
	} {
		assert.Equal(t, int64(0), testutil.CountRows(t, f.db, model, ""))
	}
}

func TestSaleService_DeleteRecreatesForSaleRow(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	require.NoError(t, f.db.Delete(f.stock).Error)
	rented := testutil.SeedStock(t, f.db, f.depot.ID, f.product.ID, 2, inventory.StockStatusForRent)

	detail, err := f.sales.Create(ctx, f.user.ID, CreateSaleRequest{
		PatientID: &f.patient.ID,
		Items:     []SaleItemInput{{ProductID: &f.product.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(25), ItemTotal: decimal.NewFromInt(50)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.ReloadStock(t, f.db, rented.ID).Quantity)

	require.NoError(t, f.sales.Delete(ctx, detail.ID))

	var row inventory.Stock
	require.NoError(t, f.db.First(&row, "location_id = ? AND product_id = ? AND status = ?",
		f.depot.ID, f.product.ID, inventory.StockStatusForSale).Error)
	assert.Equal(t, 2, row.Quantity)
}

func TestSaleService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)

	_, err := f.sales.Create(ctx, f.user.ID, CreateSaleRequest{})
	assertDomainCode(t, err, "CLIENT_REQUIRED")

	_, err = f.sales.Create(ctx, f.user.ID, CreateSaleRequest{
		PatientID: &f.patient.ID,
		Items:     []SaleItemInput{{ProductID: &f.product.ID, MedicalDeviceID: &f.device.ID, Quantity: 1}},
	})
	assertDomainCode(t, err, "INVALID_ITEM")

	_, err = f.sales.Create(ctx, f.user.ID, CreateSaleRequest{
		PatientID: &f.patient.ID,
		Items:     []SaleItemInput{{ProductID: &f.product.ID, Quantity: 50, UnitPrice: decimal.NewFromInt(25), ItemTotal: decimal.NewFromInt(1250)}},
	})
	assertDomainCode(t, err, "INSUFFICIENT_STOCK")
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &trade.Sale{}, ""))
	assert.Equal(t, 10, testutil.ReloadStock(t, f.db, f.stock.ID).Quantity)
	assert.Empty(t, f.publisher.Events())
}

func TestSaleService_ListAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture(t)
	company := testutil.SeedCompany(t, f.db, "COM-0001", "Clinique Les Pins")

	_, err := f.sales.Create(ctx, f.user.ID, CreateSaleRequest{PatientID: &f.patient.ID})
	require.NoError(t, err)
	second, err := f.sales.Create(ctx, f.user.ID, CreateSaleRequest{CompanyID: &company.ID})
	require.NoError(t, err)

	list, total, err := f.sales.List(ctx, SaleListFilter{CompanyID: company.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	status := "COMPLETED"
	updated, err := f.sales.Update(ctx, second.ID, UpdateSaleRequest{Status: &status, AssignedToID: &f.user.ID})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", updated.Status)
	assert.Equal(t, f.user.ID, *updated.AssignedToID)

	bad := "SHIPPED"
	_, err = f.sales.Update(ctx, second.ID, UpdateSaleRequest{Status: &bad})
	assertDomainCode(t, err, "INVALID_SALE_STATUS")
}
