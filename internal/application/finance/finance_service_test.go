package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRental(t *testing.T, db *gorm.DB) *trade.Rental {
	t.Helper()
	loc := testutil.SeedLocation(t, db, "Depot")
	device := testutil.SeedDevice(t, db, "DEV-0001", "Concentrateur", loc.ID)
	patient := testutil.SeedPatient(t, db, "PAT-0001", "Amel", "Trabelsi")
	user := testutil.SeedUser(t, db, "emp@medrent.tn", identity.RoleEmployee)
	rental, err := trade.NewRental("RNT-0001", device.ID, patient.ID, time.Now(), nil, user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(rental).Error)
	return rental
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// ===== Payments

func TestPaymentService_CreateWithDetails(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := NewPaymentService(persistence.NewRepositories(db), persistence.NewGormTransactionScope(db), nil)

	resp, err := svc.Create(ctx, CreatePaymentRequest{
		Amount: decimal.NewFromInt(500),
		Method: "cash",
		Status: "COMPLETED_WITH_PENDING_CNAM",
		Details: []PaymentDetailInput{
			{Method: "cash", Amount: decimal.NewFromInt(200)},
			{Method: "cnam", Amount: decimal.NewFromInt(300), Classification: "complement", Metadata: map[string]interface{}{"bond": "B-1"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-0001", resp.PaymentCode)
	assert.Equal(t, "CASH", resp.Method)
	assert.Equal(t, "PARTIAL", resp.Status)
	assert.Equal(t, "OTHER", resp.Source)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "principale", resp.Details[0].Classification)

	loaded, err := svc.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Details, 2)

	t.Run("unknown method is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreatePaymentRequest{Amount: decimal.NewFromInt(1), Method: "BITCOIN"})
		assertDomainCode(t, err, "INVALID_PAYMENT_METHOD")
	})

	t.Run("negative detail rolls back the payment", func(t *testing.T) {
		_, err := svc.Create(ctx, CreatePaymentRequest{
			Amount:  decimal.NewFromInt(10),
			Method:  "CHEQUE",
			Details: []PaymentDetailInput{{Method: "CHEQUE", Amount: decimal.NewFromInt(-10)}},
		})
		assertDomainCode(t, err, "INVALID_AMOUNT")
		assert.Equal(t, int64(1), testutil.CountRows(t, db, &finance.Payment{}, ""))
	})
}

func TestPaymentService_UpdateReplacesDetails(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := NewPaymentService(persistence.NewRepositories(db), persistence.NewGormTransactionScope(db), nil)

	created, err := svc.Create(ctx, CreatePaymentRequest{
		Amount:  decimal.NewFromInt(100),
		Method:  "CASH",
		Details: []PaymentDetailInput{{Method: "CASH", Amount: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", created.Status)

	status := "COMPLETED"
	amount := decimal.NewFromInt(150)
	updated, err := svc.Update(ctx, created.ID, UpdatePaymentRequest{
		Status: &status,
		Amount: &amount,
		Details: []PaymentDetailInput{
			{Method: "CASH", Amount: decimal.NewFromInt(50)},
			{Method: "CHEQUE", Amount: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PAID", updated.Status)
	assert.True(t, amount.Equal(updated.Amount))
	assert.Equal(t, int64(2), testutil.CountRows(t, db, &finance.PaymentDetail{}, "payment_id = ?", created.ID))

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &finance.PaymentDetail{}, "payment_id = ?", created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), shared.ErrNotFound)
}

func TestPaymentService_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := NewPaymentService(persistence.NewRepositories(db), persistence.NewGormTransactionScope(db), nil)

	for _, method := range []string{"CASH", "CASH", "CHEQUE"} {
		_, err := svc.Create(ctx, CreatePaymentRequest{Amount: decimal.NewFromInt(10), Method: method})
		require.NoError(t, err)
	}

	list, total, err := svc.List(ctx, PaymentListFilter{Method: "CASH"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

// ===== CNAM bonds

func TestCNAMService_CreateBondCopiesPatient(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := NewCNAMService(persistence.NewRepositories(db), persistence.NewGormTransactionScope(db), nil)
	rental := seedRental(t, db)

	end := time.Now().AddDate(0, 0, 45)
	resp, err := svc.CreateBond(ctx, CreateBondRequest{
		RentalID:  rental.ID,
		BondInput: BondInput{BondType: "cpap", TotalAmount: decimal.NewFromInt(1200), EndDate: &end},
	})
	require.NoError(t, err)
	assert.Equal(t, rental.PatientID, resp.PatientID)
	assert.Equal(t, "CPAP", resp.BondType)
	assert.Equal(t, "LOCATION", resp.Category)
	assert.Equal(t, "EN_ATTENTE_APPROBATION", resp.Status)
	assert.Equal(t, 30, resp.RenewalReminderDays)
	assert.Equal(t, 1, resp.CoveredMonths)
	assert.Equal(t, 2, resp.RemainingMonths)

	_, err = svc.CreateBond(ctx, CreateBondRequest{RentalID: uuid.New(), BondInput: BondInput{BondType: "CPAP"}})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.ListBonds(ctx, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCNAMService_ReconcileBonds(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := NewCNAMService(persistence.NewRepositories(db), persistence.NewGormTransactionScope(db), nil)
	rental := seedRental(t, db)

	kept, err := svc.CreateBond(ctx, CreateBondRequest{RentalID: rental.ID, BondInput: BondInput{BondType: "CPAP", TotalAmount: decimal.NewFromInt(100)}})
	require.NoError(t, err)
	dropped, err := svc.CreateBond(ctx, CreateBondRequest{RentalID: rental.ID, BondInput: BondInput{BondType: "MASQUE", TotalAmount: decimal.NewFromInt(50)}})
	require.NoError(t, err)

	result, err := svc.ReconcileBonds(ctx, ReconcileBondsRequest{
		RentalID: rental.ID,
		Bonds: []BondInput{
			{ID: kept.ID.String(), BondType: "CPAP", Status: "APPROUVE", TotalAmount: decimal.NewFromInt(400)},
			{ID: "new-1", BondType: "VNI", TotalAmount: decimal.NewFromInt(900)},
		},
	})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "APPROUVE", result[0].Status)
	assert.True(t, decimal.NewFromInt(400).Equal(result[0].TotalAmount))
	assert.Equal(t, "VNI", result[1].BondType)

	bonds, err := svc.ListBonds(ctx, rental.ID)
	require.NoError(t, err)
	assert.Len(t, bonds, 2)
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &finance.CNAMBondRental{}, "id = ?", dropped.ID))

	t.Run("foreign id aborts the whole reconcile", func(t *testing.T) {
		_, err := svc.ReconcileBonds(ctx, ReconcileBondsRequest{
			RentalID: rental.ID,
			Bonds:    []BondInput{{ID: uuid.NewString(), BondType: "CPAP"}},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, int64(2), testutil.CountRows(t, db, &finance.CNAMBondRental{}, "rental_id = ?", rental.ID))
	})
}

// ===== CNAM dossiers

func TestCNAMService_AdvanceStep(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := NewCNAMService(persistence.NewRepositories(db), persistence.NewGormTransactionScope(db), nil)
	patient := testutil.SeedPatient(t, db, "PAT-0001", "Amel", "Trabelsi")
	by := testutil.NewTestUUID("user")

	dossier, err := finance.NewCNAMDossier("CNAM-0001", uuid.New(), patient.ID, finance.BondTypeCPAP, finance.CNAMStatusPending, 1, by)
	require.NoError(t, err)
	require.NoError(t, db.Create(dossier).Error)

	resp, err := svc.AdvanceStep(ctx, dossier.ID, by, AdvanceStepRequest{ToStep: 3, ToStatus: "APPROUVE", Notes: "accord"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.CurrentStep)
	assert.Equal(t, "APPROUVE", resp.Status)
	require.Len(t, resp.StepHistory, 2)
	assert.Equal(t, 1, *resp.StepHistory[1].FromStep)
	assert.Equal(t, "EN_ATTENTE_APPROBATION", resp.StepHistory[1].FromStatus)

	_, err = svc.AdvanceStep(ctx, dossier.ID, by, AdvanceStepRequest{ToStep: 8, ToStatus: "APPROUVE"})
	assertDomainCode(t, err, "INVALID_STEP")

	reloaded, err := svc.GetDossier(ctx, dossier.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.StepHistory, 2)

	list, total, err := svc.ListDossiers(ctx, DossierListFilter{PatientID: patient.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}
