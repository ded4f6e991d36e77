package clinical

import (
	"context"
	"testing"
	"time"

	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/identity"
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

type clinicalFixture struct {
	db           *gorm.DB
	device       *catalog.MedicalDevice
	patient      *partner.Patient
	user         *identity.User
	publisher    *testutil.RecordingPublisher
	diagnostics  *DiagnosticService
	appointments *AppointmentService
}

func newClinicalFixture(t *testing.T) *clinicalFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	tx := persistence.NewGormTransactionScope(db)

	f := &clinicalFixture{db: db, publisher: testutil.NewRecordingPublisher()}
	depot := testutil.SeedLocation(t, db, "Depot")
	f.device = testutil.SeedDevice(t, db, "DEV-0001", "Polygraphe Nox T3", depot.ID)
	f.patient = testutil.SeedPatient(t, db, "PAT-0001", "Hedi", "Ben Salah")
	f.user = testutil.SeedUser(t, db, "tech@medrent.tn", identity.RoleEmployee)
	f.diagnostics = NewDiagnosticService(repos, tx, f.publisher, nil)
	f.appointments = NewAppointmentService(repos, tx, nil)
	return f
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestDiagnosticService_Create(t *testing.T) {
	ctx := context.Background()
	f := newClinicalFixture(t)
	followUp := time.Now().AddDate(0, 0, 10).Truncate(time.Second)

	res, err := f.diagnostics.Create(ctx, f.user.ID, CreateDiagnosticRequest{
		ClientID:        f.patient.ID,
		MedicalDeviceID: f.device.ID,
		FollowUpDate:    &followUp,
		Notes:           "Nuit du 12",
		FileURLs:        []string{"https://files.medrent.tn/patients/rapport.pdf", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, "DIAG-0001", res.DiagnosticCode)
	assert.Equal(t, "PENDING", res.Result.Status)
	assert.True(t, res.FollowUpRequired)
	assert.Equal(t, []string{clinical.EventTypeDiagnosticCreated}, f.publisher.Types())

	assert.Equal(t, catalog.DeviceStatusReserved, testutil.ReloadDevice(t, f.db, f.device.ID).Status)
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &clinical.DiagnosticResult{}, "diagnostic_id = ?", res.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &partner.PatientHistory{}, "action_type = ?", partner.HistoryDiagnostic))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &clinical.File{}, "type = ? AND patient_id = ?", clinical.FileDiagnosticDocument, f.patient.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Notification{}, "type = ? AND related_item_id = ?", workflow.NotificationDiagnosticPending, res.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Notification{}, "type = ? AND related_item_id = ?", workflow.NotificationFollowUp, res.ID))

	var task workflow.Task
	require.NoError(t, f.db.First(&task, "diagnostic_id = ?", res.ID).Error)
	assert.Equal(t, f.user.ID, task.AssignedToID)
	assert.Equal(t, workflow.TaskTodo, task.Status)
	assert.Contains(t, task.Title, "Hedi Ben Salah")

	t.Run("result updates outcome", func(t *testing.T) {
		iah := decimal.NewFromInt(32)
		updated, err := f.diagnostics.UpdateResult(ctx, res.ID, DiagnosticResultRequest{IAH: &iah, Remarque: "SAOS sévère", Status: "ABNORMAL"})
		require.NoError(t, err)
		assert.Equal(t, "ABNORMAL", updated.Result.Status)
		require.NotNil(t, updated.Result.IAH)
		assert.True(t, updated.Result.IAH.Equal(iah))

		got, err := f.diagnostics.GetByID(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, string(clinical.OutcomeAwaiting), got.Outcome)
		assert.Nil(t, got.DaysSinceEquip)

		negative := decimal.NewFromInt(-3)
		_, err = f.diagnostics.UpdateResult(ctx, res.ID, DiagnosticResultRequest{IAH: &negative})
		assertDomainCode(t, err, "INVALID_IAH")
	})

	t.Run("retired device is refused", func(t *testing.T) {
		require.NoError(t, f.db.Model(&catalog.MedicalDevice{}).Where("id = ?", f.device.ID).
			Update("status", catalog.DeviceStatusRetired).Error)
		_, err := f.diagnostics.Create(ctx, f.user.ID, CreateDiagnosticRequest{ClientID: f.patient.ID, MedicalDeviceID: f.device.ID})
		assertDomainCode(t, err, "INVALID_STATE")
		assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &clinical.Diagnostic{}, ""))
		require.NoError(t, f.db.Model(&catalog.MedicalDevice{}).Where("id = ?", f.device.ID).
			Update("status", catalog.DeviceStatusReserved).Error)
	})

	t.Run("delete releases the device", func(t *testing.T) {
		require.NoError(t, f.diagnostics.Delete(ctx, res.ID))
		assert.Equal(t, catalog.DeviceStatusActive, testutil.ReloadDevice(t, f.db, f.device.ID).Status)
		assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &clinical.DiagnosticResult{}, ""))
		assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &workflow.Task{}, ""))
		_, err := f.diagnostics.GetByID(ctx, res.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestDiagnosticService_CreateUnknownPatient(t *testing.T) {
	f := newClinicalFixture(t)
	_, err := f.diagnostics.Create(context.Background(), f.user.ID, CreateDiagnosticRequest{
		ClientID:        testutil.NewTestUUID("nobody"),
		MedicalDeviceID: f.device.ID,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, catalog.DeviceStatusActive, testutil.ReloadDevice(t, f.db, f.device.ID).Status)
	assert.Empty(t, f.publisher.Events())
}

func TestDiagnosticService_ListOutcome(t *testing.T) {
	ctx := context.Background()
	f := newClinicalFixture(t)
	f.diagnostics.now = func() time.Time { return time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC) }

	_, err := f.diagnostics.Create(ctx, f.user.ID, CreateDiagnosticRequest{ClientID: f.patient.ID, MedicalDeviceID: f.device.ID})
	require.NoError(t, err)

	other := testutil.SeedPatient(t, f.db, "PAT-0002", "Sonia", "Gharbi")
	depot := testutil.SeedLocation(t, f.db, "Sousse")
	second := testutil.SeedDevice(t, f.db, "DEV-0002", "Polygraphe Alice", depot.ID)
	_, err = f.diagnostics.Create(ctx, f.user.ID, CreateDiagnosticRequest{ClientID: other.ID, MedicalDeviceID: second.ID})
	require.NoError(t, err)

	rental, err := trade.NewRental("RNT-0001", f.device.ID, other.ID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), nil, f.user.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Omit("Configuration", "Gaps", "Accessories", "Periods").Create(rental).Error)

	list, total, err := f.diagnostics.List(ctx, DiagnosticListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)

	byPatient := map[string]DiagnosticResponse{}
	for _, d := range list {
		byPatient[d.PatientID.String()] = d
	}
	assert.Equal(t, string(clinical.OutcomeDiagnosticOnly), byPatient[f.patient.ID.String()].Outcome)
	equipped := byPatient[other.ID.String()]
	assert.Equal(t, string(clinical.OutcomeEquipped), equipped.Outcome)
	require.NotNil(t, equipped.DaysSinceEquip)
	assert.Equal(t, 10, *equipped.DaysSinceEquip)

	filtered, total, err := f.diagnostics.List(ctx, DiagnosticListFilter{PatientID: other.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, filtered, 1)
}

func TestAppointmentService_Create(t *testing.T) {
	ctx := context.Background()
	f := newClinicalFixture(t)
	when := time.Now().AddDate(0, 0, 5).Truncate(time.Second)

	res, err := f.appointments.Create(ctx, f.user.ID, CreateAppointmentRequest{
		AppointmentType:      DiagnosticVisitType,
		ScheduledDate:        when,
		Location:             "Domicile, La Marsa",
		Priority:             "URGENT",
		PatientID:            &f.patient.ID,
		AssignedToID:         &f.user.ID,
		CreateDiagnosticTask: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "RDV-0001", res.AppointmentCode)
	assert.Equal(t, "SCHEDULED", res.Status)
	assert.Equal(t, "URGENT", res.Priority)
	require.NotNil(t, res.TaskID)

	var task workflow.Task
	require.NoError(t, f.db.First(&task, "id = ?", *res.TaskID).Error)
	assert.Equal(t, workflow.TaskPriorityHigh, task.Priority)
	assert.Equal(t, 2*time.Hour, task.EndDate.Sub(task.StartDate))

	var reminder workflow.Notification
	require.NoError(t, f.db.First(&reminder, "type = ? AND related_item_id = ?", workflow.NotificationAppointment, res.ID).Error)
	require.NotNil(t, reminder.DueDate)
	assert.True(t, reminder.DueDate.Equal(when.AddDate(0, 0, -1)))
	assert.Equal(t, f.user.ID, reminder.UserID)
}

func TestAppointmentService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newClinicalFixture(t)
	when := time.Now().AddDate(0, 0, 2)
	ghost := testutil.NewTestUUID("ghost")

	_, err := f.appointments.Create(ctx, f.user.ID, CreateAppointmentRequest{AppointmentType: "Visite", ScheduledDate: when, Location: "Agence"})
	assertDomainCode(t, err, "CLIENT_REQUIRED")

	_, err = f.appointments.Create(ctx, f.user.ID, CreateAppointmentRequest{AppointmentType: "Visite", ScheduledDate: when, Location: "Agence", CompanyID: &ghost})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.appointments.Create(ctx, f.user.ID, CreateAppointmentRequest{
		AppointmentType: "Visite", ScheduledDate: when, Location: "Agence", PatientID: &f.patient.ID, AssignedToID: &ghost,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.appointments.Create(ctx, f.user.ID, CreateAppointmentRequest{AppointmentType: "Visite", Location: "Agence", PatientID: &f.patient.ID})
	assertDomainCode(t, err, "INVALID_SCHEDULED_DATE")

	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &clinical.Appointment{}, ""))
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &workflow.Notification{}, ""))
}

func TestAppointmentService_ListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := newClinicalFixture(t)
	company := testutil.SeedCompany(t, f.db, "COM-0001", "Clinique Les Oliviers")
	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	later, err := f.appointments.Create(ctx, f.user.ID, CreateAppointmentRequest{
		AppointmentType: "Livraison", ScheduledDate: base.AddDate(0, 0, 3), Location: "Clinique", CompanyID: &company.ID,
	})
	require.NoError(t, err)
	sooner, err := f.appointments.Create(ctx, f.user.ID, CreateAppointmentRequest{
		AppointmentType: "Installation", ScheduledDate: base, Location: "Domicile", PatientID: &f.patient.ID,
	})
	require.NoError(t, err)

	list, total, err := f.appointments.List(ctx, AppointmentListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, sooner.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)

	ranged, _, err := f.appointments.List(ctx, AppointmentListFilter{FromDate: "2026-05-11", ToDate: "2026-05-13"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, later.ID, ranged[0].ID)

	status := "CONFIRMED"
	location := "Agence Tunis"
	updated, err := f.appointments.Update(ctx, sooner.ID, UpdateAppointmentRequest{Status: &status, Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", updated.Status)
	assert.Equal(t, "Agence Tunis", updated.Location)
	assert.True(t, updated.ScheduledDate.Equal(base))

	bad := "MISSED"
	_, err = f.appointments.Update(ctx, sooner.ID, UpdateAppointmentRequest{Status: &bad})
	assertDomainCode(t, err, "INVALID_APPOINTMENT_STATUS")

	require.NoError(t, f.appointments.Delete(ctx, later.ID))
	assert.ErrorIs(t, f.appointments.Delete(ctx, later.ID), shared.ErrNotFound)
}
