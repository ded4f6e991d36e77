package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/medrent/backend/internal/domain/workflow"
	"github.com/medrent/backend/internal/infrastructure/event"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type workflowFixture struct {
	db       *gorm.DB
	admin    *identity.User
	manager  *identity.User
	employee *identity.User
	bus      *event.InMemoryEventBus
	tasks    *TaskService
	inbox    *NotificationService
	handler  *NotificationEventHandler
	sweep    *SweepService
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	tx := persistence.NewGormTransactionScope(db)

	f := &workflowFixture{
		db:       db,
		admin:    testutil.SeedUser(t, db, "admin@medrent.tn", identity.RoleAdmin),
		manager:  testutil.SeedUser(t, db, "manager@medrent.tn", identity.RoleManager),
		employee: testutil.SeedUser(t, db, "tech@medrent.tn", identity.RoleEmployee),
		bus:      event.NewInMemoryEventBus(nil),
	}
	f.handler = NewNotificationEventHandler(repos.Notifications(), repos.Users(), nil)
	f.bus.Subscribe(f.handler)
	f.tasks = NewTaskService(repos, tx, f.bus, nil)
	f.inbox = NewNotificationService(repos.Notifications(), nil)
	f.sweep = NewSweepService(repos, nil)
	return f
}

func actorOf(u *identity.User) identity.Actor {
	return identity.Actor{UserID: u.ID, Role: u.Role}
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestTaskService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	start := time.Now().Truncate(time.Second)

	assigned, err := f.tasks.Create(ctx, actorOf(f.manager), CreateTaskRequest{
		Title:        "Installer concentrateur",
		Description:  "Installation chez le patient",
		Priority:     "HIGH",
		StartDate:    start,
		EndDate:      start.Add(2 * time.Hour),
		AssignedToID: &f.employee.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "TASK-0001", assigned.TaskCode)
	assert.Equal(t, f.employee.ID, assigned.AssignedToID)
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Notification{},
		"type = ? AND user_id = ?", workflow.NotificationTaskAssigned, f.employee.ID))

	own, err := f.tasks.Create(ctx, actorOf(f.manager), CreateTaskRequest{
		Title: "Relancer la CNAM", StartDate: start, EndDate: start,
	})
	require.NoError(t, err)
	assert.Equal(t, "MEDIUM", own.Priority)
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Notification{}, ""))

	t.Run("employees only see their tasks", func(t *testing.T) {
		list, total, err := f.tasks.List(ctx, actorOf(f.employee), TaskListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, assigned.ID, list[0].ID)

		_, err = f.tasks.GetByID(ctx, actorOf(f.employee), own.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		all, total, err := f.tasks.List(ctx, actorOf(f.admin), TaskListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, all, 2)
	})

	t.Run("employees cannot assign others", func(t *testing.T) {
		_, err := f.tasks.Create(ctx, actorOf(f.employee), CreateTaskRequest{
			Title: "Test", StartDate: start, EndDate: start, AssignedToID: &f.admin.ID,
		})
		assertDomainCode(t, err, "FORBIDDEN")

		_, err = f.tasks.Update(ctx, actorOf(f.employee), assigned.ID, UpdateTaskRequest{AssignedToID: &f.manager.ID})
		assertDomainCode(t, err, "FORBIDDEN")
	})

	t.Run("invalid window is refused", func(t *testing.T) {
		earlier := start.Add(-time.Hour)
		_, err := f.tasks.Update(ctx, actorOf(f.employee), assigned.ID, UpdateTaskRequest{EndDate: &earlier})
		assertDomainCode(t, err, "INVALID_DATE")
	})

	t.Run("completion notifies supervisors", func(t *testing.T) {
		status := "COMPLETED"
		done, err := f.tasks.Update(ctx, actorOf(f.employee), assigned.ID, UpdateTaskRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", done.Status)
		require.NotNil(t, done.CompletedAt)

		assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Notification{},
			"type = ? AND user_id = ?", workflow.NotificationTaskCompleted, f.admin.ID))
		assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Notification{},
			"type = ? AND user_id = ?", workflow.NotificationTaskCompleted, f.manager.ID))
		assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &workflow.Notification{},
			"type = ? AND user_id = ?", workflow.NotificationTaskCompleted, f.employee.ID))
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, f.tasks.Delete(ctx, actorOf(f.employee), own.ID), shared.ErrNotFound)
		require.NoError(t, f.tasks.Delete(ctx, actorOf(f.manager), own.ID))
		assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &workflow.Task{}, ""))
	})
}

func TestNotificationEventHandler(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	requestID := testutil.NewTestUUID("request")

	approved := &inventory.TransferRequestReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeTransferRequestReviewed, inventory.AggregateTypeTransferRequest, requestID, f.admin.ID),
		RequestCode:     "STR-0001",
		RequestedByID:   f.employee.ID,
		Decision:        inventory.TransferRequestApproved,
	}
	rejected := &inventory.TransferRequestReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeTransferRequestReviewed, inventory.AggregateTypeTransferRequest, requestID, f.admin.ID),
		RequestCode:     "STR-0002",
		RequestedByID:   f.employee.ID,
		Decision:        inventory.TransferRequestRejected,
		ReviewNotes:     "Stock réservé",
	}
	saleID := testutil.NewTestUUID("sale")
	sold := &trade.SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSaleCreated, trade.AggregateTypeSale, saleID, f.manager.ID),
		SaleCode:        "SAL-0001",
		ProcessedByID:   f.manager.ID,
	}
	require.NoError(t, f.bus.Publish(ctx, approved, rejected, sold))

	var n workflow.Notification
	require.NoError(t, f.db.First(&n, "type = ?", workflow.NotificationTransferApproved).Error)
	assert.Equal(t, f.employee.ID, n.UserID)
	require.NotNil(t, n.RelatedItemID)
	assert.Equal(t, requestID, *n.RelatedItemID)

	var r workflow.Notification
	require.NoError(t, f.db.First(&r, "type = ?", workflow.NotificationTransferRejected).Error)
	assert.Contains(t, r.Message, "Stock réservé")

	var s workflow.Notification
	require.NoError(t, f.db.First(&s, "type = ?", workflow.NotificationSaleCompleted).Error)
	assert.Equal(t, f.manager.ID, s.UserID)
	assert.Equal(t, workflow.PriorityLow, s.Priority)

	assert.Error(t, f.handler.Handle(ctx, &clinical.DiagnosticCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(clinical.EventTypeDiagnosticCreated, clinical.AggregateTypeDiagnostic, saleID, f.admin.ID),
	}))
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	var ids []workflow.Notification
	for _, title := range []string{"Premier", "Second"} {
		n, err := workflow.NewNotification(f.employee.ID, workflow.NotificationOther, title, "", nil)
		require.NoError(t, err)
		require.NoError(t, f.db.Create(n).Error)
		ids = append(ids, *n)
	}
	other, err := workflow.NewNotification(f.admin.ID, workflow.NotificationOther, "Admin", "", nil)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(other).Error)

	list, total, err := f.inbox.List(ctx, f.employee.ID, NotificationListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	_, err = f.inbox.MarkRead(ctx, f.employee.ID, other.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	read, err := f.inbox.MarkRead(ctx, f.employee.ID, ids[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Equal(t, "READ", read.Status)

	unread := false
	list, total, err = f.inbox.List(ctx, f.employee.ID, NotificationListFilter{IsRead: &unread})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, ids[1].ID, list[0].ID)

	changed, err := f.inbox.MarkAllRead(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	assert.ErrorIs(t, f.inbox.Delete(ctx, f.admin.ID, ids[0].ID), shared.ErrNotFound)
	require.NoError(t, f.inbox.Delete(ctx, f.employee.ID, ids[0].ID))
	assert.Equal(t, int64(2), testutil.CountRows(t, f.db, &workflow.Notification{}, ""))
}

func TestSweepService_Run(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	now := time.Now().UTC().Truncate(time.Second)
	f.sweep.now = func() time.Time { return now }

	patient := testutil.SeedPatient(t, f.db, "PAT-0001", "Amel", "Trabelsi")
	require.NoError(t, f.db.Model(&partner.Patient{}).Where("id = ?", patient.ID).
		Update("assigned_to_id", f.employee.ID).Error)

	overdue, err := finance.NewPayment("PAY-0001", decimal.NewFromInt(120), finance.PaymentMethodCash, finance.PaymentStatusPending, finance.PaymentSourceOther)
	require.NoError(t, err)
	due := now.AddDate(0, 0, -5)
	overdue.DueDate = &due
	overdue.PatientID = &patient.ID
	require.NoError(t, f.db.Omit("Details").Create(overdue).Error)
	upcoming, err := workflow.NewNotification(f.employee.ID, workflow.NotificationPaymentDue, "Paiement de location à venir", "", &due)
	require.NoError(t, err)
	upcoming.Metadata = shared.JSONMap{workflow.MetaReminder: workflow.ReminderUpcoming}
	require.NoError(t, f.db.Create(upcoming.About(overdue.ID, "payment")).Error)

	depot := testutil.SeedLocation(t, f.db, "Depot")
	device := testutil.SeedDevice(t, f.db, "DEV-0001", "Concentrateur 5L", depot.ID)
	rentalEnd := now.AddDate(0, 0, 10)
	rental, err := trade.NewRental("RNT-0001", device.ID, patient.ID, now.AddDate(0, -2, 0), &rentalEnd, f.manager.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Omit("Configuration", "Gaps", "Accessories", "Periods").Create(rental).Error)

	bond, err := finance.NewCNAMBond(patient.ID, finance.BondTypeCPAP, finance.BondCategoryLocation, decimal.NewFromInt(570))
	require.NoError(t, err)
	bondEnd := now.AddDate(0, 0, 20)
	bond.BondNumber = "BN-778"
	bond.Status = finance.CNAMStatusApproved
	bond.EndDate = &bondEnd
	require.NoError(t, f.db.Create(bond).Error)

	worn := testutil.SeedDevice(t, f.db, "DEV-0002", "CPAP S9", depot.ID)
	serviced := testutil.SeedDevice(t, f.db, "DEV-0003", "CPAP S10", depot.ID)
	require.NoError(t, f.db.Model(&catalog.MedicalDevice{}).Where("id IN ?", []interface{}{worn.ID, serviced.ID}).
		Update("requires_maintenance", true).Error)
	require.NoError(t, f.db.Create(&catalog.RepairLog{
		BaseEntity:      shared.NewBaseEntity(),
		MedicalDeviceID: serviced.ID,
		RepairDate:      now.AddDate(0, -1, 0),
	}).Error)

	y, m, d := now.Date()
	tomorrow := time.Date(y, m, d+1, 10, 0, 0, 0, time.UTC)
	visit, err := clinical.NewAppointment("RDV-0001", "Installation", tomorrow, "Domicile", &patient.ID, nil, f.admin.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(visit).Error)

	result, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"PAYMENT_DUE":     1,
		"RENTAL_EXPIRING": 1,
		"CNAM_RENEWAL":    1,
		"MAINTENANCE":     2,
		"APPOINTMENT":     1,
	}, result.Created)
	assert.Equal(t, 6, result.Total)
	assert.Equal(t, 0, result.Skipped)

	assert.Equal(t, int64(4), testutil.CountRows(t, f.db, &workflow.Notification{}, "user_id = ?", f.employee.ID))
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, &workflow.Notification{}, "related_item_id = ?", serviced.ID))

	var reminder workflow.Notification
	require.NoError(t, f.db.Where("type = ? AND id <> ?", workflow.NotificationPaymentDue, upcoming.ID).First(&reminder).Error)
	assert.Equal(t, workflow.ReminderOverdue, reminder.Reminder())
	assert.Equal(t, workflow.PriorityUrgent, reminder.Priority)
	assert.Equal(t, "PAY-0001", reminder.Metadata["payment_code"])

	again, err := f.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Total)
	assert.Equal(t, 5, again.Skipped)
}
