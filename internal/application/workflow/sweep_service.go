package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// SweepJobName is the scheduler name of the daily notification sweep
const SweepJobName = "notification-sweep"

const (
	expiryWindow      = 30 * 24 * time.Hour
	maintenanceMonths = 6
)

// SweepService creates the reminders that depend on the calendar rather than
// on a user action. Every record is notified once per notification type.
type SweepService struct {
	repos  uow.Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewSweepService creates a new SweepService
func NewSweepService(repos uow.Repositories, logger *zap.Logger) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{repos: repos, logger: logger, now: time.Now}
}

// Job adapts Run to the scheduler's job signature
func (s *SweepService) Job(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}

// sweepRun carries the per-run lookups shared by every step
type sweepRun struct {
	*SweepService
	at          time.Time
	result      *SweepResult
	patients    map[uuid.UUID]*partner.Patient
	supervisors []uuid.UUID
	loadedSups  bool
}

// Run performs every step; a failing step does not stop the others
func (s *SweepService) Run(ctx context.Context) (*SweepResult, error) {
	run := &sweepRun{
		SweepService: s,
		at:           s.now(),
		result:       &SweepResult{Created: make(map[string]int)},
		patients:     make(map[uuid.UUID]*partner.Patient),
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"overdue payments", run.overduePayments},
		{"expiring rentals", run.expiringRentals},
		{"cnam renewals", run.bondRenewals},
		{"maintenance", run.maintenanceDue},
		{"appointments", run.tomorrowAppointments},
	}
	var errs []error
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			s.logger.Error("notification sweep step failed", zap.String("step", step.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	s.logger.Info("notification sweep finished",
		zap.Int("created", run.result.Total),
		zap.Int("skipped", run.result.Skipped),
		zap.Any("by_type", run.result.Created))
	return run.result, errors.Join(errs...)
}

func (r *sweepRun) overduePayments(ctx context.Context) error {
	payments, err := r.repos.Payments().FindOverdue(ctx, r.at)
	if err != nil {
		return err
	}
	for i := range payments {
		p := &payments[i]
		name, follower, err := r.clientFollower(ctx, p.PatientID, p.CompanyID)
		if err != nil {
			return err
		}
		recipients, err := r.orSupervisors(ctx, follower)
		if err != nil {
			return err
		}
		err = r.notify(ctx, recipients, workflow.NotificationPaymentDue, p.ID, "payment", p.DueDate, p.PatientID,
			"Paiement en retard - "+name,
			fmt.Sprintf("Le paiement %s de %s TND est en retard", p.PaymentCode, p.Amount.StringFixed(2)),
			shared.JSONMap{
				"payment_code":        p.PaymentCode,
				"amount":              p.Amount.StringFixed(2),
				workflow.MetaReminder: workflow.ReminderOverdue,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *sweepRun) expiringRentals(ctx context.Context) error {
	rentals, err := r.repos.Rentals().FindEndingBetween(ctx, r.at, r.at.Add(expiryWindow))
	if err != nil {
		return err
	}
	for i := range rentals {
		rental := &rentals[i]
		name, follower, err := r.clientFollower(ctx, &rental.PatientID, nil)
		if err != nil {
			return err
		}
		recipients := []uuid.UUID{rental.CreatedByID}
		if follower != nil {
			recipients = []uuid.UUID{*follower}
		}
		err = r.notify(ctx, recipients, workflow.NotificationRentalExpiring, rental.ID, "rental", rental.EndDate, &rental.PatientID,
			"Location arrivant à échéance - "+name,
			fmt.Sprintf("La location %s se termine le %s", rental.RentalCode, rental.EndDate.Format("02/01/2006")),
			shared.JSONMap{"rental_code": rental.RentalCode})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *sweepRun) bondRenewals(ctx context.Context) error {
	bonds, err := r.repos.Bonds().FindEndingBetween(ctx, finance.CNAMStatusApproved, r.at, r.at.Add(expiryWindow))
	if err != nil {
		return err
	}
	for i := range bonds {
		bond := &bonds[i]
		name, follower, err := r.clientFollower(ctx, &bond.PatientID, nil)
		if err != nil {
			return err
		}
		recipients, err := r.orSupervisors(ctx, follower)
		if err != nil {
			return err
		}
		err = r.notify(ctx, recipients, workflow.NotificationCNAMRenewal, bond.ID, "cnam_bond", bond.EndDate, &bond.PatientID,
			"Renouvellement CNAM - "+name,
			fmt.Sprintf("Le bon CNAM %s expire le %s", bond.BondNumber, bond.EndDate.Format("02/01/2006")),
			shared.JSONMap{"bond_number": bond.BondNumber, "bond_type": string(bond.BondType)})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *sweepRun) maintenanceDue(ctx context.Context) error {
	devices, err := r.repos.Devices().FindDueForMaintenance(ctx, r.at.AddDate(0, -maintenanceMonths, 0))
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}
	supervisors, err := r.supervisorIDs(ctx)
	if err != nil {
		return err
	}
	for i := range devices {
		d := &devices[i]
		err = r.notify(ctx, supervisors, workflow.NotificationMaintenance, d.ID, "medical_device", nil, d.PatientID,
			"Maintenance requise - "+d.Name,
			fmt.Sprintf("L'appareil %s (%s) n'a pas été révisé depuis plus de %d mois", d.Name, d.DeviceCode, maintenanceMonths),
			shared.JSONMap{"device_code": d.DeviceCode, "serial_number": d.SerialNumber})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *sweepRun) tomorrowAppointments(ctx context.Context) error {
	y, m, d := r.at.Date()
	from := time.Date(y, m, d+1, 0, 0, 0, 0, r.at.Location())
	appointments, err := r.repos.Appointments().FindScheduledBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	for i := range appointments {
		a := &appointments[i]
		recipient := a.CreatedByID
		if a.AssignedToID != nil {
			recipient = *a.AssignedToID
		}
		due := a.ScheduledDate
		err = r.notify(ctx, []uuid.UUID{recipient}, workflow.NotificationAppointment, a.ID, "appointment", &due, a.PatientID,
			"Rendez-vous demain - "+a.AppointmentType,
			fmt.Sprintf("Rendez-vous %s prévu le %s à %s", a.AppointmentCode, a.ScheduledDate.Format("02/01/2006 15:04"), a.Location),
			shared.JSONMap{"appointment_code": a.AppointmentCode})
		if err != nil {
			return err
		}
	}
	return nil
}

// notify writes one notification per recipient unless the record already has
// a notification of the type
func (r *sweepRun) notify(ctx context.Context, recipients []uuid.UUID, ntype workflow.NotificationType, itemID uuid.UUID, itemType string, due *time.Time, patientID *uuid.UUID, title, message string, metadata shared.JSONMap) error {
	reminder, _ := metadata[workflow.MetaReminder].(string)
	exists, err := r.repos.Notifications().ExistsFor(ctx, ntype, itemID, reminder)
	if err != nil {
		return err
	}
	if exists || len(recipients) == 0 {
		r.result.Skipped++
		return nil
	}
	for _, userID := range recipients {
		n, err := workflow.NewNotification(userID, ntype, title, message, due)
		if err != nil {
			return err
		}
		n.Priority = workflow.PriorityForDueDate(due, r.at)
		n.Metadata = metadata
		if err := r.repos.Notifications().Save(ctx, n.About(itemID, itemType).ForPatient(patientID)); err != nil {
			return err
		}
		r.result.add(ntype)
	}
	return nil
}

// clientFollower resolves the display name of a patient or company and the
// user following it, if any
func (r *sweepRun) clientFollower(ctx context.Context, patientID, companyID *uuid.UUID) (string, *uuid.UUID, error) {
	switch {
	case patientID != nil:
		p, err := r.patient(ctx, *patientID)
		if err != nil {
			return "", nil, err
		}
		for _, id := range []*uuid.UUID{p.AssignedToID, p.TechnicianID, p.SupervisorID} {
			if id != nil {
				return p.FullName(), id, nil
			}
		}
		return p.FullName(), nil, nil
	case companyID != nil:
		c, err := r.repos.Companies().FindByID(ctx, *companyID)
		if err != nil {
			return "", nil, err
		}
		return c.CompanyName, c.AssignedToID, nil
	}
	return "", nil, nil
}

// orSupervisors returns the follower, or the admins and managers when nobody follows the client
func (r *sweepRun) orSupervisors(ctx context.Context, follower *uuid.UUID) ([]uuid.UUID, error) {
	if follower != nil {
		return []uuid.UUID{*follower}, nil
	}
	return r.supervisorIDs(ctx)
}

func (r *sweepRun) patient(ctx context.Context, id uuid.UUID) (*partner.Patient, error) {
	if p, ok := r.patients[id]; ok {
		return p, nil
	}
	p, err := r.repos.Patients().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.patients[id] = p
	return p, nil
}

func (r *sweepRun) supervisorIDs(ctx context.Context) ([]uuid.UUID, error) {
	if r.loadedSups {
		return r.supervisors, nil
	}
	ids, err := supervisorsOf(ctx, r.repos.Users())
	if err != nil {
		return nil, err
	}
	r.supervisors, r.loadedSups = ids, true
	return ids, nil
}
