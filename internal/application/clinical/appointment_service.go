package clinical

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// DiagnosticVisitType is the appointment type that can open a diagnostic task
const DiagnosticVisitType = "DIAGNOSTIC_VISIT"

const diagnosticVisitDuration = 2 * time.Hour

// AppointmentService handles appointments with patients and companies
type AppointmentService struct {
	repos   uow.Repositories
	txScope uow.TransactionScope
	logger  *zap.Logger
}

// NewAppointmentService creates a new AppointmentService
func NewAppointmentService(repos uow.Repositories, txScope uow.TransactionScope, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{repos: repos, txScope: txScope, logger: logger}
}

// Create schedules an appointment, its reminder and, for diagnostic visits
// on request, the assignee's diagnostic task
func (s *AppointmentService) Create(ctx context.Context, actorID uuid.UUID, req CreateAppointmentRequest) (*AppointmentResponse, error) {
	var (
		appointment *clinical.Appointment
		taskID      *uuid.UUID
	)
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		subject := ""
		if req.PatientID != nil {
			patient, err := repos.Patients().FindByID(ctx, *req.PatientID)
			if err != nil {
				return err
			}
			subject = patient.FullName()
		}
		if req.CompanyID != nil {
			company, err := repos.Companies().FindByID(ctx, *req.CompanyID)
			if err != nil {
				return err
			}
			if subject == "" {
				subject = company.CompanyName
			}
		}
		if req.AssignedToID != nil {
			if _, err := repos.Users().FindByID(ctx, *req.AssignedToID); err != nil {
				return err
			}
		}

		code, err := repos.Codes().Next(ctx, shared.CodeAppointment)
		if err != nil {
			return err
		}
		appointment, err = clinical.NewAppointment(code, req.AppointmentType, req.ScheduledDate, req.Location, req.PatientID, req.CompanyID, actorID)
		if err != nil {
			return err
		}
		if err := appointment.SetPriority(clinical.Priority(req.Priority)); err != nil {
			return err
		}
		if req.Status != "" {
			if err := appointment.SetStatus(clinical.AppointmentStatus(req.Status)); err != nil {
				return err
			}
		}
		appointment.Notes = req.Notes
		appointment.AssignedToID = req.AssignedToID
		if err := repos.Appointments().Save(ctx, appointment); err != nil {
			return err
		}

		if err := remind(ctx, repos, appointment, subject); err != nil {
			return err
		}
		if req.CreateDiagnosticTask && appointment.AppointmentType == DiagnosticVisitType &&
			appointment.PatientID != nil && appointment.AssignedToID != nil {
			task, err := diagnosticTask(ctx, repos, appointment, subject)
			if err != nil {
				return err
			}
			taskID = &task.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment created",
		zap.String("appointment_code", appointment.AppointmentCode),
		zap.Time("scheduled_date", appointment.ScheduledDate))
	response := ToAppointmentResponse(appointment)
	response.TaskID = taskID
	return &response, nil
}

// remind writes the reminder due one day before the appointment, for the
// assignee or the creator when nobody is assigned
func remind(ctx context.Context, repos uow.Repositories, a *clinical.Appointment, subject string) error {
	recipient := a.CreatedByID
	if a.AssignedToID != nil {
		recipient = *a.AssignedToID
	}
	due := a.ReminderAt()
	n, err := workflow.NewNotification(recipient, workflow.NotificationAppointment,
		"Rappel de rendez-vous - "+subject,
		"Rendez-vous prévu le "+a.ScheduledDate.Format("02/01/2006"),
		&due)
	if err != nil {
		return err
	}
	n.CompanyID = a.CompanyID
	n.Metadata = shared.JSONMap{"appointment_date": a.ScheduledDate.Format(time.RFC3339)}
	return repos.Notifications().Save(ctx, n.About(a.ID, "appointment").ForPatient(a.PatientID))
}

func diagnosticTask(ctx context.Context, repos uow.Repositories, a *clinical.Appointment, patientName string) (*workflow.Task, error) {
	code, err := repos.Codes().Next(ctx, shared.CodeTask)
	if err != nil {
		return nil, err
	}
	task, err := workflow.NewTask(code,
		"Diagnostic polygraphie - "+patientName,
		fmt.Sprintf("Effectuer un diagnostic polygraphie chez le patient %s à l'adresse: %s", patientName, a.Location),
		taskPriorityFor(a.Priority),
		a.ScheduledDate, a.ScheduledDate.Add(diagnosticVisitDuration), *a.AssignedToID)
	if err != nil {
		return nil, err
	}
	if err := repos.Tasks().Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// taskPriorityFor maps an appointment priority onto the task scale
func taskPriorityFor(p clinical.Priority) workflow.TaskPriority {
	switch p {
	case clinical.PriorityUrgent:
		return workflow.TaskPriorityHigh
	case clinical.PriorityHigh:
		return workflow.TaskPriorityMedium
	default:
		return workflow.TaskPriorityLow
	}
}

// GetByID retrieves an appointment by ID
func (s *AppointmentService) GetByID(ctx context.Context, id uuid.UUID) (*AppointmentResponse, error) {
	a, err := s.repos.Appointments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToAppointmentResponse(a)
	return &response, nil
}

// List retrieves appointments, soonest first
func (s *AppointmentService) List(ctx context.Context, filter AppointmentListFilter) ([]AppointmentResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, "", "", filter.Search).
		With("status", filter.Status).
		With("patient_id", filter.PatientID).
		With("company_id", filter.CompanyID).
		With("assigned_to_id", filter.AssignedToID)
	domainFilter.OrderBy = ""
	if t, err := time.Parse("2006-01-02", filter.FromDate); err == nil {
		domainFilter = domainFilter.With("from_date", t)
	}
	if t, err := time.Parse("2006-01-02", filter.ToDate); err == nil {
		domainFilter = domainFilter.With("to_date", t.AddDate(0, 0, 1))
	}

	appointments, err := s.repos.Appointments().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Appointments().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToAppointmentResponses(appointments), total, nil
}

// Update applies a partial update to an appointment
func (s *AppointmentService) Update(ctx context.Context, id uuid.UUID, req UpdateAppointmentRequest) (*AppointmentResponse, error) {
	a, err := s.repos.Appointments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ScheduledDate != nil || req.Location != nil {
		when := a.ScheduledDate
		if req.ScheduledDate != nil {
			when = *req.ScheduledDate
		}
		location := ""
		if req.Location != nil {
			location = *req.Location
		}
		if err := a.Reschedule(when, location); err != nil {
			return nil, err
		}
	}
	if req.AppointmentType != nil {
		if *req.AppointmentType == "" {
			return nil, shared.NewDomainError("INVALID_APPOINTMENT_TYPE", "Appointment type is required")
		}
		a.AppointmentType = *req.AppointmentType
	}
	if req.Priority != nil {
		if err := a.SetPriority(clinical.Priority(*req.Priority)); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := a.SetStatus(clinical.AppointmentStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	if req.AssignedToID != nil {
		if _, err := s.repos.Users().FindByID(ctx, *req.AssignedToID); err != nil {
			return nil, err
		}
		a.AssignedToID = req.AssignedToID
	}
	if err := s.repos.Appointments().Save(ctx, a); err != nil {
		return nil, err
	}
	response := ToAppointmentResponse(a)
	return &response, nil
}

// Delete removes an appointment
func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repos.Appointments().FindByID(ctx, id); err != nil {
		return err
	}
	return s.repos.Appointments().Delete(ctx, id)
}
