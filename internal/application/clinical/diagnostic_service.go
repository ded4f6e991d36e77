package clinical

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

// DiagnosticService handles sleep studies and their results
type DiagnosticService struct {
	repos     uow.Repositories
	txScope   uow.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewDiagnosticService creates a new DiagnosticService
func NewDiagnosticService(repos uow.Repositories, txScope uow.TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *DiagnosticService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosticService{repos: repos, txScope: txScope, publisher: publisher, logger: logger, now: time.Now}
}

// Create records a diagnostic with a PENDING result, reserves the device,
// and writes the history entry, notifications, files and follow-up task
func (s *DiagnosticService) Create(ctx context.Context, actorID uuid.UUID, req CreateDiagnosticRequest) (*DiagnosticResponse, error) {
	var diagnostic *clinical.Diagnostic
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		patient, err := repos.Patients().FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}
		device, err := repos.Devices().FindByID(ctx, req.MedicalDeviceID)
		if err != nil {
			return err
		}
		if err := device.EnsureAvailable(); err != nil {
			return err
		}

		code, err := repos.Codes().Next(ctx, shared.CodeDiagnostic)
		if err != nil {
			return err
		}
		date := s.now()
		if req.DiagnosticDate != nil && !req.DiagnosticDate.IsZero() {
			date = *req.DiagnosticDate
		}
		diagnostic, err = clinical.NewDiagnostic(code, device.ID, patient.ID, date, req.FollowUpDate, actorID)
		if err != nil {
			return err
		}
		diagnostic.Notes = req.Notes
		if err := repos.Diagnostics().Save(ctx, diagnostic); err != nil {
			return err
		}
		if err := repos.Diagnostics().SaveResult(ctx, diagnostic.Result); err != nil {
			return err
		}

		if err := device.SetStatus(catalog.DeviceStatusReserved); err != nil {
			return err
		}
		if err := repos.Devices().Save(ctx, device); err != nil {
			return err
		}

		entry := partner.NewPatientHistory(patient.ID, actorID, partner.HistoryDiagnostic, diagnostic.ID, "diagnostic", shared.JSONMap{
			"diagnostic_code": diagnostic.DiagnosticCode,
			"device_name":     device.Name,
			"device_code":     device.DeviceCode,
			"follow_up_date":  req.FollowUpDate,
			"notes":           req.Notes,
		})
		if err := repos.PatientHistory().Save(ctx, entry); err != nil {
			return err
		}

		if err := s.notifyCreated(ctx, repos, diagnostic, patient, device, actorID); err != nil {
			return err
		}
		if err := attachFiles(ctx, repos, patient.ID, req.FileURLs); err != nil {
			return err
		}
		if req.FollowUpDate != nil {
			return s.followUpTask(ctx, repos, diagnostic, patient, actorID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("diagnostic created",
		zap.String("diagnostic_code", diagnostic.DiagnosticCode),
		zap.String("patient_id", diagnostic.PatientID.String()),
		zap.String("device_id", diagnostic.MedicalDeviceID.String()))
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, diagnostic.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish diagnostic events", zap.String("diagnostic_code", diagnostic.DiagnosticCode), zap.Error(err))
		}
	}
	diagnostic.ClearDomainEvents()

	response := ToDiagnosticResponse(diagnostic)
	return &response, nil
}

// notifyCreated writes the creation notice, due now, and the result notice,
// due once the result is expected
func (s *DiagnosticService) notifyCreated(ctx context.Context, repos uow.Repositories, d *clinical.Diagnostic, patient *partner.Patient, device *catalog.MedicalDevice, actorID uuid.UUID) error {
	now := s.now()
	created, err := workflow.NewNotification(actorID, workflow.NotificationDiagnosticPending, "Diagnostic créé",
		fmt.Sprintf("Diagnostic créé pour le patient %s avec l'appareil %s", patient.FullName(), device.Name), &now)
	if err != nil {
		return err
	}
	created.Priority = workflow.PriorityNormal
	created.Metadata = shared.JSONMap{"device_id": device.ID.String(), "device_name": device.Name, "type": "DIAGNOSTIC_CREATION"}
	if err := repos.Notifications().Save(ctx, created.About(d.ID, "diagnostic").ForPatient(&d.PatientID)); err != nil {
		return err
	}

	due := now.AddDate(0, 0, clinical.FollowUpLeadDays)
	result, err := workflow.NewNotification(actorID, workflow.NotificationFollowUp, "Résultat de diagnostic attendu",
		fmt.Sprintf("Résultat du diagnostic pour %s attendu avec l'appareil %s", patient.FullName(), device.Name), &due)
	if err != nil {
		return err
	}
	result.Metadata = shared.JSONMap{"device_id": device.ID.String(), "device_name": device.Name}
	return repos.Notifications().Save(ctx, result.About(d.ID, "diagnostic").ForPatient(&d.PatientID))
}

// attachFiles records uploaded documents on the patient
func attachFiles(ctx context.Context, repos uow.Repositories, patientID uuid.UUID, urls []string) error {
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		file, err := clinical.NewFile(url, "", clinical.FileDiagnosticDocument, &patientID)
		if err != nil {
			return err
		}
		file.FileName = url[strings.LastIndex(url, "/")+1:]
		if err := repos.Files().Save(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (s *DiagnosticService) followUpTask(ctx context.Context, repos uow.Repositories, d *clinical.Diagnostic, patient *partner.Patient, actorID uuid.UUID) error {
	code, err := repos.Codes().Next(ctx, shared.CodeTask)
	if err != nil {
		return err
	}
	task, err := workflow.NewTask(code,
		"Suivi diagnostic - "+patient.FullName(),
		fmt.Sprintf("Suivi requis pour le diagnostic de %s créé le %s", patient.FullName(), s.now().Format("02/01/2006")),
		workflow.TaskPriorityMedium, *d.FollowUpDate, *d.FollowUpDate, actorID)
	if err != nil {
		return err
	}
	task.DiagnosticID = &d.ID
	return repos.Tasks().Save(ctx, task)
}

// GetByID returns a diagnostic with its result and outcome
func (s *DiagnosticService) GetByID(ctx context.Context, id uuid.UUID) (*DiagnosticResponse, error) {
	d, err := s.repos.Diagnostics().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDiagnosticResponse(d)
	if err := s.withOutcome(ctx, &response, d, map[uuid.UUID]*time.Time{}); err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves diagnostics with the business outcome of each patient
func (s *DiagnosticService) List(ctx context.Context, filter DiagnosticListFilter) ([]DiagnosticResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("patient_id", filter.PatientID).
		With("medical_device_id", filter.MedicalDeviceID)
	if filter.OrderBy == "" {
		domainFilter.OrderBy = ""
	}

	diagnostics, err := s.repos.Diagnostics().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Diagnostics().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	equipped := make(map[uuid.UUID]*time.Time)
	out := make([]DiagnosticResponse, len(diagnostics))
	for i := range diagnostics {
		out[i] = ToDiagnosticResponse(&diagnostics[i])
		if err := s.withOutcome(ctx, &out[i], &diagnostics[i], equipped); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// withOutcome fills the outcome and equipment age; seen caches the first
// equipment date per patient
func (s *DiagnosticService) withOutcome(ctx context.Context, out *DiagnosticResponse, d *clinical.Diagnostic, seen map[uuid.UUID]*time.Time) error {
	first, ok := seen[d.PatientID]
	if !ok {
		var err error
		first, err = s.repos.Diagnostics().FirstEquipmentDate(ctx, d.PatientID)
		if err != nil {
			return err
		}
		seen[d.PatientID] = first
	}
	out.Outcome = string(clinical.DeriveOutcome(d.Result, first != nil))
	if first != nil {
		days := int(s.now().Sub(*first).Hours() / 24)
		out.EquippedSince = first
		out.DaysSinceEquip = &days
	}
	return nil
}

// UpdateResult records the indexes and remark of a diagnostic
func (s *DiagnosticService) UpdateResult(ctx context.Context, id uuid.UUID, req DiagnosticResultRequest) (*DiagnosticResponse, error) {
	d, err := s.repos.Diagnostics().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Result == nil {
		d.Result = &clinical.DiagnosticResult{
			BaseEntity:   shared.NewBaseEntity(),
			DiagnosticID: d.ID,
			Status:       clinical.ResultPending,
		}
	}
	if err := d.Result.Record(toNullDecimal(req.IAH), toNullDecimal(req.IDValue), req.Remarque, clinical.ResultStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.repos.Diagnostics().SaveResult(ctx, d.Result); err != nil {
		return nil, err
	}
	s.logger.Info("diagnostic result recorded",
		zap.String("diagnostic_code", d.DiagnosticCode),
		zap.String("status", string(d.Result.Status)))

	response := ToDiagnosticResponse(d)
	return &response, nil
}

// Delete removes a diagnostic with its result and tasks and returns the
// device to ACTIVE
func (s *DiagnosticService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		d, err := repos.Diagnostics().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Tasks().DeleteByDiagnostic(ctx, id); err != nil {
			return err
		}
		if err := repos.Diagnostics().Delete(ctx, id); err != nil {
			return err
		}

		device, err := repos.Devices().FindByID(ctx, d.MedicalDeviceID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if device.Status != catalog.DeviceStatusReserved {
			return nil
		}
		if err := device.SetStatus(catalog.DeviceStatusActive); err != nil {
			return err
		}
		return repos.Devices().Save(ctx, device)
	})
	if err != nil {
		return err
	}
	s.logger.Info("diagnostic deleted", zap.String("diagnostic_id", id.String()))
	return nil
}
