package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UsageCounter counts records that reference a patient. Rental and sale
// repositories both satisfy it.
type UsageCounter interface {
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
}

// PatientService handles patient-related business operations
type PatientService struct {
	patientRepo partner.PatientRepository
	historyRepo partner.PatientHistoryRepository
	rentals     UsageCounter
	sales       UsageCounter
	codes       shared.CodeGenerator
	logger      *zap.Logger
}

// NewPatientService creates a new PatientService
func NewPatientService(
	patientRepo partner.PatientRepository,
	historyRepo partner.PatientHistoryRepository,
	rentals UsageCounter,
	sales UsageCounter,
	codes shared.CodeGenerator,
	logger *zap.Logger,
) *PatientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientService{
		patientRepo: patientRepo,
		historyRepo: historyRepo,
		rentals:     rentals,
		sales:       sales,
		codes:       codes,
		logger:      logger,
	}
}

// Create creates a new patient with the next PAT code
func (s *PatientService) Create(ctx context.Context, req CreatePatientRequest) (*PatientResponse, error) {
	if cin := strings.TrimSpace(req.CIN); cin != "" {
		exists, err := s.patientRepo.ExistsByCIN(ctx, cin)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A patient with this CIN already exists")
		}
	}

	code, err := s.codes.Next(ctx, shared.CodePatient)
	if err != nil {
		return nil, err
	}
	patient, err := partner.NewPatient(code, req.FirstName, req.LastName, req.Telephone)
	if err != nil {
		return nil, err
	}
	if err := patient.SetCoverage(req.CNAMID, partner.BeneficiaryType(req.BeneficiaryType), partner.Affiliation(req.Affiliation)); err != nil {
		return nil, err
	}

	patient.TelephoneTwo = strings.TrimSpace(req.TelephoneTwo)
	patient.CIN = strings.TrimSpace(req.CIN)
	patient.DateOfBirth = req.DateOfBirth
	patient.Governorate = req.Governorate
	patient.Delegation = req.Delegation
	patient.DetailedAddress = req.DetailedAddress
	patient.Weight = toNullDecimal(req.Weight)
	patient.Height = toNullDecimal(req.Height)
	patient.MedicalHistory = req.MedicalHistory
	patient.GeneralNote = req.GeneralNote
	patient.DoctorID = req.DoctorID
	patient.TechnicianID = req.TechnicianID
	patient.SupervisorID = req.SupervisorID
	patient.AssignedToID = req.AssignedToID

	if err := s.patientRepo.Save(ctx, patient); err != nil {
		return nil, err
	}
	s.logger.Info("patient created", zap.String("patient_code", patient.PatientCode), zap.String("patient_id", patient.ID.String()))

	response := ToPatientResponse(patient)
	return &response, nil
}

// GetByID retrieves a patient by ID
func (s *PatientService) GetByID(ctx context.Context, id uuid.UUID) (*PatientResponse, error) {
	patient, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPatientResponse(patient)
	return &response, nil
}

// List retrieves patients with filtering and pagination
func (s *PatientService) List(ctx context.Context, filter PatientListFilter) ([]PatientResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("assigned_to_id", filter.AssignedToID).
		With("doctor_id", filter.DoctorID)

	patients, err := s.patientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.patientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPatientResponses(patients), total, nil
}

// Update applies a partial update to a patient
func (s *PatientService) Update(ctx context.Context, id uuid.UUID, req UpdatePatientRequest) (*PatientResponse, error) {
	patient, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil || req.LastName != nil || req.Telephone != nil {
		if err := patient.SetIdentity(
			valueOr(req.FirstName, patient.FirstName),
			valueOr(req.LastName, patient.LastName),
			valueOr(req.Telephone, patient.Telephone),
		); err != nil {
			return nil, err
		}
	}
	if req.CIN != nil {
		cin := strings.TrimSpace(*req.CIN)
		if cin != "" && cin != patient.CIN {
			exists, err := s.patientRepo.ExistsByCIN(ctx, cin)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "A patient with this CIN already exists")
			}
		}
		patient.CIN = cin
	}
	if req.CNAMID != nil || req.BeneficiaryType != nil || req.Affiliation != nil {
		if err := patient.SetCoverage(
			valueOr(req.CNAMID, patient.CNAMID),
			partner.BeneficiaryType(valueOr(req.BeneficiaryType, string(patient.BeneficiaryType))),
			partner.Affiliation(valueOr(req.Affiliation, string(patient.Affiliation))),
		); err != nil {
			return nil, err
		}
	}

	patient.TelephoneTwo = valueOr(req.TelephoneTwo, patient.TelephoneTwo)
	patient.Governorate = valueOr(req.Governorate, patient.Governorate)
	patient.Delegation = valueOr(req.Delegation, patient.Delegation)
	patient.DetailedAddress = valueOr(req.DetailedAddress, patient.DetailedAddress)
	patient.MedicalHistory = valueOr(req.MedicalHistory, patient.MedicalHistory)
	patient.GeneralNote = valueOr(req.GeneralNote, patient.GeneralNote)
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Weight != nil {
		patient.Weight = toNullDecimal(req.Weight)
	}
	if req.Height != nil {
		patient.Height = toNullDecimal(req.Height)
	}
	if req.DoctorID != nil {
		patient.DoctorID = req.DoctorID
	}
	if req.TechnicianID != nil {
		patient.TechnicianID = req.TechnicianID
	}
	if req.SupervisorID != nil {
		patient.SupervisorID = req.SupervisorID
	}
	if req.AssignedToID != nil {
		patient.AssignedToID = req.AssignedToID
	}

	if err := s.patientRepo.Save(ctx, patient); err != nil {
		return nil, err
	}
	response := ToPatientResponse(patient)
	return &response, nil
}

// Delete removes a patient that has no rentals or sales
func (s *PatientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.patientRepo.FindByID(ctx, id); err != nil {
		return err
	}

	rentals, err := s.rentals.CountByPatient(ctx, id)
	if err != nil {
		return err
	}
	sales, err := s.sales.CountByPatient(ctx, id)
	if err != nil {
		return err
	}
	if rentals > 0 || sales > 0 {
		return shared.NewDomainError("HAS_DEPENDENCIES", "Patient has rentals or sales and cannot be deleted")
	}
	return s.patientRepo.Delete(ctx, id)
}

// History returns the patient's history, newest first
func (s *PatientService) History(ctx context.Context, id uuid.UUID) ([]PatientHistoryResponse, error) {
	if _, err := s.patientRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.FindByPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToPatientHistoryResponses(entries), nil
}

// AddNote appends a NOTE entry to the patient's history
func (s *PatientService) AddNote(ctx context.Context, id, performedBy uuid.UUID, note string) (*PatientHistoryResponse, error) {
	if strings.TrimSpace(note) == "" {
		return nil, shared.NewDomainError("INVALID_NOTE", "Note cannot be empty")
	}
	if _, err := s.patientRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	entry := partner.NewPatientHistory(id, performedBy, partner.HistoryNote, id, "patient", shared.JSONMap{"note": strings.TrimSpace(note)})
	if err := s.historyRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	out := ToPatientHistoryResponses([]partner.PatientHistory{*entry})
	return &out[0], nil
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return strings.TrimSpace(*v)
}
