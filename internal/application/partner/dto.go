package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Patient DTOs
// =============================================================================

// CreatePatientRequest represents a request to create a patient
type CreatePatientRequest struct {
	FirstName       string           `json:"first_name" binding:"required,min=1,max=100"`
	LastName        string           `json:"last_name" binding:"required,min=1,max=100"`
	Telephone       string           `json:"telephone" binding:"required,max=50"`
	TelephoneTwo    string           `json:"telephone_two" binding:"max=50"`
	CIN             string           `json:"cin" binding:"max=20"`
	CNAMID          string           `json:"cnam_id" binding:"max=50"`
	DateOfBirth     *time.Time       `json:"date_of_birth"`
	Governorate     string           `json:"governorate" binding:"max=100"`
	Delegation      string           `json:"delegation" binding:"max=100"`
	DetailedAddress string           `json:"detailed_address"`
	BeneficiaryType string           `json:"beneficiary_type" binding:"omitempty,oneof=ASSURE_SOCIAL CONJOINT ENFANT ASSANDANT"`
	Affiliation     string           `json:"affiliation" binding:"omitempty,oneof=CNSS CNRPS"`
	Weight          *decimal.Decimal `json:"weight"`
	Height          *decimal.Decimal `json:"height"`
	MedicalHistory  string           `json:"medical_history"`
	GeneralNote     string           `json:"general_note"`
	DoctorID        *uuid.UUID       `json:"doctor_id"`
	TechnicianID    *uuid.UUID       `json:"technician_id"`
	SupervisorID    *uuid.UUID       `json:"supervisor_id"`
	AssignedToID    *uuid.UUID       `json:"assigned_to_id"`
}

// UpdatePatientRequest represents a partial update of a patient
type UpdatePatientRequest struct {
	FirstName       *string          `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName        *string          `json:"last_name" binding:"omitempty,min=1,max=100"`
	Telephone       *string          `json:"telephone" binding:"omitempty,min=1,max=50"`
	TelephoneTwo    *string          `json:"telephone_two" binding:"omitempty,max=50"`
	CIN             *string          `json:"cin" binding:"omitempty,max=20"`
	CNAMID          *string          `json:"cnam_id" binding:"omitempty,max=50"`
	DateOfBirth     *time.Time       `json:"date_of_birth"`
	Governorate     *string          `json:"governorate" binding:"omitempty,max=100"`
	Delegation      *string          `json:"delegation" binding:"omitempty,max=100"`
	DetailedAddress *string          `json:"detailed_address"`
	BeneficiaryType *string          `json:"beneficiary_type" binding:"omitempty,oneof=ASSURE_SOCIAL CONJOINT ENFANT ASSANDANT"`
	Affiliation     *string          `json:"affiliation" binding:"omitempty,oneof=CNSS CNRPS"`
	Weight          *decimal.Decimal `json:"weight"`
	Height          *decimal.Decimal `json:"height"`
	MedicalHistory  *string          `json:"medical_history"`
	GeneralNote     *string          `json:"general_note"`
	DoctorID        *uuid.UUID       `json:"doctor_id"`
	TechnicianID    *uuid.UUID       `json:"technician_id"`
	SupervisorID    *uuid.UUID       `json:"supervisor_id"`
	AssignedToID    *uuid.UUID       `json:"assigned_to_id"`
}

// PatientListFilter represents filter options for patient list
type PatientListFilter struct {
	Search       string `form:"search"`
	AssignedToID string `form:"assigned_to_id" binding:"omitempty,uuid"`
	DoctorID     string `form:"doctor_id" binding:"omitempty,uuid"`
	Page         int    `form:"page" binding:"min=0"`
	PageSize     int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PatientResponse represents a patient in API responses
type PatientResponse struct {
	ID              uuid.UUID        `json:"id"`
	PatientCode     string           `json:"patient_code"`
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	FullName        string           `json:"full_name"`
	Telephone       string           `json:"telephone"`
	TelephoneTwo    string           `json:"telephone_two,omitempty"`
	CIN             string           `json:"cin,omitempty"`
	CNAMID          string           `json:"cnam_id,omitempty"`
	DateOfBirth     *time.Time       `json:"date_of_birth,omitempty"`
	Governorate     string           `json:"governorate,omitempty"`
	Delegation      string           `json:"delegation,omitempty"`
	DetailedAddress string           `json:"detailed_address,omitempty"`
	BeneficiaryType string           `json:"beneficiary_type,omitempty"`
	Affiliation     string           `json:"affiliation,omitempty"`
	Weight          *decimal.Decimal `json:"weight,omitempty"`
	Height          *decimal.Decimal `json:"height,omitempty"`
	MedicalHistory  string           `json:"medical_history,omitempty"`
	GeneralNote     string           `json:"general_note,omitempty"`
	DoctorID        *uuid.UUID       `json:"doctor_id,omitempty"`
	TechnicianID    *uuid.UUID       `json:"technician_id,omitempty"`
	SupervisorID    *uuid.UUID       `json:"supervisor_id,omitempty"`
	AssignedToID    *uuid.UUID       `json:"assigned_to_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ToPatientResponse converts a domain Patient to PatientResponse
func ToPatientResponse(p *partner.Patient) PatientResponse {
	return PatientResponse{
		ID:              p.ID,
		PatientCode:     p.PatientCode,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		FullName:        p.FullName(),
		Telephone:       p.Telephone,
		TelephoneTwo:    p.TelephoneTwo,
		CIN:             p.CIN,
		CNAMID:          p.CNAMID,
		DateOfBirth:     p.DateOfBirth,
		Governorate:     p.Governorate,
		Delegation:      p.Delegation,
		DetailedAddress: p.DetailedAddress,
		BeneficiaryType: string(p.BeneficiaryType),
		Affiliation:     string(p.Affiliation),
		Weight:          nullDecimal(p.Weight),
		Height:          nullDecimal(p.Height),
		MedicalHistory:  p.MedicalHistory,
		GeneralNote:     p.GeneralNote,
		DoctorID:        p.DoctorID,
		TechnicianID:    p.TechnicianID,
		SupervisorID:    p.SupervisorID,
		AssignedToID:    p.AssignedToID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToPatientResponses converts a slice of patients
func ToPatientResponses(patients []partner.Patient) []PatientResponse {
	out := make([]PatientResponse, len(patients))
	for i := range patients {
		out[i] = ToPatientResponse(&patients[i])
	}
	return out
}

// PatientHistoryResponse is one entry of a patient's history
type PatientHistoryResponse struct {
	ID              uuid.UUID              `json:"id"`
	ActionType      string                 `json:"action_type"`
	PerformedByID   uuid.UUID              `json:"performed_by_id"`
	RelatedItemID   *uuid.UUID             `json:"related_item_id,omitempty"`
	RelatedItemType string                 `json:"related_item_type,omitempty"`
	Details         map[string]interface{} `json:"details"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ToPatientHistoryResponses converts history entries
func ToPatientHistoryResponses(entries []partner.PatientHistory) []PatientHistoryResponse {
	out := make([]PatientHistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = PatientHistoryResponse{
			ID:              e.ID,
			ActionType:      string(e.ActionType),
			PerformedByID:   e.PerformedByID,
			RelatedItemID:   e.RelatedItemID,
			RelatedItemType: e.RelatedItemType,
			Details:         e.Details,
			CreatedAt:       e.CreatedAt,
		}
	}
	return out
}

// =============================================================================
// Company DTOs
// =============================================================================

// CreateCompanyRequest represents a request to create a company
type CreateCompanyRequest struct {
	CompanyName  string     `json:"company_name" binding:"required,min=1,max=200"`
	Telephone    string     `json:"telephone" binding:"max=50"`
	TaxID        string     `json:"tax_id" binding:"max=50"`
	Address      string     `json:"address"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// UpdateCompanyRequest represents a partial update of a company
type UpdateCompanyRequest struct {
	CompanyName  *string    `json:"company_name" binding:"omitempty,min=1,max=200"`
	Telephone    *string    `json:"telephone" binding:"omitempty,max=50"`
	TaxID        *string    `json:"tax_id" binding:"omitempty,max=50"`
	Address      *string    `json:"address"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// CompanyListFilter represents filter options for company list
type CompanyListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID           uuid.UUID  `json:"id"`
	CompanyCode  string     `json:"company_code"`
	CompanyName  string     `json:"company_name"`
	Telephone    string     `json:"telephone,omitempty"`
	TaxID        string     `json:"tax_id,omitempty"`
	Address      string     `json:"address,omitempty"`
	AssignedToID *uuid.UUID `json:"assigned_to_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToCompanyResponse converts a domain Company to CompanyResponse
func ToCompanyResponse(c *partner.Company) CompanyResponse {
	return CompanyResponse{
		ID:           c.ID,
		CompanyCode:  c.CompanyCode,
		CompanyName:  c.CompanyName,
		Telephone:    c.Telephone,
		TaxID:        c.TaxID,
		Address:      c.Address,
		AssignedToID: c.AssignedToID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ToCompanyResponses converts a slice of companies
func ToCompanyResponses(companies []partner.Company) []CompanyResponse {
	out := make([]CompanyResponse, len(companies))
	for i := range companies {
		out[i] = ToCompanyResponse(&companies[i])
	}
	return out
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
