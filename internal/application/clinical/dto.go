package clinical

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Diagnostics
// =============================================================================

// CreateDiagnosticRequest starts a sleep study with a diagnostic device
type CreateDiagnosticRequest struct {
	ClientID        uuid.UUID  `json:"client_id" binding:"required"`
	MedicalDeviceID uuid.UUID  `json:"medical_device_id" binding:"required"`
	DiagnosticDate  *time.Time `json:"diagnostic_date"`
	FollowUpDate    *time.Time `json:"follow_up_date"`
	Notes           string     `json:"notes"`
	FileURLs        []string   `json:"file_urls"`
}

// DiagnosticResultRequest records the measured indexes
type DiagnosticResultRequest struct {
	IAH      *decimal.Decimal `json:"iah"`
	IDValue  *decimal.Decimal `json:"id_value"`
	Remarque string           `json:"remarque"`
	Status   string           `json:"status" binding:"omitempty,oneof=PENDING NORMAL ABNORMAL COMPLETED CANCELLED"`
}

// DiagnosticListFilter represents filter options for the diagnostic list
type DiagnosticListFilter struct {
	Search          string `form:"search"`
	PatientID       string `form:"patient_id" binding:"omitempty,uuid"`
	MedicalDeviceID string `form:"medical_device_id" binding:"omitempty,uuid"`
	Page            int    `form:"page" binding:"min=0"`
	PageSize        int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DiagnosticResultResponse is the result of a diagnostic
type DiagnosticResultResponse struct {
	IAH      *decimal.Decimal `json:"iah"`
	IDValue  *decimal.Decimal `json:"id_value"`
	Remarque string           `json:"remarque,omitempty"`
	Status   string           `json:"status"`
}

// DiagnosticResponse represents a diagnostic in API responses
type DiagnosticResponse struct {
	ID               uuid.UUID                `json:"id"`
	DiagnosticCode   string                   `json:"diagnostic_code"`
	MedicalDeviceID  uuid.UUID                `json:"medical_device_id"`
	PatientID        uuid.UUID                `json:"patient_id"`
	DiagnosticDate   time.Time                `json:"diagnostic_date"`
	FollowUpDate     *time.Time               `json:"follow_up_date,omitempty"`
	FollowUpRequired bool                     `json:"follow_up_required"`
	Notes            string                   `json:"notes,omitempty"`
	PerformedByID    uuid.UUID                `json:"performed_by_id"`
	Result           DiagnosticResultResponse `json:"result"`
	Outcome          string                   `json:"outcome,omitempty"`
	EquippedSince    *time.Time               `json:"equipped_since,omitempty"`
	DaysSinceEquip   *int                     `json:"days_since_equipment,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

// ToDiagnosticResponse converts a domain diagnostic
func ToDiagnosticResponse(d *clinical.Diagnostic) DiagnosticResponse {
	out := DiagnosticResponse{
		ID:               d.ID,
		DiagnosticCode:   d.DiagnosticCode,
		MedicalDeviceID:  d.MedicalDeviceID,
		PatientID:        d.PatientID,
		DiagnosticDate:   d.DiagnosticDate,
		FollowUpDate:     d.FollowUpDate,
		FollowUpRequired: d.FollowUpRequired,
		Notes:            d.Notes,
		PerformedByID:    d.PerformedByID,
		Result:           DiagnosticResultResponse{Status: string(clinical.ResultPending)},
		CreatedAt:        d.CreatedAt,
	}
	if r := d.Result; r != nil {
		out.Result = DiagnosticResultResponse{
			IAH:      nullable(r.IAH),
			IDValue:  nullable(r.IDValue),
			Remarque: r.Remarque,
			Status:   string(r.Status),
		}
	}
	return out
}

func nullable(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

func toNullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}

// =============================================================================
// Appointments
// =============================================================================

// CreateAppointmentRequest schedules a visit
type CreateAppointmentRequest struct {
	AppointmentType      string     `json:"appointment_type" binding:"required,max=100"`
	ScheduledDate        time.Time  `json:"scheduled_date" binding:"required"`
	Location             string     `json:"location" binding:"required,max=255"`
	Notes                string     `json:"notes"`
	Priority             string     `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Status               string     `json:"status" binding:"omitempty,oneof=SCHEDULED CONFIRMED COMPLETED CANCELLED"`
	PatientID            *uuid.UUID `json:"patient_id"`
	CompanyID            *uuid.UUID `json:"company_id"`
	AssignedToID         *uuid.UUID `json:"assigned_to_id"`
	CreateDiagnosticTask bool       `json:"create_diagnostic_task"`
}

// UpdateAppointmentRequest applies a partial update to an appointment
type UpdateAppointmentRequest struct {
	AppointmentType *string    `json:"appointment_type" binding:"omitempty,max=100"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
	Location        *string    `json:"location" binding:"omitempty,max=255"`
	Notes           *string    `json:"notes"`
	Priority        *string    `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Status          *string    `json:"status" binding:"omitempty,oneof=SCHEDULED CONFIRMED COMPLETED CANCELLED"`
	AssignedToID    *uuid.UUID `json:"assigned_to_id"`
}

// AppointmentListFilter represents filter options for the appointment list
type AppointmentListFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status" binding:"omitempty,oneof=SCHEDULED CONFIRMED COMPLETED CANCELLED"`
	PatientID    string `form:"patient_id" binding:"omitempty,uuid"`
	CompanyID    string `form:"company_id" binding:"omitempty,uuid"`
	AssignedToID string `form:"assigned_to_id" binding:"omitempty,uuid"`
	FromDate     string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate       string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page         int    `form:"page" binding:"min=0"`
	PageSize     int    `form:"page_size" binding:"min=0,max=100"`
}

// AppointmentResponse represents an appointment in API responses
type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	AppointmentCode string     `json:"appointment_code"`
	AppointmentType string     `json:"appointment_type"`
	ScheduledDate   time.Time  `json:"scheduled_date"`
	Location        string     `json:"location"`
	Notes           string     `json:"notes,omitempty"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	PatientID       *uuid.UUID `json:"patient_id,omitempty"`
	CompanyID       *uuid.UUID `json:"company_id,omitempty"`
	AssignedToID    *uuid.UUID `json:"assigned_to_id,omitempty"`
	CreatedByID     uuid.UUID  `json:"created_by_id"`
	TaskID          *uuid.UUID `json:"task_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToAppointmentResponse converts a domain appointment
func ToAppointmentResponse(a *clinical.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		AppointmentCode: a.AppointmentCode,
		AppointmentType: a.AppointmentType,
		ScheduledDate:   a.ScheduledDate,
		Location:        a.Location,
		Notes:           a.Notes,
		Priority:        string(a.Priority),
		Status:          string(a.Status),
		PatientID:       a.PatientID,
		CompanyID:       a.CompanyID,
		AssignedToID:    a.AssignedToID,
		CreatedByID:     a.CreatedByID,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ToAppointmentResponses converts a slice of appointments
func ToAppointmentResponses(appointments []clinical.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, len(appointments))
	for i := range appointments {
		out[i] = ToAppointmentResponse(&appointments[i])
	}
	return out
}
