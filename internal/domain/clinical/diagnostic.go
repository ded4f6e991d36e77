package clinical

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ResultStatus is the interpretation state of a sleep study
type ResultStatus string

const (
	ResultPending   ResultStatus = "PENDING"
	ResultNormal    ResultStatus = "NORMAL"
	ResultAbnormal  ResultStatus = "ABNORMAL"
	ResultCompleted ResultStatus = "COMPLETED"
	ResultCancelled ResultStatus = "CANCELLED"
)

// IsValid reports whether s is a known result status
func (s ResultStatus) IsValid() bool {
	switch s {
	case ResultPending, ResultNormal, ResultAbnormal, ResultCompleted, ResultCancelled:
		return true
	}
	return false
}

// FollowUpLeadDays is how long after creation the result is expected
const FollowUpLeadDays = 3

// Diagnostic is a polygraphy performed with a diagnostic device on a patient
type Diagnostic struct {
	shared.BaseAggregateRoot
	DiagnosticCode   string     `gorm:"type:varchar(20);uniqueIndex"`
	MedicalDeviceID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	PatientID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	DiagnosticDate   time.Time  `gorm:"not null"`
	FollowUpDate     *time.Time `gorm:"index"`
	FollowUpRequired bool       `gorm:"not null;default:false"`
	Notes            string     `gorm:"type:text"`
	PerformedByID    uuid.UUID  `gorm:"type:uuid;not null"`

	Result *DiagnosticResult `gorm:"foreignKey:DiagnosticID"`
}

// TableName returns the table name for GORM
func (Diagnostic) TableName() string {
	return "diagnostics"
}

// NewDiagnostic creates a diagnostic with a PENDING result
func NewDiagnostic(code string, deviceID, patientID uuid.UUID, date time.Time, followUp *time.Time, performedBy uuid.UUID) (*Diagnostic, error) {
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Patient is required")
	}
	if deviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEVICE", "Medical device is required")
	}
	if date.IsZero() {
		date = time.Now()
	}
	d := &Diagnostic{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DiagnosticCode:    code,
		MedicalDeviceID:   deviceID,
		PatientID:         patientID,
		DiagnosticDate:    date,
		FollowUpDate:      followUp,
		FollowUpRequired:  followUp != nil,
		PerformedByID:     performedBy,
	}
	d.Result = &DiagnosticResult{
		BaseEntity:   shared.NewBaseEntity(),
		DiagnosticID: d.ID,
		Status:       ResultPending,
	}
	d.AddDomainEvent(NewDiagnosticCreatedEvent(d))
	return d, nil
}

// DiagnosticResult holds the apnea-hypopnea index and the doctor's remark
type DiagnosticResult struct {
	shared.BaseEntity
	DiagnosticID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	IAH          decimal.NullDecimal `gorm:"column:iah;type:decimal(6,2)"`
	IDValue      decimal.NullDecimal `gorm:"column:id_value;type:decimal(6,2)"`
	Remarque     string              `gorm:"type:text"`
	Status       ResultStatus        `gorm:"type:varchar(20);not null;default:'PENDING'"`
}

// TableName returns the table name for GORM
func (DiagnosticResult) TableName() string {
	return "diagnostic_results"
}

// Record stores the measured indexes
func (r *DiagnosticResult) Record(iah, idValue decimal.NullDecimal, remarque string, status ResultStatus) error {
	if iah.Valid && iah.Decimal.IsNegative() {
		return shared.NewDomainError("INVALID_IAH", "IAH cannot be negative")
	}
	if status == "" {
		status = ResultCompleted
	}
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_RESULT_STATUS", "Invalid result status")
	}
	r.IAH = iah
	r.IDValue = idValue
	r.Remarque = remarque
	r.Status = status
	r.Touch()
	return nil
}

// Outcome is the commercial follow-up state of a diagnosed patient
type Outcome string

const (
	OutcomeEquipped       Outcome = "APPAREILLE"
	OutcomeAwaiting       Outcome = "EN_ATTENTE"
	OutcomeNotEquipped    Outcome = "NON_APPAREILLE"
	OutcomeDiagnosticOnly Outcome = "DIAGNOSTIC_ONLY"
)

// SevereApneaThreshold is the IAH above which equipment is indicated
var SevereApneaThreshold = decimal.NewFromInt(15)

// DeriveOutcome classifies a diagnosed patient from the result and whether
// the patient has bought or rented equipment
func DeriveOutcome(result *DiagnosticResult, equipped bool) Outcome {
	if equipped {
		return OutcomeEquipped
	}
	if result == nil || !result.IAH.Valid {
		return OutcomeDiagnosticOnly
	}
	if result.IAH.Decimal.GreaterThan(SevereApneaThreshold) {
		return OutcomeAwaiting
	}
	return OutcomeNotEquipped
}
