package finance

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BondType is the equipment family a CNAM bond covers
type BondType string

const (
	BondTypeMasque        BondType = "MASQUE"
	BondTypeCPAP          BondType = "CPAP"
	BondTypeAutre         BondType = "AUTRE"
	BondTypeVNI           BondType = "VNI"
	BondTypeConcentrateur BondType = "CONCENTRATEUR_OXYGENE"
)

// IsValid reports whether t is a known bond type
func (t BondType) IsValid() bool {
	switch t {
	case BondTypeMasque, BondTypeCPAP, BondTypeAutre, BondTypeVNI, BondTypeConcentrateur:
		return true
	}
	return false
}

// ParseBondType upper-cases the input; unknown values become AUTRE
func ParseBondType(raw string) BondType {
	t := BondType(strings.ToUpper(strings.TrimSpace(raw)))
	if t.IsValid() {
		return t
	}
	return BondTypeAutre
}

// BondCategory says whether a bond finances a rental or a purchase
type BondCategory string

const (
	BondCategoryLocation BondCategory = "LOCATION"
	BondCategoryAchat    BondCategory = "ACHAT"
)

// CNAMStatus is the approval state of a bond or dossier at CNAM
type CNAMStatus string

const (
	CNAMStatusPending  CNAMStatus = "EN_ATTENTE_APPROBATION"
	CNAMStatusApproved CNAMStatus = "APPROUVE"
	CNAMStatusOngoing  CNAMStatus = "EN_COURS"
	CNAMStatusFinished CNAMStatus = "TERMINE"
	CNAMStatusRefused  CNAMStatus = "REFUSE"
)

// IsValid reports whether s is a known CNAM status
func (s CNAMStatus) IsValid() bool {
	switch s {
	case CNAMStatusPending, CNAMStatusApproved, CNAMStatusOngoing, CNAMStatusFinished, CNAMStatusRefused:
		return true
	}
	return false
}

// ParseCNAMStatus upper-cases the input; unknown or empty values become
// EN_ATTENTE_APPROBATION
func ParseCNAMStatus(raw string) CNAMStatus {
	s := CNAMStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if s.IsValid() {
		return s
	}
	return CNAMStatusPending
}

// DefaultRenewalReminderDays is the lead time of the renewal reminder
const DefaultRenewalReminderDays = 30

// CNAMBondRental is an insurance bond (bon) issued by CNAM for a patient
type CNAMBondRental struct {
	shared.BaseAggregateRoot
	BondNumber          string          `gorm:"type:varchar(50);index"`
	BondType            BondType        `gorm:"type:varchar(30);not null"`
	Category            BondCategory    `gorm:"type:varchar(10);not null;default:'LOCATION'"`
	Status              CNAMStatus      `gorm:"type:varchar(30);not null;default:'EN_ATTENTE_APPROBATION';index"`
	DossierNumber       string          `gorm:"type:varchar(50)"`
	SubmissionDate      *time.Time
	ApprovalDate        *time.Time
	StartDate           *time.Time
	EndDate             *time.Time      `gorm:"index"`
	MonthlyAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CoveredMonths       int             `gorm:"not null;default:1"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DevicePrice         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ComplementAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RenewalReminderDays int             `gorm:"not null;default:30"`
	Notes               string          `gorm:"type:text"`
	PatientID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	RentalID            *uuid.UUID      `gorm:"type:uuid;index"`
	SaleID              *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CNAMBondRental) TableName() string {
	return "cnam_bond_rentals"
}

// NewCNAMBond creates a bond with default status, months and reminder lead time
func NewCNAMBond(patientID uuid.UUID, bondType BondType, category BondCategory, total decimal.Decimal) (*CNAMBondRental, error) {
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "A CNAM bond requires a patient")
	}
	if !bondType.IsValid() {
		return nil, shared.NewDomainError("INVALID_BOND_TYPE", "Invalid CNAM bond type")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bond amount cannot be negative")
	}
	if category == "" {
		category = BondCategoryLocation
	}
	return &CNAMBondRental{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		BondType:            bondType,
		Category:            category,
		Status:              CNAMStatusPending,
		MonthlyAmount:       decimal.Zero,
		CoveredMonths:       1,
		TotalAmount:         total,
		DevicePrice:         decimal.Zero,
		ComplementAmount:    decimal.Zero,
		RenewalReminderDays: DefaultRenewalReminderDays,
		PatientID:           patientID,
	}, nil
}

// RemainingMonths is ceil(days until end / 30), zero when ended or open
func (b *CNAMBondRental) RemainingMonths(now time.Time) int {
	if b.EndDate == nil {
		return 0
	}
	days := b.EndDate.Sub(now).Hours() / 24
	if days <= 0 {
		return 0
	}
	return int(math.Ceil(days / 30))
}

// NeedsRenewalReminder reports whether an approved bond ends within the window
func (b *CNAMBondRental) NeedsRenewalReminder(now time.Time, window time.Duration) bool {
	if b.Status != CNAMStatusApproved || b.EndDate == nil {
		return false
	}
	return !b.EndDate.Before(now) && !b.EndDate.After(now.Add(window))
}

// DefaultDossierSteps is the number of steps of the CNAM purchase workflow
const DefaultDossierSteps = 7

// CNAMDossier tracks a CNAM-financed purchase through its approval steps
type CNAMDossier struct {
	shared.BaseAggregateRoot
	DossierNumber    string            `gorm:"type:varchar(20);uniqueIndex"`
	BonType          BondType          `gorm:"type:varchar(30);not null"`
	BondAmount       decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	DevicePrice      decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	ComplementAmount decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentStep      int               `gorm:"not null;default:1"`
	TotalSteps       int               `gorm:"not null;default:7"`
	Status           CNAMStatus        `gorm:"type:varchar(30);not null"`
	Notes            string            `gorm:"type:text"`
	SaleID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	PatientID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	StepHistory      []CNAMStepHistory `gorm:"foreignKey:DossierID"`
}

// TableName returns the table name for GORM
func (CNAMDossier) TableName() string {
	return "cnam_dossiers"
}

// NewCNAMDossier opens a dossier and records its initial step
func NewCNAMDossier(number string, saleID, patientID uuid.UUID, bonType BondType, status CNAMStatus, step int, by uuid.UUID) (*CNAMDossier, error) {
	if !bonType.IsValid() {
		return nil, shared.NewDomainError("INVALID_BOND_TYPE", "Invalid CNAM bond type")
	}
	if !status.IsValid() {
		status = CNAMStatusPending
	}
	if step <= 0 {
		step = 1
	}
	if step > DefaultDossierSteps {
		return nil, shared.NewDomainError("INVALID_STEP", "Step is out of range")
	}
	d := &CNAMDossier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DossierNumber:     number,
		BonType:           bonType,
		BondAmount:        decimal.Zero,
		DevicePrice:       decimal.Zero,
		ComplementAmount:  decimal.Zero,
		CurrentStep:       step,
		TotalSteps:        DefaultDossierSteps,
		Status:            status,
		SaleID:            saleID,
		PatientID:         patientID,
	}
	d.StepHistory = []CNAMStepHistory{*newStepHistory(d.ID, nil, step, nil, status, "Dossier created", by)}
	return d, nil
}

// AdvanceTo moves the dossier to a step/status and returns the history entry
func (d *CNAMDossier) AdvanceTo(step int, status CNAMStatus, notes string, by uuid.UUID) (*CNAMStepHistory, error) {
	if step < 1 || step > d.TotalSteps {
		return nil, shared.NewDomainError("INVALID_STEP", "Step must be between 1 and the dossier's total steps")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_CNAM_STATUS", "Invalid CNAM status")
	}
	fromStep := d.CurrentStep
	fromStatus := d.Status
	entry := newStepHistory(d.ID, &fromStep, step, &fromStatus, status, notes, by)
	d.CurrentStep = step
	d.Status = status
	d.MarkModified()
	return entry, nil
}

// CNAMStepHistory is one transition of a dossier
type CNAMStepHistory struct {
	shared.BaseEntity
	DossierID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	FromStep    *int
	ToStep      int         `gorm:"not null"`
	FromStatus  *CNAMStatus `gorm:"type:varchar(30)"`
	ToStatus    CNAMStatus  `gorm:"type:varchar(30);not null"`
	Notes       string      `gorm:"type:text"`
	ChangedByID uuid.UUID   `gorm:"type:uuid;not null"`
	ChangeDate  time.Time   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CNAMStepHistory) TableName() string {
	return "cnam_step_histories"
}

func newStepHistory(dossierID uuid.UUID, fromStep *int, toStep int, fromStatus *CNAMStatus, toStatus CNAMStatus, notes string, by uuid.UUID) *CNAMStepHistory {
	return &CNAMStepHistory{
		BaseEntity:  shared.NewBaseEntity(),
		DossierID:   dossierID,
		FromStep:    fromStep,
		ToStep:      toStep,
		FromStatus:  fromStatus,
		ToStatus:    toStatus,
		Notes:       notes,
		ChangedByID: by,
		ChangeDate:  time.Now(),
	}
}
