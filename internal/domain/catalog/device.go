package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DeviceType distinguishes therapy devices from diagnostic (polygraphy) devices
type DeviceType string

const (
	DeviceTypeMedical    DeviceType = "MEDICAL_DEVICE"
	DeviceTypeDiagnostic DeviceType = "DIAGNOSTIC_DEVICE"
)

// DeviceStatus is the lifecycle status of a medical device
type DeviceStatus string

const (
	DeviceStatusActive      DeviceStatus = "ACTIVE"
	DeviceStatusMaintenance DeviceStatus = "MAINTENANCE"
	DeviceStatusRetired     DeviceStatus = "RETIRED"
	DeviceStatusReserved    DeviceStatus = "RESERVED"
	DeviceStatusSold        DeviceStatus = "SOLD"
)

// IsValid reports whether s is a known device status
func (s DeviceStatus) IsValid() bool {
	switch s {
	case DeviceStatusActive, DeviceStatusMaintenance, DeviceStatusRetired, DeviceStatusReserved, DeviceStatusSold:
		return true
	}
	return false
}

// Destination says whether a device is meant to be sold or rented out
type Destination string

const (
	DestinationForSale Destination = "FOR_SALE"
	DestinationForRent Destination = "FOR_RENT"
)

// MedicalDevice is a serialized piece of equipment (CPAP, concentrator, ...)
type MedicalDevice struct {
	shared.BaseAggregateRoot
	DeviceCode          string          `gorm:"type:varchar(20);uniqueIndex"`
	Name                string          `gorm:"type:varchar(200);not null"`
	Type                DeviceType      `gorm:"type:varchar(30);not null;default:'MEDICAL_DEVICE'"`
	Brand               string          `gorm:"type:varchar(100)"`
	Model               string          `gorm:"type:varchar(100)"`
	SerialNumber        string          `gorm:"type:varchar(100);index"`
	PurchasePrice       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RentalPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TechnicalSpecs      string          `gorm:"type:text"`
	Configuration       string          `gorm:"type:text"`
	Destination         Destination     `gorm:"type:varchar(20);not null;default:'FOR_RENT'"`
	RequiresMaintenance bool            `gorm:"not null;default:false"`
	Status              DeviceStatus    `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	StockLocationID     *uuid.UUID      `gorm:"type:uuid;index"`
	StockQuantity       int             `gorm:"not null;default:1"`
	PatientID           *uuid.UUID      `gorm:"type:uuid;index"`
	CompanyID           *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (MedicalDevice) TableName() string {
	return "medical_devices"
}

// NewMedicalDevice creates an ACTIVE device
func NewMedicalDevice(code, name string, deviceType DeviceType) (*MedicalDevice, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_DEVICE_NAME", "Device name is required")
	}
	switch deviceType {
	case "":
		deviceType = DeviceTypeMedical
	case DeviceTypeMedical, DeviceTypeDiagnostic:
	default:
		return nil, shared.NewDomainError("INVALID_DEVICE_TYPE", "Invalid device type")
	}
	return &MedicalDevice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DeviceCode:        code,
		Name:              strings.TrimSpace(name),
		Type:              deviceType,
		Destination:       DestinationForRent,
		Status:            DeviceStatusActive,
		StockQuantity:     1,
		PurchasePrice:     decimal.Zero,
		SellingPrice:      decimal.Zero,
		RentalPrice:       decimal.Zero,
	}, nil
}

// IsUnavailable reports whether the device left the fleet for good
func (d *MedicalDevice) IsUnavailable() bool {
	return d.Status == DeviceStatusSold || d.Status == DeviceStatusRetired
}

// EnsureAvailable returns INVALID_STATE for sold or retired devices
func (d *MedicalDevice) EnsureAvailable() error {
	if d.IsUnavailable() {
		return shared.NewDomainError("INVALID_STATE", "Device "+d.Name+" is "+strings.ToLower(string(d.Status))+" and cannot be used")
	}
	return nil
}

// SetStatus changes the status
func (d *MedicalDevice) SetStatus(status DeviceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_DEVICE_STATUS", "Invalid device status")
	}
	d.Status = status
	d.MarkModified()
	return nil
}

// AssignToPatient records the patient currently holding the device
func (d *MedicalDevice) AssignToPatient(patientID *uuid.UUID) {
	d.PatientID = patientID
	d.MarkModified()
}

// MoveTo changes the device's stock location
func (d *MedicalDevice) MoveTo(locationID uuid.UUID) {
	d.StockLocationID = &locationID
	d.MarkModified()
}

// MarkSold moves the device to the sold location and flags it SOLD
func (d *MedicalDevice) MarkSold(soldLocationID uuid.UUID, patientID, companyID *uuid.UUID) {
	d.Status = DeviceStatusSold
	d.StockLocationID = &soldLocationID
	d.PatientID = patientID
	d.CompanyID = companyID
	d.MarkModified()
}

// RepairLog is the last-known repair of a device; read by the maintenance sweep
type RepairLog struct {
	shared.BaseEntity
	MedicalDeviceID uuid.UUID `gorm:"type:uuid;not null;index"`
	RepairDate      time.Time `gorm:"not null"`
	Notes           string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RepairLog) TableName() string {
	return "repair_logs"
}
