package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BeneficiaryType is the patient's position in the CNAM insured household
type BeneficiaryType string

const (
	BeneficiaryAssureSocial BeneficiaryType = "ASSURE_SOCIAL"
	BeneficiaryConjoint     BeneficiaryType = "CONJOINT"
	BeneficiaryEnfant       BeneficiaryType = "ENFANT"
	BeneficiaryAscendant    BeneficiaryType = "ASSANDANT"
)

// Affiliation is the social security fund the patient belongs to
type Affiliation string

const (
	AffiliationCNSS  Affiliation = "CNSS"
	AffiliationCNRPS Affiliation = "CNRPS"
)

// Patient is an individual client renting or buying equipment
type Patient struct {
	shared.BaseAggregateRoot
	PatientCode     string              `gorm:"type:varchar(20);uniqueIndex"`
	FirstName       string              `gorm:"type:varchar(100);not null"`
	LastName        string              `gorm:"type:varchar(100);not null"`
	Telephone       string              `gorm:"type:varchar(50);not null;index"`
	TelephoneTwo    string              `gorm:"type:varchar(50)"`
	CIN             string              `gorm:"column:cin;type:varchar(20);index"`
	CNAMID          string              `gorm:"column:cnam_id;type:varchar(50)"`
	DateOfBirth     *time.Time          `gorm:"type:date"`
	Governorate     string              `gorm:"type:varchar(100)"`
	Delegation      string              `gorm:"type:varchar(100)"`
	DetailedAddress string              `gorm:"type:text"`
	BeneficiaryType BeneficiaryType     `gorm:"type:varchar(20)"`
	Affiliation     Affiliation         `gorm:"type:varchar(10)"`
	Weight          decimal.NullDecimal `gorm:"type:decimal(6,2)"`
	Height          decimal.NullDecimal `gorm:"type:decimal(6,2)"`
	MedicalHistory  string              `gorm:"type:text"`
	GeneralNote     string              `gorm:"type:text"`
	DoctorID        *uuid.UUID          `gorm:"type:uuid;index"`
	TechnicianID    *uuid.UUID          `gorm:"type:uuid;index"`
	SupervisorID    *uuid.UUID          `gorm:"type:uuid"`
	AssignedToID    *uuid.UUID          `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Patient) TableName() string {
	return "patients"
}

// NewPatient creates a patient with the required identity fields
func NewPatient(code, firstName, lastName, telephone string) (*Patient, error) {
	p := &Patient{BaseAggregateRoot: shared.NewBaseAggregateRoot(), PatientCode: code}
	if err := p.SetIdentity(firstName, lastName, telephone); err != nil {
		return nil, err
	}
	return p, nil
}

// SetIdentity updates name and primary telephone
func (p *Patient) SetIdentity(firstName, lastName, telephone string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	telephone = strings.TrimSpace(telephone)
	if firstName == "" || lastName == "" {
		return shared.NewDomainError("INVALID_NAME", "First name and last name are required")
	}
	if telephone == "" {
		return shared.NewDomainError("INVALID_TELEPHONE", "Telephone is required")
	}
	p.FirstName = firstName
	p.LastName = lastName
	p.Telephone = telephone
	p.MarkModified()
	return nil
}

// SetCoverage sets CNAM related fields after validating the enums
func (p *Patient) SetCoverage(cnamID string, beneficiary BeneficiaryType, affiliation Affiliation) error {
	switch beneficiary {
	case "", BeneficiaryAssureSocial, BeneficiaryConjoint, BeneficiaryEnfant, BeneficiaryAscendant:
	default:
		return shared.NewDomainError("INVALID_BENEFICIARY_TYPE", "Invalid beneficiary type")
	}
	switch affiliation {
	case "", AffiliationCNSS, AffiliationCNRPS:
	default:
		return shared.NewDomainError("INVALID_AFFILIATION", "Invalid affiliation")
	}
	p.CNAMID = strings.TrimSpace(cnamID)
	p.BeneficiaryType = beneficiary
	p.Affiliation = affiliation
	p.MarkModified()
	return nil
}

// FullName returns "first last"
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Company is a corporate client
type Company struct {
	shared.BaseAggregateRoot
	CompanyCode  string     `gorm:"type:varchar(20);uniqueIndex"`
	CompanyName  string     `gorm:"type:varchar(200);not null"`
	Telephone    string     `gorm:"type:varchar(50)"`
	TaxID        string     `gorm:"type:varchar(50)"`
	Address      string     `gorm:"type:text"`
	AssignedToID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a company
func NewCompany(code, name string) (*Company, error) {
	c := &Company{BaseAggregateRoot: shared.NewBaseAggregateRoot(), CompanyCode: code}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename sets the company name
func (c *Company) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name is required")
	}
	c.CompanyName = name
	c.MarkModified()
	return nil
}
