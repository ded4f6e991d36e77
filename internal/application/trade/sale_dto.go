package trade

import (
	"time"

	"github.com/google/uuid"
	financeapp "github.com/medrent/backend/internal/application/finance"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleConfigurationInput carries the device settings prescribed with a sale.
// Keys outside the known settings go to AdditionalParams.
type SaleConfigurationInput struct {
	Pression              string                 `json:"pression"`
	PressionRampe         string                 `json:"pression_rampe"`
	DureeRampe            *int                   `json:"duree_rampe"`
	EPR                   string                 `json:"epr"`
	IPAP                  string                 `json:"ipap"`
	EPAP                  string                 `json:"epap"`
	AID                   string                 `json:"aid"`
	Mode                  string                 `json:"mode"`
	FrequenceRespiratoire string                 `json:"frequence_respiratoire"`
	VolumeCourant         string                 `json:"volume_courant"`
	Debit                 string                 `json:"debit"`
	AdditionalParams      map[string]interface{} `json:"additional_params"`
}

// SaleItemInput is one line of a sale
type SaleItemInput struct {
	ProductID       *uuid.UUID              `json:"product_id"`
	MedicalDeviceID *uuid.UUID              `json:"medical_device_id"`
	Quantity        int                     `json:"quantity" binding:"required,min=1"`
	UnitPrice       decimal.Decimal         `json:"unit_price" binding:"required"`
	Discount        decimal.Decimal         `json:"discount"`
	ItemTotal       decimal.Decimal         `json:"item_total" binding:"required"`
	SerialNumber    string                  `json:"serial_number"`
	Warranty        string                  `json:"warranty"`
	Description     string                  `json:"description"`
	Configuration   *SaleConfigurationInput `json:"configuration"`
}

// CNAMInfoInput opens a CNAM dossier for a payment covered by CNAM
type CNAMInfoInput struct {
	BonType          string           `json:"bon_type"`
	BonAmount        *decimal.Decimal `json:"bon_amount"`
	DevicePrice      decimal.Decimal  `json:"device_price"`
	ComplementAmount decimal.Decimal  `json:"complement_amount"`
	CurrentStep      int              `json:"current_step"`
	Status           string           `json:"status"`
	Notes            string           `json:"notes"`
}

// SalePaymentInput is one payment received for a sale
type SalePaymentInput struct {
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Classification string          `json:"classification" binding:"omitempty,oneof=principale garantie complement"`
	DossierNumber  string          `json:"dossier_number"`
	CNAMInfo       *CNAMInfoInput  `json:"cnam_info"`
	ChequeNumber   string          `json:"cheque_number"`
	Bank           string          `json:"bank"`
	Reference      string          `json:"reference"`
	Notes          string          `json:"notes"`
	PaymentDate    *time.Time      `json:"payment_date"`
	DueDate        *time.Time      `json:"due_date"`
}

// CreateSaleRequest sells devices and products to a patient or a company
type CreateSaleRequest struct {
	PatientID    *uuid.UUID             `json:"patient_id"`
	CompanyID    *uuid.UUID             `json:"company_id"`
	SaleDate     *time.Time             `json:"sale_date"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Discount     decimal.Decimal        `json:"discount"`
	Status       string                 `json:"status" binding:"omitempty,oneof=PENDING ON_PROGRESS COMPLETED CANCELLED"`
	Notes        string                 `json:"notes"`
	AssignedToID *uuid.UUID             `json:"assigned_to_id"`
	Items        []SaleItemInput        `json:"items" binding:"dive"`
	Payments     []SalePaymentInput     `json:"payments" binding:"dive"`
	CNAMBonds    []financeapp.BondInput `json:"cnam_bonds"`
}

// UpdateSaleRequest changes status, notes or the assigned employee
type UpdateSaleRequest struct {
	Status       *string    `json:"status" binding:"omitempty,oneof=PENDING ON_PROGRESS COMPLETED CANCELLED"`
	Notes        *string    `json:"notes"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING ON_PROGRESS COMPLETED CANCELLED"`
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	FromDate  string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" binding:"min=0"`
	PageSize  int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleItemResponse is a sale line with its configuration
type SaleItemResponse struct {
	ID               uuid.UUID              `json:"id"`
	ProductID        *uuid.UUID             `json:"product_id,omitempty"`
	MedicalDeviceID  *uuid.UUID             `json:"medical_device_id,omitempty"`
	SourceLocationID *uuid.UUID             `json:"source_location_id,omitempty"`
	Quantity         int                    `json:"quantity"`
	UnitPrice        decimal.Decimal        `json:"unit_price"`
	Discount         decimal.Decimal        `json:"discount"`
	ItemTotal        decimal.Decimal        `json:"item_total"`
	SerialNumber     string                 `json:"serial_number,omitempty"`
	Warranty         string                 `json:"warranty,omitempty"`
	Description      string                 `json:"description,omitempty"`
	Configuration    map[string]interface{} `json:"configuration,omitempty"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	SaleCode      string             `json:"sale_code"`
	InvoiceNumber string             `json:"invoice_number"`
	SaleDate      time.Time          `json:"sale_date"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Discount      decimal.Decimal    `json:"discount"`
	FinalAmount   decimal.Decimal    `json:"final_amount"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	PatientID     *uuid.UUID         `json:"patient_id,omitempty"`
	CompanyID     *uuid.UUID         `json:"company_id,omitempty"`
	ProcessedByID uuid.UUID          `json:"processed_by_id"`
	AssignedToID  *uuid.UUID         `json:"assigned_to_id,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SaleDetail adds the money side of a sale
type SaleDetail struct {
	SaleResponse
	Payments []financeapp.PaymentResponse `json:"payments"`
	Dossiers []financeapp.DossierResponse `json:"cnam_dossiers"`
	Bonds    []financeapp.BondResponse    `json:"cnam_bonds"`
}

// ToSaleResponse converts a sale and its loaded items
func ToSaleResponse(s *trade.Sale) SaleResponse {
	out := SaleResponse{
		ID:            s.ID,
		SaleCode:      s.SaleCode,
		InvoiceNumber: s.InvoiceNumber,
		SaleDate:      s.SaleDate,
		TotalAmount:   s.TotalAmount,
		Discount:      s.Discount,
		FinalAmount:   s.FinalAmount,
		Status:        string(s.Status),
		Notes:         s.Notes,
		PatientID:     s.PatientID,
		CompanyID:     s.CompanyID,
		ProcessedByID: s.ProcessedByID,
		AssignedToID:  s.AssignedToID,
		Items:         make([]SaleItemResponse, len(s.Items)),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	for i, it := range s.Items {
		out.Items[i] = SaleItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			MedicalDeviceID:  it.MedicalDeviceID,
			SourceLocationID: it.SourceLocationID,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
			Discount:         it.Discount,
			ItemTotal:        it.ItemTotal,
			SerialNumber:     it.SerialNumber,
			Warranty:         it.Warranty,
			Description:      it.Description,
		}
		if c := it.Configuration; c != nil {
			out.Items[i].Configuration = configurationMap(c)
		}
	}
	return out
}

// ToSaleResponses converts a slice of sales
func ToSaleResponses(sales []trade.Sale) []SaleResponse {
	out := make([]SaleResponse, len(sales))
	for i := range sales {
		out[i] = ToSaleResponse(&sales[i])
	}
	return out
}

func configurationMap(c *trade.SaleConfiguration) map[string]interface{} {
	m := map[string]interface{}{}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("pression", c.Pression)
	set("pression_rampe", c.PressionRampe)
	set("epr", c.EPR)
	set("ipap", c.IPAP)
	set("epap", c.EPAP)
	set("aid", c.AID)
	set("mode", c.Mode)
	set("frequence_respiratoire", c.FrequenceRespiratoire)
	set("volume_courant", c.VolumeCourant)
	set("debit", c.Debit)
	if c.DureeRampe != nil {
		m["duree_rampe"] = *c.DureeRampe
	}
	if len(c.AdditionalParams) > 0 {
		m["additional_params"] = map[string]interface{}(c.AdditionalParams)
	}
	return m
}
