package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Medical device DTOs
// =============================================================================

// CreateDeviceRequest represents a request to create a medical device
type CreateDeviceRequest struct {
	Name                string           `json:"name" binding:"required,min=1,max=200"`
	Type                string           `json:"type" binding:"omitempty,oneof=MEDICAL_DEVICE DIAGNOSTIC_DEVICE"`
	Brand               string           `json:"brand" binding:"max=100"`
	Model               string           `json:"model" binding:"max=100"`
	SerialNumber        string           `json:"serial_number" binding:"max=100"`
	PurchasePrice       *decimal.Decimal `json:"purchase_price"`
	SellingPrice        *decimal.Decimal `json:"selling_price"`
	RentalPrice         *decimal.Decimal `json:"rental_price"`
	TechnicalSpecs      string           `json:"technical_specs"`
	Configuration       string           `json:"configuration"`
	Destination         string           `json:"destination" binding:"omitempty,oneof=FOR_SALE FOR_RENT"`
	RequiresMaintenance bool             `json:"requires_maintenance"`
	Status              string           `json:"status" binding:"omitempty,oneof=ACTIVE MAINTENANCE RETIRED RESERVED SOLD"`
	StockLocationID     *uuid.UUID       `json:"stock_location_id"`
	StockQuantity       *int             `json:"stock_quantity" binding:"omitempty,min=1"`
}

// UpdateDeviceRequest represents a partial update of a medical device
type UpdateDeviceRequest struct {
	Name                *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Brand               *string          `json:"brand" binding:"omitempty,max=100"`
	Model               *string          `json:"model" binding:"omitempty,max=100"`
	SerialNumber        *string          `json:"serial_number" binding:"omitempty,max=100"`
	PurchasePrice       *decimal.Decimal `json:"purchase_price"`
	SellingPrice        *decimal.Decimal `json:"selling_price"`
	RentalPrice         *decimal.Decimal `json:"rental_price"`
	TechnicalSpecs      *string          `json:"technical_specs"`
	Configuration       *string          `json:"configuration"`
	Destination         *string          `json:"destination" binding:"omitempty,oneof=FOR_SALE FOR_RENT"`
	RequiresMaintenance *bool            `json:"requires_maintenance"`
	Status              *string          `json:"status" binding:"omitempty,oneof=ACTIVE MAINTENANCE RETIRED RESERVED SOLD"`
	StockLocationID     *uuid.UUID       `json:"stock_location_id"`
}

// DeviceListFilter represents filter options for the device list
type DeviceListFilter struct {
	Search          string `form:"search"`
	Status          string `form:"status" binding:"omitempty,oneof=ACTIVE MAINTENANCE RETIRED RESERVED SOLD"`
	Type            string `form:"type" binding:"omitempty,oneof=MEDICAL_DEVICE DIAGNOSTIC_DEVICE"`
	Destination     string `form:"destination" binding:"omitempty,oneof=FOR_SALE FOR_RENT"`
	StockLocationID string `form:"stock_location_id" binding:"omitempty,uuid"`
	PatientID       string `form:"patient_id" binding:"omitempty,uuid"`
	Page            int    `form:"page" binding:"min=0"`
	PageSize        int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DeviceResponse represents a medical device in API responses
type DeviceResponse struct {
	ID                  uuid.UUID       `json:"id"`
	DeviceCode          string          `json:"device_code"`
	Name                string          `json:"name"`
	Type                string          `json:"type"`
	Brand               string          `json:"brand,omitempty"`
	Model               string          `json:"model,omitempty"`
	SerialNumber        string          `json:"serial_number,omitempty"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	SellingPrice        decimal.Decimal `json:"selling_price"`
	RentalPrice         decimal.Decimal `json:"rental_price"`
	TechnicalSpecs      string          `json:"technical_specs,omitempty"`
	Configuration       string          `json:"configuration,omitempty"`
	Destination         string          `json:"destination"`
	RequiresMaintenance bool            `json:"requires_maintenance"`
	Status              string          `json:"status"`
	StockLocationID     *uuid.UUID      `json:"stock_location_id,omitempty"`
	StockQuantity       int             `json:"stock_quantity"`
	PatientID           *uuid.UUID      `json:"patient_id,omitempty"`
	CompanyID           *uuid.UUID      `json:"company_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ToDeviceResponse converts a domain MedicalDevice to DeviceResponse
func ToDeviceResponse(d *catalog.MedicalDevice) DeviceResponse {
	return DeviceResponse{
		ID:                  d.ID,
		DeviceCode:          d.DeviceCode,
		Name:                d.Name,
		Type:                string(d.Type),
		Brand:               d.Brand,
		Model:               d.Model,
		SerialNumber:        d.SerialNumber,
		PurchasePrice:       d.PurchasePrice,
		SellingPrice:        d.SellingPrice,
		RentalPrice:         d.RentalPrice,
		TechnicalSpecs:      d.TechnicalSpecs,
		Configuration:       d.Configuration,
		Destination:         string(d.Destination),
		RequiresMaintenance: d.RequiresMaintenance,
		Status:              string(d.Status),
		StockLocationID:     d.StockLocationID,
		StockQuantity:       d.StockQuantity,
		PatientID:           d.PatientID,
		CompanyID:           d.CompanyID,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// ToDeviceResponses converts a slice of devices
func ToDeviceResponses(devices []catalog.MedicalDevice) []DeviceResponse {
	out := make([]DeviceResponse, len(devices))
	for i := range devices {
		out[i] = ToDeviceResponse(&devices[i])
	}
	return out
}

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to create a product. When
// StockLocationID and StockQuantity are both set an initial FOR_SALE stock
// row is created with the product.
type CreateProductRequest struct {
	Name            string           `json:"name" binding:"required,min=1,max=200"`
	Type            string           `json:"type" binding:"omitempty,oneof=ACCESSORY SPARE_PART"`
	Brand           string           `json:"brand" binding:"max=100"`
	Model           string           `json:"model" binding:"max=100"`
	SerialNumber    string           `json:"serial_number" binding:"max=100"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	SellingPrice    *decimal.Decimal `json:"selling_price"`
	StockLocationID *uuid.UUID       `json:"stock_location_id"`
	StockQuantity   int              `json:"stock_quantity" binding:"min=0"`
}

// UpdateProductRequest represents a partial update of a product
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Type          *string          `json:"type" binding:"omitempty,oneof=ACCESSORY SPARE_PART"`
	Brand         *string          `json:"brand" binding:"omitempty,max=100"`
	Model         *string          `json:"model" binding:"omitempty,max=100"`
	SerialNumber  *string          `json:"serial_number" binding:"omitempty,max=100"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=ACCESSORY SPARE_PART"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Brand         string          `json:"brand,omitempty"`
	Model         string          `json:"model,omitempty"`
	SerialNumber  string          `json:"serial_number,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Type:          string(p.Type),
		Brand:         p.Brand,
		Model:         p.Model,
		SerialNumber:  p.SerialNumber,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

func decimalOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}
