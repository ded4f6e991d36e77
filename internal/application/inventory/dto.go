package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/inventory"
)

// =============================================================================
// Stock location DTOs
// =============================================================================

// CreateLocationRequest represents a request to create a stock location
type CreateLocationRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=200"`
	Description string     `json:"description"`
	UserID      *uuid.UUID `json:"user_id"`
}

// UpdateLocationRequest represents a partial update of a stock location
type UpdateLocationRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	UserID      *uuid.UUID `json:"user_id"`
	IsActive    *bool      `json:"is_active"`
}

// LocationListFilter represents filter options for the location list
type LocationListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LocationResponse represents a stock location in API responses
type LocationResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToLocationResponse converts a domain StockLocation
func ToLocationResponse(l *inventory.StockLocation) LocationResponse {
	return LocationResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		UserID:      l.UserID,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// =============================================================================
// Stock DTOs
// =============================================================================

// InventoryListFilter represents filter options for the inventory listing
type InventoryListFilter struct {
	Search      string `form:"search"`
	LocationID  string `form:"location_id" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,oneof=FOR_SALE FOR_RENT IN_REPAIR OUT_OF_SERVICE"`
	ProductType string `form:"product_type" binding:"omitempty,oneof=ACCESSORY SPARE_PART"`
	Page        int    `form:"page" binding:"min=0"`
	PageSize    int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StockResponse is one stock row with its product and location names
type StockResponse struct {
	ID           uuid.UUID `json:"id"`
	LocationID   uuid.UUID `json:"location_id"`
	LocationName string    `json:"location_name,omitempty"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	ProductType  string    `json:"product_type,omitempty"`
	Quantity     int       `json:"quantity"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdjustStockRequest sets a stock row's quantity and/or status
type AdjustStockRequest struct {
	Quantity *int   `json:"quantity" binding:"omitempty,min=0"`
	Status   string `json:"status" binding:"omitempty,oneof=FOR_SALE FOR_RENT IN_REPAIR OUT_OF_SERVICE"`
}

// =============================================================================
// Transfer DTOs
// =============================================================================

// CreateTransferRequest is a direct transfer of product units or one device
type CreateTransferRequest struct {
	FromLocationID  uuid.UUID  `json:"from_location_id" binding:"required"`
	ToLocationID    uuid.UUID  `json:"to_location_id" binding:"required"`
	ProductID       *uuid.UUID `json:"product_id"`
	MedicalDeviceID *uuid.UUID `json:"medical_device_id"`
	Quantity        int        `json:"quantity" binding:"required,min=1"`
	NewStatus       string     `json:"new_status" binding:"omitempty"`
	Notes           string     `json:"notes"`
}

// TransferListFilter represents filter options for the transfer list
type TransferListFilter struct {
	LocationID string     `form:"location_id" binding:"omitempty,uuid"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransferResponse represents a stock transfer in API responses
type TransferResponse struct {
	ID               uuid.UUID  `json:"id"`
	FromLocationID   uuid.UUID  `json:"from_location_id"`
	ToLocationID     uuid.UUID  `json:"to_location_id"`
	ProductID        *uuid.UUID `json:"product_id,omitempty"`
	MedicalDeviceID  *uuid.UUID `json:"medical_device_id,omitempty"`
	Quantity         int        `json:"quantity"`
	NewStatus        string     `json:"new_status,omitempty"`
	TransferredByID  uuid.UUID  `json:"transferred_by_id"`
	IsVerified       bool       `json:"is_verified"`
	VerifiedByID     *uuid.UUID `json:"verified_by_id,omitempty"`
	VerificationDate *time.Time `json:"verification_date,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	TransferDate     time.Time  `json:"transfer_date"`
}

// ToTransferResponse converts a domain StockTransfer
func ToTransferResponse(t *inventory.StockTransfer) TransferResponse {
	return TransferResponse{
		ID:               t.ID,
		FromLocationID:   t.FromLocationID,
		ToLocationID:     t.ToLocationID,
		ProductID:        t.ProductID,
		MedicalDeviceID:  t.MedicalDeviceID,
		Quantity:         t.Quantity,
		NewStatus:        string(t.NewStatus),
		TransferredByID:  t.TransferredByID,
		IsVerified:       t.IsVerified,
		VerifiedByID:     t.VerifiedByID,
		VerificationDate: t.VerificationDate,
		Notes:            t.Notes,
		TransferDate:     t.TransferDate,
	}
}

// =============================================================================
// Transfer request DTOs
// =============================================================================

// CreateTransferRequestRequest is an employee's transfer request. The
// destination is always the caller's own stock location.
type CreateTransferRequestRequest struct {
	FromLocationID    uuid.UUID  `json:"from_location_id" binding:"required"`
	ProductID         *uuid.UUID `json:"product_id"`
	MedicalDeviceID   *uuid.UUID `json:"medical_device_id"`
	RequestedQuantity int        `json:"requested_quantity" binding:"required,min=1"`
	Reason            string     `json:"reason" binding:"required"`
	Urgency           string     `json:"urgency" binding:"required,oneof=LOW MEDIUM HIGH"`
}

// ReviewTransferRequest is the admin decision on a pending request
type ReviewTransferRequest struct {
	Action      string `json:"action" binding:"required,oneof=APPROVED REJECTED"`
	ReviewNotes string `json:"review_notes"`
}

// TransferRequestListFilter represents filter options for transfer requests
type TransferRequestListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED COMPLETED"`
	Urgency  string `form:"urgency" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// TransferRequestResponse represents a transfer request in API responses
type TransferRequestResponse struct {
	ID                uuid.UUID  `json:"id"`
	RequestCode       string     `json:"request_code"`
	FromLocationID    uuid.UUID  `json:"from_location_id"`
	ToLocationID      uuid.UUID  `json:"to_location_id"`
	ProductID         *uuid.UUID `json:"product_id,omitempty"`
	MedicalDeviceID   *uuid.UUID `json:"medical_device_id,omitempty"`
	RequestedQuantity int        `json:"requested_quantity"`
	Reason            string     `json:"reason"`
	Urgency           string     `json:"urgency"`
	Status            string     `json:"status"`
	RequestedByID     uuid.UUID  `json:"requested_by_id"`
	ReviewedByID      *uuid.UUID `json:"reviewed_by_id,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes       string     `json:"review_notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToTransferRequestResponse converts a domain StockTransferRequest
func ToTransferRequestResponse(r *inventory.StockTransferRequest) TransferRequestResponse {
	return TransferRequestResponse{
		ID:                r.ID,
		RequestCode:       r.RequestCode,
		FromLocationID:    r.FromLocationID,
		ToLocationID:      r.ToLocationID,
		ProductID:         r.ProductID,
		MedicalDeviceID:   r.MedicalDeviceID,
		RequestedQuantity: r.RequestedQuantity,
		Reason:            r.Reason,
		Urgency:           string(r.Urgency),
		Status:            string(r.Status),
		RequestedByID:     r.RequestedByID,
		ReviewedByID:      r.ReviewedByID,
		ReviewedAt:        r.ReviewedAt,
		ReviewNotes:       r.ReviewNotes,
		CreatedAt:         r.CreatedAt,
	}
}

// TransferRequestList is a page of requests plus counts per status over
// everything the caller can see
type TransferRequestList struct {
	Items   []TransferRequestResponse `json:"items"`
	Total   int64                     `json:"total"`
	Summary map[string]int64          `json:"summary"`
}
