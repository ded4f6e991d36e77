package persistence

import (
	"strings"

	"github.com/medrent/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applyPaging applies whitelisted ordering plus offset/limit. defaultOrder
// is used verbatim when the filter asks for no (or an unknown) sort field.
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	if field := ValidateSortField(filter.OrderBy, allowed, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(defaultOrder)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// applySearch adds a case-insensitive substring match over columns.
// LOWER(..) LIKE is used instead of ILIKE so the same query runs on SQLite.
func applySearch(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	pattern := likePattern(term)
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

var baseSortFields = []string{"id", "created_at", "updated_at"}

func sortFields(fields ...string) map[string]bool {
	m := make(map[string]bool, len(fields)+len(baseSortFields))
	for _, f := range baseSortFields {
		m[f] = true
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Allowed sort fields per table
var (
	UserSortFields            = sortFields("email", "first_name", "last_name", "role", "is_active", "last_login_at")
	PatientSortFields         = sortFields("patient_code", "first_name", "last_name", "telephone", "cin", "governorate", "date_of_birth")
	CompanySortFields         = sortFields("company_code", "company_name", "telephone")
	DeviceSortFields          = sortFields("device_code", "name", "type", "brand", "model", "serial_number", "status", "destination", "rental_price", "selling_price")
	ProductSortFields         = sortFields("name", "type", "brand", "model", "selling_price", "purchase_price")
	StockLocationSortFields   = sortFields("name", "is_active")
	StockSortFields           = map[string]bool{"stocks.created_at": true, "stocks.updated_at": true, "stocks.quantity": true, "stocks.status": true, "stocks.location_id": true, "stocks.product_id": true}
	TransferSortFields        = sortFields("transfer_date", "quantity", "is_verified")
	TransferRequestSortFields = sortFields("request_code", "status", "urgency", "requested_quantity", "reviewed_at")
	PaymentSortFields         = sortFields("payment_code", "amount", "method", "status", "source", "payment_date", "due_date")
	DossierSortFields         = sortFields("dossier_number", "status", "current_step", "bond_amount")
	RentalSortFields          = sortFields("rental_code", "start_date", "end_date", "status")
	SaleSortFields            = sortFields("sale_code", "invoice_number", "sale_date", "final_amount", "total_amount", "status")
	DiagnosticSortFields      = sortFields("diagnostic_code", "diagnostic_date", "follow_up_date")
	AppointmentSortFields     = sortFields("appointment_code", "scheduled_date", "status", "priority")
	TaskSortFields            = sortFields("task_code", "title", "status", "priority", "start_date", "end_date")
	NotificationSortFields    = sortFields("due_date", "priority", "status", "type", "is_read")
	ImportHistorySortFields   = sortFields("entity_type", "status", "total_rows", "completed_at")
)
