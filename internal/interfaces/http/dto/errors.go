package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDeactivated = "ERR_ACCOUNT_DEACTIVATED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeHasDependencies     = "ERR_HAS_DEPENDENCIES"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeFileTooLarge    = "ERR_FILE_TOO_LARGE"
	ErrCodeUnsupportedType = "ERR_UNSUPPORTED_FILE_TYPE"
)

// Request handling error codes
const (
	ErrCodeRateLimited        = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge    = "ERR_REQUEST_TOO_LARGE"
	ErrCodeIdempotencyPending = "ERR_IDEMPOTENCY_IN_PROGRESS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDeactivated: http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeHasDependencies:     http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeFileTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedType: http.StatusUnsupportedMediaType,

	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeIdempotencyPending: http.StatusConflict,
}

// DomainErrorCodeMapping maps the generic domain error codes to their
// standardized API codes. Specific codes (INVALID_QUANTITY, SAME_LOCATION...)
// are returned unchanged so clients can branch on them.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_REQUEST":       ErrCodeBadRequest,
	"INVALID_STATE":         ErrCodeInvalidState,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"HAS_DEPENDENCIES":      ErrCodeHasDependencies,
	"INSUFFICIENT_STOCK":    ErrCodeInsufficientStock,
	"INVALID_CREDENTIALS":   ErrCodeInvalidCredentials,
	"ACCOUNT_DEACTIVATED":   ErrCodeAccountDeactivated,
	"TOKEN_EXPIRED":         ErrCodeTokenExpired,
	"TOKEN_INVALID":         ErrCodeTokenInvalid,
	"TOKEN_REVOKED":         ErrCodeTokenRevoked,
	"FILE_TOO_LARGE":        ErrCodeFileTooLarge,
	"UNSUPPORTED_FILE_TYPE": ErrCodeUnsupportedType,
	"INTERNAL_ERROR":        ErrCodeInternal,
}

// specificCodeStatus covers domain codes whose status does not follow from
// their name
var specificCodeStatus = map[string]int{
	"SAME_LOCATION":          http.StatusBadRequest,
	"EMPTY_FILE":             http.StatusBadRequest,
	"NO_STOCK_LOCATION":      http.StatusForbidden,
	"CANNOT_DELETE_SELF":     http.StatusUnprocessableEntity,
	"DEVICE_NOT_AT_SOURCE":   http.StatusConflict,
	"UNKNOWN_LOCATION":       http.StatusBadRequest,
	"CODE_GENERATION_FAILED": http.StatusInternalServerError,
	"SAVE_FAILED":            http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR":    http.StatusInternalServerError,
	"TOKEN_ERROR":            http.StatusInternalServerError,
	"PDF_RENDER_FAILED":      http.StatusServiceUnavailable,
	"PDF_RENDER_TIMEOUT":     http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainHTTPStatus returns the status for a normalized domain error code.
// Unlisted codes are classified by their shape; anything left over is a
// business rule violation (422).
func DomainHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if status, ok := specificCodeStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "IMPORT_"),
		strings.HasSuffix(code, "_REQUIRED"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "TOKEN_"):
		return http.StatusUnauthorized
	case strings.Contains(code, "ALREADY_"):
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}

// NormalizeErrorCode converts a generic domain error code to the
// standardized format. Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
