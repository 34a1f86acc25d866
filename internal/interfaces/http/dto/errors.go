package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep the code
// they were raised with.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// invalidPrefix marks input validation codes raised by the domain
// (INVALID_EMAIL, INVALID_TAX_RATE, ...)
const invalidPrefix = "INVALID_"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes missing
// from the table fall back to the INVALID_ prefix rule and then to 500.
var ErrorCodeHTTPStatus = map[string]int{
	// Input
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited: http.StatusTooManyRequests,

	// Authentication
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_REFRESH_LIMIT": http.StatusUnauthorized,

	// Permission
	ErrCodeForbidden:   http.StatusForbidden,
	"ACCOUNT_DISABLED": http.StatusForbidden,

	// Resources
	ErrCodeNotFound:            http.StatusNotFound,
	"ITEM_NOT_FOUND":           http.StatusNotFound,
	"ALREADY_EXISTS":           http.StatusConflict,
	"CONCURRENT_MODIFICATION":  http.StatusConflict,
	"INVOICE_NUMBER_EXHAUSTED": http.StatusConflict,
	"CUSTOMER_REFERENCED":      http.StatusConflict,

	// Business rules
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"INVALID_TRANSITION":    http.StatusUnprocessableEntity,
	"INVOICE_NOT_EDITABLE":  http.StatusUnprocessableEntity,
	"INVOICE_NOT_DELETABLE": http.StatusUnprocessableEntity,
	"INVOICE_LAST_ITEM":     http.StatusUnprocessableEntity,
	"CUSTOMER_INACTIVE":     http.StatusUnprocessableEntity,

	// Optional collaborators
	"PRINTING_UNAVAILABLE": http.StatusServiceUnavailable,
	"STORAGE_UNAVAILABLE":  http.StatusServiceUnavailable,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,

	// Internal
	ErrCodeInternal:                   http.StatusInternalServerError,
	"INVOICE_NUMBER_SEQUENCE_CORRUPT": http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR":             http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, invalidPrefix) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
