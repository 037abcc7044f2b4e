package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeLocked is used when another operation holds the resource
	ErrCodeLocked = "ERR_LOCKED"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeForbidden is used when the caller may not reach an endpoint
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Invoicing error codes
const (
	// ErrCodeConfigurationMissing is used when a plan or numbering config is absent
	ErrCodeConfigurationMissing = "ERR_CONFIGURATION_MISSING"
	// ErrCodeScheduleExists is used when an agreement was already invoiced
	ErrCodeScheduleExists = "ERR_SCHEDULE_EXISTS"
	// ErrCodeInvalidPlan is used for unusable installment plans
	ErrCodeInvalidPlan = "ERR_INVALID_PLAN"
	// ErrCodeInvalidNumbering is used for malformed numbering configurations
	ErrCodeInvalidNumbering = "ERR_INVALID_NUMBERING"
	// ErrCodeInvalidAgreement is used for malformed sale agreements
	ErrCodeInvalidAgreement = "ERR_INVALID_AGREEMENT"
	// ErrCodeInvalidDate is used for dates that are not YYYY-MM-DD
	ErrCodeInvalidDate = "ERR_INVALID_DATE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeLocked:              http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeForbidden:    http.StatusForbidden,

	// Invoicing
	ErrCodeConfigurationMissing: http.StatusUnprocessableEntity,
	ErrCodeScheduleExists:       http.StatusConflict,
	ErrCodeInvalidPlan:          http.StatusBadRequest,
	ErrCodeInvalidNumbering:     http.StatusBadRequest,
	ErrCodeInvalidAgreement:     http.StatusBadRequest,
	ErrCodeInvalidDate:          http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"LOCKED":                ErrCodeLocked,
	"VALIDATION_ERROR":      ErrCodeValidation,
	"BAD_REQUEST":           ErrCodeBadRequest,
	"INTERNAL_ERROR":        ErrCodeInternal,
	"CONFIGURATION_MISSING": ErrCodeConfigurationMissing,
	"SCHEDULE_EXISTS":       ErrCodeScheduleExists,
	"INVALID_PLAN":          ErrCodeInvalidPlan,
	"INVALID_NUMBERING":     ErrCodeInvalidNumbering,
	"INVALID_AGREEMENT":     ErrCodeInvalidAgreement,
	"INVALID_DATE":          ErrCodeInvalidDate,
	"GENERATION_FAILED":     ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
