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
	// ErrCodeRequestCanceled is used when the client went away or the
	// request deadline passed
	ErrCodeRequestCanceled = "ERR_REQUEST_CANCELED"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a recipe, ingredient or profile is unknown
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to register a duplicate
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
)

// Costing error codes
const (
	// ErrCodeInvalidRecipe is used when a recipe is malformed
	ErrCodeInvalidRecipe = "ERR_INVALID_RECIPE"
	// ErrCodeInvalidIngredient is used when an inventory record cannot be costed
	ErrCodeInvalidIngredient = "ERR_INVALID_INGREDIENT"
	// ErrCodeInvalidJob is used when the order parameters are malformed
	ErrCodeInvalidJob = "ERR_INVALID_JOB"
	// ErrCodeInvalidLineItem is used when a custom item or adjustment is malformed
	ErrCodeInvalidLineItem = "ERR_INVALID_LINE_ITEM"
	// ErrCodeInvalidCostingConfig is used when a pricing profile is malformed
	ErrCodeInvalidCostingConfig = "ERR_INVALID_COSTING_CONFIG"
	// ErrCodeInvalidCatalog is used when the catalog snapshot is malformed
	ErrCodeInvalidCatalog = "ERR_INVALID_CATALOG"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the body exceeds the limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:         http.StatusInternalServerError,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeRequestCanceled: http.StatusRequestTimeout,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	// Malformed job input -> 400 Bad Request
	ErrCodeInvalidJob:      http.StatusBadRequest,
	ErrCodeInvalidLineItem: http.StatusBadRequest,

	// Catalog data that cannot be costed -> 422 Unprocessable Entity
	ErrCodeInvalidRecipe:        http.StatusUnprocessableEntity,
	ErrCodeInvalidIngredient:    http.StatusUnprocessableEntity,
	ErrCodeInvalidCostingConfig: http.StatusUnprocessableEntity,

	// Server-side data errors
	ErrCodeInvalidCatalog: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the API codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_RECIPE":         ErrCodeInvalidRecipe,
	"INVALID_INGREDIENT":     ErrCodeInvalidIngredient,
	"INVALID_JOB":            ErrCodeInvalidJob,
	"INVALID_LINE_ITEM":      ErrCodeInvalidLineItem,
	"INVALID_COSTING_CONFIG": ErrCodeInvalidCostingConfig,
	"INVALID_CATALOG":        ErrCodeInvalidCatalog,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"BAD_REQUEST":            ErrCodeBadRequest,
	"INTERNAL_ERROR":         ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
