package dto

import (
	"net/http"

	"github.com/erp/ledger/internal/domain/shared"
)

// Domain error codes travel to clients unchanged
const (
	ErrCodeValidation           = shared.CodeValidation
	ErrCodeNotFound             = shared.CodeNotFound
	ErrCodeInsufficientStock    = shared.CodeInsufficientStock
	ErrCodeDuplicateBatchNumber = shared.CodeDuplicateBatchNumber
	ErrCodeBatchAlreadyConsumed = shared.CodeBatchAlreadyConsumed
	ErrCodeConcurrencyConflict  = shared.CodeConcurrencyConflict
)

// Transport error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when a write arrives without an actor
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeDuplicateRequest is used when an Idempotency-Key is replayed
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeUnavailable is used when a dependency is down
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeDuplicateBatchNumber: http.StatusConflict,
	ErrCodeBatchAlreadyConsumed: http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,

	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeDuplicateRequest: http.StatusConflict,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:      http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
