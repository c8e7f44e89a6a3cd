package shared

import "fmt"

// Error codes shared by every ledger operation.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeDuplicateBatchNumber = "DUPLICATE_BATCH_NUMBER"
	CodeBatchAlreadyConsumed = "BATCH_ALREADY_CONSUMED"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so callers can match a
// detailed error against one of the sentinels below with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrValidation           = NewDomainError(CodeValidation, "Invalid input provided")
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrInsufficientStock    = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrDuplicateBatchNumber = NewDomainError(CodeDuplicateBatchNumber, "Batch number already exists for this product")
	ErrBatchAlreadyConsumed = NewDomainError(CodeBatchAlreadyConsumed, "Batch has already been sold from")
	ErrConcurrencyConflict  = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainErrorf(CodeValidation, format, args...)
}

// NewNotFoundError returns a NotFound error naming the missing resource.
func NewNotFoundError(resource string, id any) *DomainError {
	return NewDomainErrorf(CodeNotFound, "%s %v not found", resource, id)
}
