package shared

import "errors"

// Error codes shared across the service. Codes are part of the API contract
// and must stay stable across releases.
const (
	CodeValidation = "VALIDATION"
	CodeDataSource = "DATA_SOURCE"
	CodeCache      = "CACHE"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL"
)

// DomainError represents a domain-level error with a stable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a caller-fixable input error
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewDataSourceError wraps a failure of the transactional data source.
// The cause is preserved for logging; the message is safe for callers.
func NewDataSourceError(message string, cause error) *DomainError {
	return &DomainError{Code: CodeDataSource, Message: message, cause: cause}
}

// NewCacheError wraps a cache backend failure. Cache errors are absorbed at
// the call site and never surface to callers.
func NewCacheError(message string, cause error) *DomainError {
	return &DomainError{Code: CodeCache, Message: message, cause: cause}
}

// NewNotFoundError creates a missing-entity error
func NewNotFoundError(message string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: message}
}

// NewInternalError wraps an unexpected failure, opaque to callers
func NewInternalError(cause error) *DomainError {
	return &DomainError{Code: CodeInternal, Message: "internal error", cause: cause}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeValidation, "Invalid input provided")
)

// CodeOf returns the stable code carried by err, or CodeInternal when err is
// not a DomainError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// IsNotFound reports whether err is a missing-entity error
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsDataSource reports whether err originated in the transactional store
func IsDataSource(err error) bool {
	return IsCode(err, CodeDataSource)
}

// IsValidation reports whether err is caller-fixable
func IsValidation(err error) bool {
	return IsCode(err, CodeValidation)
}
