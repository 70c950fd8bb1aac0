package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConfiguration    = "CONFIGURATION_ERROR"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodePartialIngestion = "PARTIAL_INGESTION"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidTurnOrigin = NewDomainError(ErrCodeValidation, "invalid conversation turn origin")
	ErrInvalidChunkKind  = NewDomainError(ErrCodeValidation, "invalid context chunk kind")
	ErrEmptyMessage      = NewDomainError(ErrCodeValidation, "message cannot be empty")
)

// Not found errors
var (
	ErrProjectNotFound = NewDomainError(ErrCodeNotFound, "project not found")
)

// Configuration errors
var (
	ErrLLMNotConfigured = NewDomainError(ErrCodeConfiguration, "completion provider not configured: API key missing")
)
