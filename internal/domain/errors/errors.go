// Package errors provides domain-specific error types.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for domain errors.
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeArgumentNull       = "ARGUMENT_NULL"
	ErrCodeEmptyFieldSet      = "EMPTY_FIELD_SET"
	ErrCodeUnsupportedIDType  = "UNSUPPORTED_IDENTIFIER_TYPE"
	ErrCodeConnection         = "CONNECTION_ERROR"
	ErrCodeWriteConflict      = "WRITE_CONFLICT"
	ErrCodeNotFoundOnDrop     = "NOT_FOUND_ON_DROP"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// DomainError represents a domain-specific error.
type DomainError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the caller may safely continue after the error.
// A missing index on drop is the only store condition treated that way.
func (e *DomainError) Recoverable() bool {
	return e.Code == ErrCodeNotFoundOnDrop
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, identifier string) *DomainError {
	return &DomainError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Details:    identifier,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, details string) *DomainError {
	return &DomainError{
		Code:       ErrCodeValidation,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewStoreValidationError wraps a write rejected by the store's document validation.
func NewStoreValidationError(err error) *DomainError {
	return &DomainError{
		Code:       ErrCodeValidation,
		Message:    "document failed validation",
		Details:    errDetails(err),
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, err error) *DomainError {
	return &DomainError{
		Code:       ErrCodeInternal,
		Message:    message,
		Details:    errDetails(err),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewBadRequestError creates a new bad request error.
func NewBadRequestError(message string, details string) *DomainError {
	return &DomainError{
		Code:       ErrCodeBadRequest,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(operation string, err error) *DomainError {
	return &DomainError{
		Code:       ErrCodeTimeout,
		Message:    fmt.Sprintf("%s timed out", operation),
		HTTPStatus: http.StatusGatewayTimeout,
		Err:        err,
	}
}

// NewServiceUnavailableError creates a new service unavailable error.
func NewServiceUnavailableError(service string, err error) *DomainError {
	return &DomainError{
		Code:       ErrCodeServiceUnavailable,
		Message:    fmt.Sprintf("%s is unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewArgumentNullError is returned when a nil document or filter reaches a mutation.
func NewArgumentNullError(argument string) *DomainError {
	return &DomainError{
		Code:       ErrCodeArgumentNull,
		Message:    fmt.Sprintf("%s cannot be nil", argument),
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewEmptyFieldSetError is returned when a compound index is requested without fields.
func NewEmptyFieldSetError(operation string) *DomainError {
	return &DomainError{
		Code:       ErrCodeEmptyFieldSet,
		Message:    "at least one field is required",
		Details:    operation,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnsupportedIdentifierTypeError is returned when no id generator is registered for a type.
func NewUnsupportedIdentifierTypeError(typeName string) *DomainError {
	return &DomainError{
		Code:       ErrCodeUnsupportedIDType,
		Message:    "no identifier generator registered",
		Details:    typeName,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewConnectionError wraps a failure to reach the document store.
func NewConnectionError(err error) *DomainError {
	return &DomainError{
		Code:       ErrCodeConnection,
		Message:    "document store unreachable",
		Details:    errDetails(err),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewWriteConflictError wraps a uniqueness violation reported by the store.
func NewWriteConflictError(err error) *DomainError {
	return &DomainError{
		Code:       ErrCodeWriteConflict,
		Message:    "document conflicts with an existing document",
		Details:    errDetails(err),
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// NewNotFoundOnDropError wraps the store's report that an index to drop does not exist.
func NewNotFoundOnDropError(indexName string, err error) *DomainError {
	return &DomainError{
		Code:       ErrCodeNotFoundOnDrop,
		Message:    "index not found",
		Details:    indexName,
		HTTPStatus: http.StatusNotFound,
		Err:        err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsDomainError checks if the error is a domain error.
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error.
func GetDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a domain error with the given code.
func HasCode(err error, code string) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == code
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	return HasCode(err, ErrCodeValidation)
}

// IsArgumentNull checks if the error is an argument null error.
func IsArgumentNull(err error) bool {
	return HasCode(err, ErrCodeArgumentNull)
}

// IsEmptyFieldSet checks if the error is an empty field set error.
func IsEmptyFieldSet(err error) bool {
	return HasCode(err, ErrCodeEmptyFieldSet)
}

// IsUnsupportedIdentifierType checks if the error is an unsupported identifier type error.
func IsUnsupportedIdentifierType(err error) bool {
	return HasCode(err, ErrCodeUnsupportedIDType)
}

// IsConnectionError checks if the error is a connection error.
func IsConnectionError(err error) bool {
	return HasCode(err, ErrCodeConnection)
}

// IsWriteConflict checks if the error is a write conflict error.
func IsWriteConflict(err error) bool {
	return HasCode(err, ErrCodeWriteConflict)
}

// IsNotFoundOnDrop checks if the error is a missing index on drop.
func IsNotFoundOnDrop(err error) bool {
	return HasCode(err, ErrCodeNotFoundOnDrop)
}
