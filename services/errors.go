package services

import (
	"errors"
	"fmt"

	"github.com/upb/student-records/repositories"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type and message. A target with an
// empty message matches on type alone.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Message == "" {
		return e.Type == t.Type
	}
	return e.Type == t.Type && e.Message == t.Message
}

// Wrap returns a copy of the error with err as its cause
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{Type: e.Type, Message: e.Message, Err: err}
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrStudentNotFound = NewDomainError(ErrorTypeNotFound, "Student not found.", nil)
	ErrUserNotFound    = NewDomainError(ErrorTypeNotFound, "User not found.", nil)

	// Validation Errors
	ErrInvalidInput     = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidBirthDate = NewDomainError(ErrorTypeValidation, "Birth date must use the format YYYY-MM-DD.", nil)
	ErrUnknownMajor     = NewDomainError(ErrorTypeValidation, "Selected major does not exist.", nil)
	ErrInvalidRole      = NewDomainError(ErrorTypeValidation, "Role must be one of PUBLIC, STUDENT, MANAGER, ADMIN.", nil)

	// Authentication Errors
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "Invalid username or password", nil)

	// Permission Errors
	ErrCannotDeleteSelf = NewDomainError(ErrorTypeForbidden, "You cannot delete your own account.", nil)

	// Conflict Errors
	ErrDuplicateUsername = NewDomainError(ErrorTypeConflict, "That username is already taken.", nil)
	ErrDuplicateEmail    = NewDomainError(ErrorTypeConflict, "That email address is already registered.", nil)
	ErrDuplicateMajor    = NewDomainError(ErrorTypeConflict, "That major already exists.", nil)

	// Internal Errors
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)
)

// Error type checking helper functions

func hasType(err error, errType ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == errType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return hasType(err, ErrorTypeUnauthorized)
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return hasType(err, ErrorTypeForbidden)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return hasType(err, ErrorTypeConflict)
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// UserMessage returns the message a user should see for err
func UserMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Type != ErrorTypeInternal {
		return domainErr.Message
	}
	return "Something went wrong. Please try again."
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// FromRepository maps repository sentinels onto domain errors. notFound is
// returned for a missing row and conflict for a unique violation.
func FromRepository(err error, notFound, conflict *DomainError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound) && notFound != nil:
		return notFound.Wrap(err)
	case errors.Is(err, repositories.ErrDuplicate) && conflict != nil:
		return conflict.Wrap(err)
	default:
		return WrapInternal("database error", err)
	}
}
