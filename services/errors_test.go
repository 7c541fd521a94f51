package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/student-records/repositories"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "user not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: user not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same sentinel wrapped",
			err:    ErrStudentNotFound.Wrap(errors.New("no rows")),
			target: ErrStudentNotFound,
			want:   true,
		},
		{
			name:   "same type different message",
			err:    ErrUserNotFound,
			target: ErrStudentNotFound,
			want:   false,
		},
		{
			name:   "type-only target",
			err:    ErrUserNotFound,
			target: NewDomainError(ErrorTypeNotFound, "", nil),
			want:   true,
		},
		{
			name:   "different error type",
			err:    ErrInvalidInput,
			target: ErrStudentNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    ErrStudentNotFound,
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{"not found", ErrStudentNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("wrapped: %w", ErrUserNotFound), IsNotFoundError, true},
		{"nil is not found", nil, IsNotFoundError, false},
		{"validation", ErrUnknownMajor, IsValidationError, true},
		{"validation on not found", ErrUserNotFound, IsValidationError, false},
		{"unauthorized", ErrInvalidCredentials, IsUnauthorizedError, true},
		{"forbidden type only", NewDomainError(ErrorTypeForbidden, "", nil), IsForbiddenError, true},
		{"cannot delete self", ErrCannotDeleteSelf, IsForbiddenError, true},
		{"conflict", ErrDuplicateUsername, IsConflictError, true},
		{"internal", WrapInternal("query failed", errors.New("eof")), IsInternalError, true},
		{"transaction failed", ErrTransactionFailed, IsInternalError, true},
		{"regular error", errors.New("regular"), IsInternalError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(ErrStudentNotFound))
	assert.Equal(t, ErrorTypeConflict, GetErrorType(fmt.Errorf("x: %w", ErrDuplicateMajor)))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("regular")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Student not found.", UserMessage(ErrStudentNotFound))
	assert.Equal(t, "Invalid username or password", UserMessage(ErrInvalidCredentials))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(WrapInternal("db", errors.New("x"))))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("plain")))
}

func TestWrapInternal(t *testing.T) {
	baseErr := errors.New("database connection failed")
	wrapped := WrapInternal("failed to connect", baseErr)

	assert.True(t, IsInternalError(wrapped))
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}

func TestFromRepository(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"not found", fmt.Errorf("student 9: %w", repositories.ErrNotFound), ErrStudentNotFound},
		{"duplicate", fmt.Errorf("insert: %w", repositories.ErrDuplicate), ErrDuplicateEmail},
		{"other", errors.New("connection reset"), NewDomainError(ErrorTypeInternal, "", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromRepository(tt.err, ErrStudentNotFound, ErrDuplicateEmail)
			assert.ErrorIs(t, err, tt.target)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, FromRepository(nil, ErrStudentNotFound, nil))
}
