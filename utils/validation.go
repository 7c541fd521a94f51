package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the form format for calendar dates
const DateLayout = "2006-01-02"

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report form field names rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError wraps validation errors with structured details.
// Messages keeps the struct field order so the first problem is stable.
type ValidationError struct {
	Message  string
	Fields   map[string]string
	Messages []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// Label turns a form field name such as "first_name" into "First name"
func Label(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	messages := make([]string, 0, len(errs))

	for _, err := range errs {
		field := err.Field()
		label := Label(field)

		var msg string
		switch err.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", label)
		case "email":
			msg = fmt.Sprintf("%s must be a valid email address", label)
		case "isodate":
			msg = fmt.Sprintf("%s must use the format YYYY-MM-DD", label)
		case "min":
			msg = fmt.Sprintf("%s must be at least %s characters", label, err.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", label, err.Param())
		case "gt":
			msg = fmt.Sprintf("%s must be greater than %s", label, err.Param())
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", label, err.Param())
		case "eqfield":
			msg = fmt.Sprintf("%s must match %s", label, Label(err.Param()))
		default:
			msg = fmt.Sprintf("%s is invalid", label)
		}

		if _, seen := fields[field]; !seen {
			fields[field] = msg
			messages = append(messages, msg)
		}
	}

	message := "Validation failed"
	if len(messages) > 0 {
		message = messages[0]
	}

	return &ValidationError{
		Message:  message,
		Fields:   fields,
		Messages: messages,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// GetValidationMessages returns the field messages of a ValidationError in field order
func GetValidationMessages(err error) []string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Messages
	}
	return nil
}
