// Package validator checks request payloads against their struct tags and
// renders every violation as a human-readable field message.
package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/errors"

	"github.com/go-playground/validator/v10"
)

// tagMaxBytes bounds the byte length of a string, not its rune count.
const tagMaxBytes = "maxbytes"

// messages overrides the generated text for specific field rules.
var messages = map[string]string{
	"username.min":      "Username must be at least 3 characters long",
	"username.max":      "Username cannot exceed 20 characters",
	"email.email":       "Invalid email format",
	"password.min":      "Password must be at least 6 characters long",
	"password.maxbytes": "Password cannot exceed 72 bytes",
	"firstName.min":     "First name must be at least 2 characters",
	"firstName.max":     "First name cannot exceed 50 characters",
	"lastName.min":      "Last name must be at least 2 characters",
	"lastName.max":      "Last name cannot exceed 50 characters",
}

// RequestValidator implements echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

// New builds a validator that reports fields by their JSON names.
func New() *RequestValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	// Registration only fails for an empty tag or a nil func.
	_ = validate.RegisterValidation(tagMaxBytes, maxBytes)

	return &RequestValidator{validate: validate}
}

// Validate returns nil or a *domainerrors.ValidationError listing every violation in field order.
func (v *RequestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errors.Wrap(err, "validate request")
	}

	fields := make([]domainerrors.FieldError, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields = append(fields, domainerrors.FieldError{
			Field:   fieldErr.Field(),
			Message: message(fieldErr),
		})
	}

	return domainerrors.NewValidationError(fields...)
}

func message(fieldErr validator.FieldError) string {
	if msg, ok := messages[fieldErr.Field()+"."+fieldErr.Tag()]; ok {
		return msg
	}

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldErr.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fieldErr.Field(), fieldErr.Param())
	case "max", tagMaxBytes:
		return fmt.Sprintf("%s cannot exceed %s characters", fieldErr.Field(), fieldErr.Param())
	case "email":
		return "Invalid email format"
	default:
		return fmt.Sprintf("%s is invalid", fieldErr.Field())
	}
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	return len(field.String()) <= limit
}
