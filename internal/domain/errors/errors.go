package errors

import (
	"net/http"
	"strings"

	"authgate/internal/errors"
)

// GenericInternalMessage is the only text a client ever sees for a 5xx.
const GenericInternalMessage = "Internal server error"

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-facing error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-facing error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy carrying detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Input errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Validation failed",
		"",
	)

	ErrSignupFieldsMissing = NewBaseError(
		http.StatusBadRequest,
		"MISSING_FIELDS",
		"Email, password, and username are required",
		"",
	)

	ErrLoginFieldsMissing = NewBaseError(
		http.StatusBadRequest,
		"MISSING_FIELDS",
		"Email and password are required",
		"",
	)

	ErrInvalidInput = NewBaseError(
		http.StatusBadRequest,
		"INVALID_INPUT",
		"Invalid request body",
		"",
	)

	// Uniqueness errors
	ErrEmailInUse = NewBaseError(
		http.StatusConflict,
		"EMAIL_IN_USE",
		"Email already in use",
		"",
	)

	ErrUsernameTaken = NewBaseError(
		http.StatusConflict,
		"USERNAME_TAKEN",
		"Username already taken",
		"",
	)

	ErrAccountExists = NewBaseError(
		http.StatusConflict,
		"ACCOUNT_EXISTS",
		"Username or email already exists",
		"",
	)

	// Authentication errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Incorrect email or password",
		"",
	)

	ErrAuthenticationRequired = NewBaseError(
		http.StatusUnauthorized,
		"AUTHENTICATION_REQUIRED",
		"Authentication required",
		"",
	)

	ErrTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"TOKEN_INVALID",
		"Invalid or expired token",
		"",
	)

	// Internal failures. The message never varies so nothing about the cause leaks.
	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		GenericInternalMessage,
		"",
	)

	ErrTokenIssueFailed = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		GenericInternalMessage,
		"",
	)

	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		GenericInternalMessage,
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		GenericInternalMessage,
		"",
	)

	ErrRouteNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Route not found",
		"",
	)
)

// ValidationError carries one human-readable message per rejected field.
type ValidationError struct {
	fields []FieldError
}

// FieldError is a single rejected field.
type FieldError struct {
	Field   string
	Message string
}

// NewValidationError creates a 400 error from field messages
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{fields: fields}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// HTTPCode returns the HTTP status code
func (e *ValidationError) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code
func (e *ValidationError) ErrorCode() string {
	return ErrValidationFailed.ErrorCode()
}

// Message returns the user-facing error message
func (e *ValidationError) Message() string {
	return ErrValidationFailed.Message()
}

// Details returns the field messages joined into one line
func (e *ValidationError) Details() string {
	return strings.Join(e.Messages(), "; ")
}

// Fields returns the rejected fields in rule order
func (e *ValidationError) Fields() []FieldError {
	return e.fields
}

// Messages returns the field messages in rule order
func (e *ValidationError) Messages() []string {
	messages := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		messages = append(messages, f.Message)
	}

	return messages
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error, so callers can still match timeouts.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "INTERNAL_ERROR"
}

// Message returns the user-facing error message
func (e *DatabaseExecuteError) Message() string {
	return GenericInternalMessage
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
