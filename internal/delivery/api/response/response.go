// Package response renders the JSON envelopes returned by the API.
package response

import (
	"net/http"

	deliverycontext "authgate/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data"`
	Meta   *MetaInfo `json:"meta"`
}

// ErrorResponse defines the structure for error responses
type ErrorResponse struct {
	Status  string    `json:"status"`
	Code    string    `json:"code"`             // Machine-readable error code, e.g., "VALIDATION_FAILED"
	Message string    `json:"message"`          // User-friendly error message
	Errors  []string  `json:"errors,omitempty"` // Field messages, 400 only
	Meta    *MetaInfo `json:"meta"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID string `json:"request_id"` // Request tracking ID
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{
		Status: StatusSuccess,
		Data:   data,
		Meta:   meta(c),
	})
}

// Error returns an error response. Field messages are dropped for anything but a 400.
func Error(c echo.Context, statusCode int, errorCode string, message string, fieldErrors []string) error {
	if statusCode != http.StatusBadRequest {
		fieldErrors = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Status:  StatusError,
		Code:    errorCode,
		Message: message,
		Errors:  fieldErrors,
		Meta:    meta(c),
	})
}

// ValidationFailed returns a 400 listing every rejected field
func ValidationFailed(c echo.Context, errorCode string, message string, fieldErrors []string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, fieldErrors)
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, nil)
}
