package middleware

import (
	"log/slog"
	"net/http"

	"authgate/internal/delivery/api/response"
	deliverycontext "authgate/internal/delivery/context"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError renders every error returned by a handler as the JSON error envelope.
// Only 400 responses carry field messages; 5xx responses always carry the generic message.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if vErr, ok := errors.Find[*domainerrors.ValidationError](err); ok {
		_ = response.ValidationFailed(c, vErr.ErrorCode(), vErr.Message(), vErr.Messages())

		return
	}

	if appErr, ok := errors.Find[domainerrors.AppError](err); ok {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logUnexpected(c, err)
			_ = response.InternalServerError(c, appErr.ErrorCode(), domainerrors.GenericInternalMessage)

			return
		}

		_ = response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), nil)

		return
	}

	if httpErr, ok := errors.Find[*echo.HTTPError](err); ok {
		m.handleEchoError(c, err, httpErr)

		return
	}

	m.logUnexpected(c, err)
	_ = response.InternalServerError(c, domainerrors.ErrInternalError.ErrorCode(), domainerrors.GenericInternalMessage)
}

func (m *ErrorMiddleware) handleEchoError(c echo.Context, err error, httpErr *echo.HTTPError) {
	switch {
	case httpErr.Code == http.StatusNotFound:
		_ = response.Error(c, http.StatusNotFound, domainerrors.ErrRouteNotFound.ErrorCode(), domainerrors.ErrRouteNotFound.Message(), nil)
	case httpErr.Code >= http.StatusInternalServerError:
		m.logUnexpected(c, err)
		_ = response.InternalServerError(c, domainerrors.ErrInternalError.ErrorCode(), domainerrors.GenericInternalMessage)
	default:
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		}

		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, nil)
	}
}

func (m *ErrorMiddleware) logUnexpected(c echo.Context, err error) {
	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
	logger.Error("Unhandled error",
		slog.String("error", err.Error()),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)
}
