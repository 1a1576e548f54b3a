package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Pankajjr12/snapnest-api/internal/service"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// Error sends a JSON error response.
func Error(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// mapServiceError translates a service error into an HTTP response. Anything
// that is not a ServiceError is reported as an internal failure.
func mapServiceError(c echo.Context, err error) error {
	var se *service.ServiceError
	if !errors.As(err, &se) {
		slog.ErrorContext(c.Request().Context(), "unmapped handler error", "error", err)
		return Error(c, http.StatusInternalServerError, "INTERNAL", service.MessageInternal)
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(se, service.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(se, service.ErrConflict):
		// Account field conflicts are input errors; the rest are state conflicts.
		status = http.StatusConflict
		if se.Field != "" {
			status = http.StatusBadRequest
		}
	case errors.Is(se, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(se, service.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		return Error(c, status, "INTERNAL", service.MessageInternal)
	}
	return Error(c, status, se.Code, se.Message)
}
