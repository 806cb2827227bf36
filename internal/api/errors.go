// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/th2-export/backend/internal/export"
	"github.com/th2-export/backend/internal/parser"
	"github.com/th2-export/backend/internal/storage"
)

// ShowErrorDetails controls whether unexpected errors expose their message.
var ShowErrorDetails = false

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewUnsupportedFormatError creates a 415 error for inputs no decoder accepts
func NewUnsupportedFormatError(cause error) *APIError {
	err := &APIError{
		Status:  http.StatusUnsupportedMediaType,
		Code:    "UNSUPPORTED_FORMAT",
		Message: "unsupported project format",
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewUnprocessableError creates a 422 error for projects that decode but
// cannot be exported
func NewUnprocessableError(code, message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    code,
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// exportError maps a core export failure to its API form.
func exportError(err error) *APIError {
	switch {
	case errors.Is(err, export.ErrInvalidTree):
		return NewUnprocessableError("INVALID_TREE", "invalid project tree", err)
	case errors.Is(err, export.ErrGeometry):
		return NewUnprocessableError("GEOMETRY_ERROR", "coordinate is not finite", err)
	default:
		return NewInternalError("export failed", err)
	}
}

// decoderError maps a registry lookup failure.
func decoderError(err error) *APIError {
	if errors.Is(err, parser.ErrUnsupportedFormat) {
		return NewUnsupportedFormatError(err)
	}
	return NewInternalError("no decoder available", err)
}

// storeError maps a storage failure on an existing export id.
func storeError(err error, id string) *APIError {
	if errors.Is(err, storage.ErrNotFound) {
		return NewNotFoundError("export", id)
	}
	return NewInternalError("storage failure", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
		if ShowErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	if apiErr.Status >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	c.JSON(apiErr.Status, apiErr)
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
