package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SendError writes err using the standard envelope. Non-ledger errors are
// reported as a generic server error.
func SendError(c echo.Context, err error) error {
	var le *LedgerError
	if !errors.As(err, &le) {
		return SendServerError(c, "operation could not be completed")
	}
	var details map[string]string
	if le.Field != "" {
		details = map[string]string{le.Field: le.Message}
	}
	return c.JSON(StatusFor(le.Kind), CreateErrorResponse(string(le.Kind), le.Message, details))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse(string(KindInternal), message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse(string(KindNotFound), fmt.Sprintf("%s not found", resource), nil))
}
