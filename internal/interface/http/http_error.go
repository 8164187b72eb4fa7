package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/smart-energy/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomain maps a service error to a response using its application code.
// Failures without a known code fall back to 500 with fallbackCode.
func fromDomain(err error, fallbackCode string) *HTTPError {
	status, code := http.StatusInternalServerError, fallbackCode
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		status, code = http.StatusBadRequest, "invalid_request"
	case apperrors.CodeNotFound:
		status, code = http.StatusNotFound, "not_found"
	case apperrors.CodeStorage:
		status, code = http.StatusServiceUnavailable, "storage_unavailable"
	case apperrors.CodeExport:
		status, code = http.StatusBadGateway, "export_failed"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
