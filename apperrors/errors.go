package apperrors

import (
	"fmt"
	"net/http"
)

// Error codes shared across the API surface.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeAccessDenied = "ACCESS_DENIED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// Error is a single failure reported to API callers. Field names the
// request field or entity attribute the failure is tagged with.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NotFound(resource, field string) Error {
	return Error{Code: CodeNotFound, Message: resource + " not found", Field: field}
}

func NotFoundByID(resource string, id fmt.Stringer) Error {
	return Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID '%s' not found", resource, id),
		Field:   "Id",
	}
}

func Validation(message, field string) Error {
	return Error{Code: CodeValidation, Message: message, Field: field}
}

func Unauthorized(message string) Error {
	return Error{Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) Error {
	return Error{Code: CodeForbidden, Message: message}
}

func AccessDenied(message string) Error {
	return Error{Code: CodeAccessDenied, Message: message}
}

func Conflict(message, field string) Error {
	return Error{Code: CodeConflict, Message: message, Field: field}
}

func Internal(message string) Error {
	return Error{Code: CodeInternal, Message: message}
}

// HTTPStatus maps a failure list to a response status. The first error
// decides; accumulated validation lists stay a single 400.
func HTTPStatus(errs []Error) int {
	if len(errs) == 0 {
		return http.StatusInternalServerError
	}
	switch errs[0].Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeAccessDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
