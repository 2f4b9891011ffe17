package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/janseva/constituency-admin/internal/middleware"
	"github.com/janseva/constituency-admin/internal/rbac"
)

const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeAuthRequired     = "AUTHENTICATION_REQUIRED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInternalError    = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// additional error context
type ErrorContext map[string]interface{}

type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
	Context ErrorContext  `json:"context,omitempty"`
}

// Error is the envelope every failed request returns.
type Error struct {
	Error ErrorBody `json:"error"`
}

// builder pattern
type ErrorBuilder struct {
	Code    string
	Message string
	Details []ErrorDetail
	Context ErrorContext
}

func NewError(code, message string) *ErrorBuilder {
	return &ErrorBuilder{Code: code, Message: message}
}

func (e *ErrorBuilder) WithDetails(details []ErrorDetail) *ErrorBuilder {
	e.Details = details
	return e
}

func (e *ErrorBuilder) WithContext(context ErrorContext) *ErrorBuilder {
	e.Context = context
	return e
}

func (e *ErrorBuilder) Create() Error {
	return Error{Error: ErrorBody{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Context: e.Context,
	}}
}

// Write sends the error with its status code.
func (e *ErrorBuilder) Write(w http.ResponseWriter, status int) {
	writeJSON(w, status, e.Create())
}

// builder pattern extensions

func Unauthorized(msg string) *ErrorBuilder {
	return NewError(CodeAuthRequired, msg)
}

func PermissionDenied(msg string) *ErrorBuilder {
	return NewError(CodePermissionDenied, msg)
}

func NotFound(resource string) *ErrorBuilder {
	return NewError(CodeResourceNotFound, resource+" not found")
}

func ValidationErr(msg string, details []ErrorDetail) *ErrorBuilder {
	return NewError(CodeValidationError, msg).WithDetails(details)
}

func InternalError(msg string) *ErrorBuilder {
	return NewError(CodeInternalError, msg)
}

func ConflictErr(msg string) *ErrorBuilder {
	return NewError(CodeConflict, msg)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps a service error to its response. Anything that is not a
// known domain error is logged and answered 500.
func writeError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	logger := middleware.GetLoggerFromContext(r.Context())

	switch {
	case errors.Is(err, rbac.ErrNotFound):
		NotFound(resource).Write(w, http.StatusNotFound)
	case errors.Is(err, rbac.ErrValidation):
		ValidationErr(clientMessage(err, rbac.ErrValidation), nil).Write(w, http.StatusBadRequest)
	case errors.Is(err, rbac.ErrConflict):
		ConflictErr(clientMessage(err, rbac.ErrConflict)).Write(w, http.StatusConflict)
	case errors.Is(err, rbac.ErrForbidden):
		PermissionDenied(clientMessage(err, rbac.ErrForbidden)).Write(w, http.StatusForbidden)
	case errors.Is(err, rbac.ErrConfiguration):
		logger.Error("configuration error", "resource", resource, "error", err)
		InternalError("Server misconfiguration.").Write(w, http.StatusInternalServerError)
	default:
		logger.Error("request failed", "resource", resource, "error", err)
		InternalError("An unexpected error occurred.").Write(w, http.StatusInternalServerError)
	}
}

// clientMessage drops the sentinel prefix so "rbac: conflict: role x exists"
// reads "role x exists".
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}
