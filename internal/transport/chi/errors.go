package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/searchsync/internal/domain"
)

// ErrorCode is a machine-readable API error code.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeModelNotFound    ErrorCode = "model_not_found"
	CodeDocumentNotFound ErrorCode = "document_not_found"
	CodeAlreadyExists    ErrorCode = "already_exists"
	CodeMalformedQuery   ErrorCode = "malformed_query"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

var errorHandlers = []errorHandler{
	malformedQueryHandler,
	sentinelHandler(domain.ErrModelNotFound, http.StatusNotFound, CodeModelNotFound),
	sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
	sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists),
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrModelNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrInvalidDocument,
		domain.ErrInvalidSchema,
		domain.ErrAlreadyExists,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// malformedQueryHandler reports a rejected query with the backend diagnostic.
func malformedQueryHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrMalformedQuery) {
		return false
	}
	var qe *domain.QueryError
	if errors.As(err, &qe) {
		writeError(w, http.StatusBadRequest, CodeMalformedQuery, qe.Err.Error())
		return true
	}
	writeError(w, http.StatusBadRequest, CodeMalformedQuery, err.Error())
	return true
}
