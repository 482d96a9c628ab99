package web

// errors.go maps service errors to HTTP responses.
//
// The technical error is logged with the request ID. The client gets a
// status from statusFor and a body built from core.MapError. Dataset
// problems the operator can fix (bad columns, unreadable file) echo the
// underlying message; anything unexpected gets a generic one.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/carta/internal/core"
	"github.com/JonMunkholm/carta/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	var schemaErr *core.SchemaError
	var readErr *core.ReadError

	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &schemaErr), errors.As(err, &readErr), errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the matching JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)
	if status >= http.StatusInternalServerError {
		log.Error("request error")
	} else {
		log.Warn("request error")
	}

	resp := ErrorResponse{
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	switch status {
	case http.StatusBadRequest, http.StatusNotFound:
		resp.Error = err.Error()
	default:
		resp.Error = http.StatusText(status)
	}

	writeJSON(w, status, resp)
}
