// Package httputil writes the local API's JSON envelopes and maps local and
// upstream errors onto them.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/No25ha/Market/pkg/errors"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/logger"
	"github.com/No25ha/Market/pkg/validator"
)

// Response is the standard JSON response envelope of the local API.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes data wrapped in the standard envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// WriteError maps err to a status and error envelope:
//   - *validator.ValidationError: 400 with per-field messages
//   - *apperrors.AppError: its own status, code and message
//   - *httpclient.APIError: the upstream's 4xx status, or 502 (503 while the
//     circuit is open) for 5xx and unanswered calls, with the normalized
//     upstream message
//   - anything else: 500 with a generic message
//
// The request-scoped logger is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   "request validation failed",
			Fields:    valErr.Fields(),
			RequestID: requestID,
		}})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteJSON(w, appErr.Status, Response{Error: &ErrorResponse{
			Code:      appErr.Code,
			Message:   appErr.Message,
			RequestID: requestID,
		}})
		return
	}

	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		status, code := upstreamStatus(apiErr)
		if status >= http.StatusInternalServerError {
			l.WarnContext(r.Context(), "upstream failure",
				slog.String("error", apiErr.Error()),
				slog.Int("upstream_status", apiErr.Status),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		WriteJSON(w, status, Response{Error: &ErrorResponse{
			Code:      code,
			Message:   apiErr.Error(),
			RequestID: requestID,
		}})
		return
	}

	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	WriteJSON(w, http.StatusInternalServerError, Response{Error: &ErrorResponse{
		Code:      "INTERNAL_ERROR",
		Message:   "an internal error occurred",
		RequestID: requestID,
	}})
}

func upstreamStatus(e *httpclient.APIError) (int, string) {
	switch {
	case errors.Is(e, httpclient.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"
	case e.Status == http.StatusUnauthorized:
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case e.Status == http.StatusNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case e.Status == http.StatusConflict:
		return http.StatusConflict, "CONFLICT"
	case e.Status >= 400 && e.Status < 500:
		return e.Status, "UPSTREAM_REJECTED"
	case e.HasResponse():
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	default:
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	}
}
