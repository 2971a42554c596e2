package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mobile_usage_tracker/internal/app"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeErrorMessage writes a JSON error response with a custom message
func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Rejection categories reported to metrics.
const (
	categoryNotFound     = "not_found"
	categoryConflict     = "conflict"
	categoryInvalidInput = "invalid_input"
	categoryBusy         = "busy"
)

// statusFor maps a service error to an HTTP status and rejection category.
// An empty category means the error is a server failure.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound, categoryNotFound
	case errors.Is(err, app.ErrConflict):
		return http.StatusConflict, categoryConflict
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusConflict, categoryInvalidInput
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, categoryBusy
	default:
		return http.StatusInternalServerError, ""
	}
}

// writeServiceError answers with the status for err. Server failures are
// logged and their detail is not sent to the client.
func (h *handlers) writeServiceError(w http.ResponseWriter, operation string, err error) {
	status, category := statusFor(err)
	if category == "" {
		h.logger.WithError(err).WithField("operation", operation).Error("Operation failed")
		writeErrorMessage(w, status, "internal server error")
		return
	}
	if h.metrics != nil {
		h.metrics.RecordRejection(operation, category)
	}
	if category == categoryBusy {
		writeErrorMessage(w, status, "subscriber is busy, retry later")
		return
	}
	writeErrorMessage(w, status, err.Error())
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
