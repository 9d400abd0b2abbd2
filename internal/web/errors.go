package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request ID, and
// answered with the JSON envelope {error, message, action, code}. The status
// comes from catalog.StatusOf; the user-facing text from catalog.MapError.

import (
	"errors"
	"net/http"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/core"
	"github.com/gst-aqn42/TP1/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusOf extends catalog.StatusOf with errors owned by the server.
func statusOf(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	}
	return catalog.StatusOf(err)
}

// respondError logs err and writes its JSON envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	userMsg := catalog.MapError(err)

	log := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", userMsg.Code,
		"error", err.Error(),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request error")
	} else {
		log.Warn("request rejected")
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, ErrorResponse{
		Error:   errorText(err, status),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// errorText is the short error string of the envelope. Internal failures
// never leak their cause.
func errorText(err error, status int) string {
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		return http.StatusText(status)
	}
	return err.Error()
}

// writeError writes a JSON error for failures detected by the server itself.
func writeError(w http.ResponseWriter, status int, message string) {
	userMsg := catalog.MapError(errors.New(message))
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
