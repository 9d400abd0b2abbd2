package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the service, the HTTP layer and the client.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrImportInProgress = errors.New("import already in progress")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden: admin required")
	ErrInvalidLogin     = errors.New("invalid credentials")
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Required returns a ValidationError for an empty mandatory field.
func Required(field string) ValidationError {
	return ValidationError{Field: field, Message: "required field is empty"}
}

// ConsistencyError reports a dangling parent reference: an Article whose
// Edition is gone, or an Edition whose Event is gone.
type ConsistencyError struct {
	Entity string // "event" or "edition"
	ID     string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s %s: dangling reference", e.Entity, e.ID)
}

func (e *ConsistencyError) Unwrap() error { return ErrNotFound }

// RemoteError is a failure of a call to the remote catalog service, either a
// transport failure (Status == 0) or a non-2xx response.
type RemoteError struct {
	Op      string // e.g. "POST /eventos"
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	var msg string
	switch {
	case e.Status == 0:
		msg = e.Op
	case e.Message != "":
		msg = fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
	default:
		msg = fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the transport error, or the sentinel matching the status.
func (e *RemoteError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// IsConsistency reports whether the remote rejected the call because a
// referenced parent no longer exists.
func (e *RemoteError) IsConsistency() bool {
	return e.Status == http.StatusNotFound || e.Status == http.StatusConflict
}

// StatusOf maps an error to the HTTP status the service answers with.
func StatusOf(err error) int {
	var ve ValidationError
	var re *RemoteError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &re) && re.Status != 0:
		return re.Status
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidLogin):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
