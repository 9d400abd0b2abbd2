package catalog

// # Error Codes Reference
//
// User-facing errors carry a code so administrators can quote it when
// reporting a problem. Codes are grouped by category:
//
//	CAT001-CAT099   catalog records (missing, conflicting, dangling)
//	VAL001-VAL099   field validation
//	IMP001-IMP099   batch import
//	FILE001-FILE099 uploaded files
//	AUTH001-AUTH099 login and authorization
//	NET001-NET099   connectivity and timeouts
//	DB001-DB099     storage constraints
//	RATE001-RATE002 throttling
//	ERR000          fallback; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Catalog records (CAT001-CAT007)
	// =========================================================================
	{
		pattern: "dangling reference",
		msg: UserMessage{
			Message: "The parent record no longer exists",
			Action:  "Refresh the list; the event or edition was removed",
			Code:    "CAT005",
		},
	},
	{
		pattern: "has editions",
		msg: UserMessage{
			Message: "This event still has editions",
			Action:  "Delete its editions first",
			Code:    "CAT003",
		},
	},
	{
		pattern: "has articles",
		msg: UserMessage{
			Message: "This edition still has articles",
			Action:  "Delete its articles first",
			Code:    "CAT004",
		},
	},
	{
		pattern: "already exists",
		msg: UserMessage{
			Message: "A record with the same key already exists",
			Action:  "Use a different code or year",
			Code:    "CAT002",
		},
	},
	{
		pattern: "already subscribed",
		msg: UserMessage{
			Message: "This address already follows this author",
			Action:  "Keep the existing subscription or cancel it first",
			Code:    "CAT007",
		},
	},
	{
		pattern: "no pdf attached",
		msg: UserMessage{
			Message: "This article has no PDF",
			Action:  "Upload a PDF for the article first",
			Code:    "CAT006",
		},
	},

	// =========================================================================
	// Import (IMP001-IMP002)
	// =========================================================================
	{
		pattern: "import already in progress",
		msg: UserMessage{
			Message: "Another import is already running",
			Action:  "Wait for it to finish before starting a new one",
			Code:    "IMP001",
		},
	},
	{
		pattern: "malformed-entry",
		msg: UserMessage{
			Message: "The bibliographic entry could not be read",
			Action:  "Check that it has title, author, year and venue",
			Code:    "IMP002",
		},
	},

	// =========================================================================
	// Validation (VAL001-VAL004)
	// =========================================================================
	{
		pattern: "invalid year",
		msg: UserMessage{
			Message: "Year must be a 4-digit number between 1900 and 2100",
			Action:  "Correct the year and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid email",
		msg: UserMessage{
			Message: "The email address is not valid",
			Action:  "Check the address and try again",
			Code:    "VAL002",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Fill in all required fields",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid json",
		msg: UserMessage{
			Message: "The request body is not valid",
			Action:  "Send a JSON object with the expected fields",
			Code:    "VAL004",
		},
	},

	// =========================================================================
	// Files (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Upload a smaller file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "not a pdf",
		msg: UserMessage{
			Message: "Only PDF files are accepted",
			Action:  "Select a .pdf file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "not a bibtex file",
		msg: UserMessage{
			Message: "Only BibTeX files are accepted",
			Action:  "Select a .bib file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with at least one entry",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Auth (AUTH001-AUTH003)
	// =========================================================================
	{
		pattern: "invalid credentials",
		msg: UserMessage{
			Message: "Username or password is incorrect",
			Action:  "Check your credentials and log in again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "admin required",
		msg: UserMessage{
			Message: "This action requires an administrator",
			Action:  "Log in with an administrator account",
			Code:    "AUTH003",
		},
	},
	{
		pattern: "unauthorized",
		msg: UserMessage{
			Message: "You are not logged in or your session expired",
			Action:  "Log in again",
			Code:    "AUTH002",
		},
	},

	// =========================================================================
	// Storage constraints (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Refresh the list and check for duplicates",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Create the parent record first",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Connectivity (NET001-NET004)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the catalog service",
			Action:  "Please try again in a few moments",
			Code:    "NET001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The connection was interrupted",
			Action:  "Please try again",
			Code:    "NET002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "NET004",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again later or with a smaller file",
			Code:    "NET003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again later or with a smaller file",
			Code:    "NET003",
		},
	},

	// =========================================================================
	// Generic lookups and throttling
	// =========================================================================
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "The requested record no longer exists",
			Action:  "Refresh the list and try again",
			Code:    "CAT001",
		},
	},
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "The server is busy processing other uploads",
			Action:  "Please try again in a few seconds",
			Code:    "RATE002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
