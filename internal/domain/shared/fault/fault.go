package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can map it onto their transport.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindForbidden        Kind = "FORBIDDEN"
	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindConflict         Kind = "CONFLICT"
	KindLimitExceeded    Kind = "LIMIT_EXCEEDED"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
)

// Fault is a structured error carrying a kind, a human-readable message and
// an optional field-to-message mapping so clients can present actionable
// feedback (e.g. which date boundary conflicted).
type Fault struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	cause   error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.cause }

// WithField attaches a field-level message and returns the fault.
func (f *Fault) WithField(field, message string) *Fault {
	if f.Fields == nil {
		f.Fields = make(map[string]string)
	}
	f.Fields[field] = message
	return f
}

func NotFound(message string) *Fault {
	return &Fault{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Fault {
	return &Fault{Kind: KindForbidden, Message: message}
}

func Validation(message string) *Fault {
	return &Fault{Kind: KindValidationFailed, Message: message}
}

func Conflict(message string) *Fault {
	return &Fault{Kind: KindConflict, Message: message}
}

func LimitExceeded(message string) *Fault {
	return &Fault{Kind: KindLimitExceeded, Message: message}
}

// StoreUnavailable wraps an infrastructure failure. The cause is preserved
// for logging but never exposed to clients.
func StoreUnavailable(cause error) *Fault {
	return &Fault{Kind: KindStoreUnavailable, Message: "storage unavailable", cause: cause}
}

// KindOf extracts the fault kind from err, or "" when err carries no fault.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// FieldsOf returns the field mapping from err when present.
func FieldsOf(err error) map[string]string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Fields
	}
	return nil
}

// Is reports whether err is a fault of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
