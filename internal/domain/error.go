package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. Each maps to one HTTP status in the session API and to one
// branch of the client's error taxonomy.
const (
	EINVALID      = "invalid"          // 400, bad input caught locally or by the backend
	EUNAUTHORIZED = "unauthorized"     // 401, missing or expired token
	EPAYMENT      = "payment_required" // 402, card declined or payment SDK failure
	EFORBIDDEN    = "forbidden"        // 403
	ENOTFOUND     = "not_found"        // 404
	ECONFLICT     = "conflict"         // 409
	EGONE         = "gone"             // 410
	ERATELIMIT    = "rate_limit"       // 429
	EINTERNAL     = "internal"         // 500, details never shown
	ENOTIMPL      = "not_implemented"  // 501
	EUPSTREAM     = "upstream"         // 502, backend answered 5xx
	ENETWORK      = "network"          // 503, backend never answered
)

const internalMessage = "An internal error occurred. Please try again later."

// Error is a coded error. Message is safe to show; Op and Err are for logs.
type Error struct {
	Code    string
	Message string
	Op      string // e.g. "cart.update"
	Err     error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, e.Message)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ErrorCode returns the code carried by err. Errors without one count as
// EINTERNAL; nil has no code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the text a user may see for err. Internal and
// uncoded errors collapse to a generic sentence.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok && e.Code != EINTERNAL {
		return e.Message
	}
	return internalMessage
}

// ErrorOp returns the operation recorded on err, for logging.
func ErrorOp(err error) string {
	if e, ok := asError(err); ok {
		return e.Op
	}
	return ""
}

// IsCode reports whether err carries code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// Errorf builds an Error with a formatted message.
func Errorf(code, op, format string, args ...any) error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches code, op and message to err. A nil err stays nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

func NotFound(op, resource, id string) error {
	return Errorf(ENOTFOUND, op, "%s not found: %s", resource, id)
}

func Unauthorized(op, message string) error {
	return &Error{Code: EUNAUTHORIZED, Op: op, Message: message}
}

func Forbidden(op, message string) error {
	return &Error{Code: EFORBIDDEN, Op: op, Message: message}
}

func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

func Conflict(op, message string) error {
	return &Error{Code: ECONFLICT, Op: op, Message: message}
}

// Internal wraps err as EINTERNAL. message is logged, never shown.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}

// Network marks a request that never reached the backend.
func Network(err error, op string) error {
	return &Error{
		Code:    ENETWORK,
		Op:      op,
		Message: "Unable to reach the server. Check your connection and try again.",
		Err:     err,
	}
}

// IsAuthError reports whether the caller must sign in again or lacks
// permission.
func IsAuthError(err error) bool {
	switch ErrorCode(err) {
	case EUNAUTHORIZED, EFORBIDDEN:
		return true
	}
	return false
}

// IsRetryable reports whether repeating the same request may succeed.
func IsRetryable(err error) bool {
	switch ErrorCode(err) {
	case ENETWORK, ERATELIMIT:
		return true
	}
	return false
}

// ValidationError collects per-field messages from form checks. It is kept
// apart from Error so callers can render fields next to their inputs.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var msg string
	if len(e.Fields) == 1 {
		for field, text := range e.Fields {
			msg = field + ": " + text
		}
	} else {
		msg = fmt.Sprintf("validation failed for %d fields", len(e.Fields))
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func NewValidationError(op, field, message string) error {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// AddFieldError records another field failure on err, starting a new
// ValidationError when err is not one.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return &ValidationError{Fields: map[string]string{field: message}}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the field map of a ValidationError, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
