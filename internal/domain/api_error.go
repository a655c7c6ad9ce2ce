package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the storefront backend.
// It is always returned wrapped in an *Error whose Code is derived from Status,
// so callers branch on ErrorCode and only reach for APIError when they need
// the raw status or details.
type APIError struct {
	Status  int
	Code    string // backend-specific code, if the body carried one
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s (code: %s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// CodeForStatus maps an HTTP status from the backend to an error code.
func CodeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return EINVALID
	case status == http.StatusUnauthorized:
		return EUNAUTHORIZED
	case status == http.StatusPaymentRequired:
		return EPAYMENT
	case status == http.StatusForbidden:
		return EFORBIDDEN
	case status == http.StatusNotFound:
		return ENOTFOUND
	case status == http.StatusConflict:
		return ECONFLICT
	case status == http.StatusGone:
		return EGONE
	case status == http.StatusTooManyRequests:
		return ERATELIMIT
	case status == http.StatusNotImplemented:
		return ENOTIMPL
	default:
		return EINTERNAL
	}
}

// NewAPIError wraps a backend error response in a domain error.
// The backend message is kept as the user-facing message, including for 5xx
// responses, since it is already meant for display.
func NewAPIError(op string, apiErr *APIError) error {
	code := CodeForStatus(apiErr.Status)
	if code == EINTERNAL {
		// ErrorMessage hides EINTERNAL text; backend failures are reported verbatim.
		code = EUPSTREAM
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: apiErr.Message,
		Err:     apiErr,
	}
}

// AsAPIError extracts the backend response error, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
