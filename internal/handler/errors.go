// Package handler holds what every session API handler shares: the error
// code to status mapping and the JSON error renderer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/middleware"
	"github.com/labstack/echo/v4"
)

// codedError is implemented by package-level error types (shipping, storage)
// that carry a domain code without importing domain.
type codedError interface {
	error
	ErrorCode() string
	ErrorMessage() string
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var statusByCode = map[string]int{
	domain.EINVALID:      http.StatusBadRequest,
	domain.EUNAUTHORIZED: http.StatusUnauthorized,
	domain.EPAYMENT:      http.StatusPaymentRequired,
	domain.EFORBIDDEN:    http.StatusForbidden,
	domain.ENOTFOUND:     http.StatusNotFound,
	domain.ECONFLICT:     http.StatusConflict,
	domain.EGONE:         http.StatusGone,
	domain.ERATELIMIT:    http.StatusTooManyRequests,
	domain.EINTERNAL:     http.StatusInternalServerError,
	domain.ENOTIMPL:      http.StatusNotImplemented,
	domain.EUPSTREAM:     http.StatusBadGateway,
	domain.ENETWORK:      http.StatusServiceUnavailable,
}

// ErrorCodeToHTTPStatus maps a domain error code to its response status.
// Unknown codes are 500.
func ErrorCodeToHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// describe extracts code, user-facing message and field errors from err.
func describe(err error) errorDetail {
	if fields := domain.GetValidationFields(err); fields != nil {
		return errorDetail{
			Code:    domain.EINVALID,
			Message: "Please correct the highlighted fields",
			Fields:  fields,
		}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return errorDetail{Code: de.Code, Message: domain.ErrorMessage(err)}
	}

	var ce codedError
	if errors.As(err, &ce) {
		return errorDetail{Code: ce.ErrorCode(), Message: ce.ErrorMessage()}
	}

	return errorDetail{Code: domain.EINTERNAL, Message: domain.ErrorMessage(err)}
}

// ErrorResponse writes err as JSON, or as plain text when the client did not
// ask for JSON. Internal details are never sent.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	detail := describe(err)
	status := ErrorCodeToHTTPStatus(detail.Code)

	logError(r, err, detail.Code, status)

	if !acceptsJSON(r) {
		http.Error(w, detail.Message, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: detail})
}

// HTTPErrorHandler renders errors returned by echo handlers. Echo's own
// errors (unknown route, bad method, bind failures) keep their status.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		err = &domain.Error{Code: codeForStatus(he.Code), Message: msg, Err: he.Internal}
	}

	r := c.Request()
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	ErrorResponse(c.Response(), r, err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusMethodNotAllowed:
		return domain.ENOTFOUND
	case http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return domain.EINVALID
	}
	return domain.CodeForStatus(status)
}

func logError(r *http.Request, err error, code string, status int) {
	logger := middleware.GetLogger(r.Context())

	event := logger.Info()
	if status >= 500 {
		event = logger.Error()
	}
	event.
		Err(err).
		Str("code", code).
		Str("op", domain.ErrorOp(err)).
		Int("status", status).
		Msg("request error")
}

// acceptsJSON is true for anything under /api/ and for callers that speak
// JSON in either direction.
func acceptsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
