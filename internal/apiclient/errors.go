package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dukerupert/adorn/internal/domain"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// errorBody is the backend's error shape. Some endpoints nest it under "error".
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
	Errors  json.RawMessage `json:"errors"`
}

// decodeAPIError reads a non-2xx response. The message falls back to
// "HTTP <status>" when the body has none or is not JSON.
func decodeAPIError(resp *http.Response) *domain.APIError {
	apiErr := &domain.APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	apiErr.Code = body.Code
	switch {
	case strings.TrimSpace(body.Message) != "":
		apiErr.Message = body.Message
	case len(body.Error) > 0:
		// {"error": "text"} or {"error": {"message": "text", "code": "..."}}
		var s string
		if json.Unmarshal(body.Error, &s) == nil && s != "" {
			apiErr.Message = s
		} else {
			var nested struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			}
			if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
				apiErr.Message = nested.Message
				if apiErr.Code == "" {
					apiErr.Code = nested.Code
				}
			}
		}
	}

	switch {
	case len(body.Details) > 0:
		apiErr.Details = body.Details
	case len(body.Errors) > 0:
		apiErr.Details = body.Errors
	}
	return apiErr
}
