package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsUnauthorized reports whether err is an HTTP 401 from the API
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

func newHTTPError(statusCode int, body []byte) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    errorMessage(statusCode, body),
		Body:       body,
	}
}

// errorMessage extracts a readable message from an error body.
// The backend answers {"detail": "..."} or, for validation failures,
// {"detail": [{"msg": "..."}]}; other services use {"error": "..."}.
func errorMessage(statusCode int, body []byte) string {
	var apiErr struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if len(apiErr.Detail) > 0 {
			var detail string
			if json.Unmarshal(apiErr.Detail, &detail) == nil && detail != "" {
				return detail
			}

			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(apiErr.Detail, &items) == nil && len(items) > 0 {
				msgs := make([]string, 0, len(items))
				for _, item := range items {
					msgs = append(msgs, item.Msg)
				}
				return strings.Join(msgs, "; ")
			}
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(statusCode)
}
