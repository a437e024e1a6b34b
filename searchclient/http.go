package searchclient

import (
	"encoding/json"
	"net/http"
)

// errorResponse covers both error body shapes the search API produces.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// mapStatusToError maps an HTTP status code to the appropriate error type.
// The body may carry a JSON message which is preferred over the default text.
func mapStatusToError(statusCode int, body []byte) error {
	var errResp errorResponse
	message := ""
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error != "" {
			message = errResp.Error
		} else if errResp.Message != "" {
			message = errResp.Message
		}
	}

	if message == "" {
		switch {
		case statusCode == http.StatusBadRequest:
			message = "bad request"
		case statusCode == http.StatusNotFound:
			message = "no products found"
		case statusCode >= 500:
			message = "server error"
		default:
			message = "unexpected status " + http.StatusText(statusCode)
		}
	}

	baseErr := APIError{
		Message:    message,
		StatusCode: statusCode,
	}

	switch {
	case statusCode == http.StatusBadRequest:
		return &ValidationError{APIError: baseErr}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: baseErr}
	case statusCode >= 500:
		return &ServerError{APIError: baseErr}
	default:
		return &baseErr
	}
}
