package predictor

import (
	"encoding/json"
	"io"
	"net/http"
)

// ErrorType represents different types of prediction API errors
type ErrorType int

const (
	ErrorUnknown ErrorType = iota
	ErrorRateLimited
	ErrorUnauthorized
	ErrorBadRequest
	ErrorModelNotFound
	ErrorServerError
)

// APIError represents a prediction API error with additional context
type APIError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	return e.Message
}

// openAIErrorResponse is the error envelope OpenAI-compatible endpoints return.
type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ClassifyError determines the type of error from an HTTP response
func ClassifyError(resp *http.Response) *APIError {
	if resp == nil {
		return &APIError{
			Type:      ErrorUnknown,
			Message:   "nil response",
			Retryable: false,
		}
	}

	var upstream openAIErrorResponse
	if resp.Body != nil {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err == nil {
			_ = json.Unmarshal(bodyBytes, &upstream)
		}
		// Note: Body is already read, caller should not try to read it again
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Type:       ErrorUnknown,
		Retryable:  false,
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		apiErr.Type = ErrorRateLimited
		apiErr.Message = "rate limited by prediction API"
		apiErr.Retryable = true

	case http.StatusUnauthorized, http.StatusForbidden:
		apiErr.Type = ErrorUnauthorized
		apiErr.Message = "unauthorized - check the API key"
		apiErr.Retryable = false

	case http.StatusNotFound:
		apiErr.Type = ErrorModelNotFound
		apiErr.Message = "model or endpoint not found (404)"
		apiErr.Retryable = false

	case http.StatusBadRequest:
		apiErr.Type = ErrorBadRequest
		apiErr.Message = "bad request (400)"
		apiErr.Retryable = false

	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		apiErr.Type = ErrorServerError
		apiErr.Message = "prediction API server error (5xx)"
		apiErr.Retryable = true

	default:
		if resp.StatusCode >= 500 {
			apiErr.Type = ErrorServerError
			apiErr.Message = "server error"
			apiErr.Retryable = true
		} else if resp.StatusCode >= 400 {
			apiErr.Type = ErrorBadRequest
			apiErr.Message = "client error"
			apiErr.Retryable = false
		}
	}

	if upstream.Error.Message != "" {
		apiErr.Message += ": " + upstream.Error.Message
	} else if upstream.Error.Code != "" {
		apiErr.Message += ": " + upstream.Error.Code
	}

	return apiErr
}

// IsRetryable checks if an error should be retried
func IsRetryable(err *APIError) bool {
	return err != nil && err.Retryable
}
