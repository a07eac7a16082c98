package agents

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDisabled            = errors.New("agent provider disabled")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrMissingAPIKey       = errors.New("api key required")
	ErrEmptyResponse       = errors.New("empty response from model")
	ErrInvalidOutput       = errors.New("model output failed validation")
	ErrMissingImage        = errors.New("image has neither data nor url")
)

// ErrorType classifies a provider failure.
type ErrorType string

const (
	ErrorTypeUnknown        ErrorType = "unknown"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeBadRequest     ErrorType = "bad_request"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeServerError    ErrorType = "server_error"
	ErrorTypeContentPolicy  ErrorType = "content_policy"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeTimeout        ErrorType = "timeout"
)

// ProviderError normalizes SDK errors from every provider.
type ProviderError struct {
	Type       ErrorType
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	base := e.Provider + " error"
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	base += fmt.Sprintf(" [%s]", e.Type)
	if e.Message != "" {
		base += ": " + e.Message
	}
	return base
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ClassifyHTTPError maps an upstream status code to a ProviderError.
func ClassifyHTTPError(provider string, status int, message string, err error) *ProviderError {
	t := ErrorTypeUnknown
	switch {
	case status == 401 || status == 403:
		t = ErrorTypeAuthentication
		message = provider + " authentication failed"
	case status == 429:
		t = ErrorTypeRateLimit
	case status == 404:
		t = ErrorTypeNotFound
	case status >= 400 && status < 500:
		t = ErrorTypeBadRequest
	case status >= 500:
		t = ErrorTypeServerError
	}

	return &ProviderError{
		Type:       t,
		Provider:   provider,
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}

func classifyContextError(provider string, err error) (*ProviderError, bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ProviderError{Type: ErrorTypeTimeout, Provider: provider, Message: "context deadline exceeded", Err: err}, true
	case errors.Is(err, context.Canceled):
		return &ProviderError{Type: ErrorTypeNetwork, Provider: provider, Message: "request canceled", Err: err}, true
	default:
		return nil, false
	}
}

func unknownError(provider string, err error) *ProviderError {
	return &ProviderError{
		Type:     ErrorTypeUnknown,
		Provider: provider,
		Message:  err.Error(),
		Err:      err,
	}
}
