package cdo

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed CDO request.
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindUnavailable     ErrorKind = "unavailable"
)

// APIError represents an error from the CDO API
type APIError struct {
	Kind     ErrorKind
	Endpoint string
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("CDO API error (%s %s): %s: %v", e.Kind, e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("CDO API error (%s %s): %s", e.Kind, e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new CDO API error
func NewAPIError(kind ErrorKind, endpoint, message string, err error) *APIError {
	return &APIError{
		Kind:     kind,
		Endpoint: endpoint,
		Message:  message,
		Err:      err,
	}
}

// KindOf returns the kind of the first APIError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}
