// internal/webhook/errors.go
package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "loan-origination/internal/common/errors"
)

// TimeoutError means the outcome is unknown. Retrying with a fresh request id
// is safe.
type TimeoutError struct {
	Endpoint  string
	RequestID string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("webhook %s timed out after %s (request %s)", e.Endpoint, e.Timeout, e.RequestID)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// StatusError is a non-2xx reply. Retrying the same payload will not help.
type StatusError struct {
	Endpoint   string
	RequestID  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook %s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// DecodeError is a 2xx reply whose body is not JSON.
type DecodeError struct {
	Endpoint  string
	RequestID string
	Body      string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("webhook %s returned a non-JSON body: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a gateway timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// ToStandardError classifies a gateway error for API responses and job
// workers. Anything that is not one of the gateway's own types is treated as
// a transport failure.
func ToStandardError(endpoint string, err error) *apperrors.StandardError {
	if err == nil {
		return nil
	}

	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	var te *TimeoutError
	var se *StatusError
	var de *DecodeError
	switch {
	case errors.As(err, &te):
		return apperrors.NewWebhookTimeoutError(endpoint, err).WithMetadata("requestId", te.RequestID)
	case errors.As(err, &se):
		return apperrors.NewWebhookStatusError(endpoint, se.StatusCode, se.Body, err).WithMetadata("requestId", se.RequestID)
	case errors.As(err, &de):
		return apperrors.NewWebhookResponseError(endpoint, err).WithMetadata("requestId", de.RequestID)
	default:
		return apperrors.NewWebhookTransportError(endpoint, err)
	}
}
