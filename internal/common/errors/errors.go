// Package errors provides the structured error model shared by the API, the
// submission path and the workflow job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	ErrCodeDataFetchFailed     ErrorCode = "DATA_FETCH_FAILED"
	ErrCodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeStatusUpdateFailed  ErrorCode = "STATUS_UPDATE_FAILED"
	ErrCodeStatusNotAllowed    ErrorCode = "STATUS_UPDATE_NOT_ALLOWED"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeFormIncomplete   ErrorCode = "FORM_INCOMPLETE"

	ErrCodeWebhookTimeout    ErrorCode = "WEBHOOK_TIMEOUT"
	ErrCodeWebhookHTTPStatus ErrorCode = "WEBHOOK_HTTP_STATUS"
	ErrCodeWebhookTransport  ErrorCode = "WEBHOOK_TRANSPORT"
	ErrCodeWebhookResponse   ErrorCode = "WEBHOOK_INVALID_RESPONSE"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigurationError is fatal for the component it describes.
func NewConfigurationError(details string) *StandardError {
	return newError(ErrCodeConfigurationInvalid, "Invalid configuration", details, false, nil)
}

// NewDataFetchFailedError wraps a failed read of the primary entity.
func NewDataFetchFailedError(table string, err error) *StandardError {
	return newError(ErrCodeDataFetchFailed, "Failed to load data",
		fmt.Sprintf("table: %s, error: %v", table, err), true, err)
}

func NewApplicationNotFoundError(applicationID string) *StandardError {
	return newError(ErrCodeApplicationNotFound, "Loan application not found",
		fmt.Sprintf("applicationId: %s", applicationID), false, nil)
}

func NewStatusUpdateFailedError(applicationID string, err error) *StandardError {
	return newError(ErrCodeStatusUpdateFailed, "Failed to update application status",
		fmt.Sprintf("applicationId: %s, error: %v", applicationID, err), true, err)
}

func NewStatusNotAllowedError(applicationID string) *StandardError {
	return newError(ErrCodeStatusNotAllowed, "Status updates are not enabled for this application",
		fmt.Sprintf("applicationId: %s", applicationID), false, nil)
}

func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Request validation failed", details, false, nil)
}

func NewFormIncompleteError(form string, completion int) *StandardError {
	return newError(ErrCodeFormIncomplete, "Form is incomplete",
		fmt.Sprintf("form: %s, completion: %d%%", form, completion), false, nil)
}

// NewWebhookTimeoutError is retryable with a fresh request id.
func NewWebhookTimeoutError(endpoint string, err error) *StandardError {
	return newError(ErrCodeWebhookTimeout, "The request timed out",
		fmt.Sprintf("endpoint: %s, error: %v", endpoint, err), true, err)
}

// NewWebhookStatusError is not retryable without changing the payload.
func NewWebhookStatusError(endpoint string, statusCode int, body string, err error) *StandardError {
	return newError(ErrCodeWebhookHTTPStatus, fmt.Sprintf("The workflow service rejected the request (HTTP %d)", statusCode),
		fmt.Sprintf("endpoint: %s, body: %s", endpoint, body), false, err).
		WithMetadata("statusCode", statusCode)
}

func NewWebhookTransportError(endpoint string, err error) *StandardError {
	return newError(ErrCodeWebhookTransport, "Could not reach the workflow service",
		fmt.Sprintf("endpoint: %s, error: %v", endpoint, err), true, err)
}

func NewWebhookResponseError(endpoint string, err error) *StandardError {
	return newError(ErrCodeWebhookResponse, "The workflow service returned an unreadable response",
		fmt.Sprintf("endpoint: %s, error: %v", endpoint, err), false, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %v", channel, err), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError returns the first StandardError in err's chain, or wraps err
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// HTTPStatus maps an error code onto the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeFormIncomplete:
		return http.StatusBadRequest
	case ErrCodeApplicationNotFound:
		return http.StatusNotFound
	case ErrCodeStatusNotAllowed:
		return http.StatusForbidden
	case ErrCodeWebhookTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeWebhookHTTPStatus, ErrCodeWebhookTransport, ErrCodeWebhookResponse:
		return http.StatusBadGateway
	case ErrCodeDataFetchFailed, ErrCodeStatusUpdateFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the retry budget a job worker should request.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDataFetchFailed,
		ErrCodeStatusUpdateFailed,
		ErrCodeNotificationSendFailed:
		return 3
	case ErrCodeWebhookTimeout, ErrCodeWebhookTransport:
		return 2
	default:
		return 0
	}
}

// GetErrorCategory returns a coarse category for logs and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "WEBHOOK"):
		return "WEBHOOK"
	case strings.Contains(codeStr, "FETCH") || strings.Contains(codeStr, "STATUS") || strings.Contains(codeStr, "APPLICATION"):
		return "DATA"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INCOMPLETE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
