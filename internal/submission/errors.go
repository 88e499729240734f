// internal/submission/errors.go
package submission

import (
	"errors"
	"fmt"
	"strings"

	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/webhook"
)

// UserMessage turns a submission failure into text for the borrower,
// always ending with a retry suggestion.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		te     *webhook.TimeoutError
		se     *webhook.StatusError
		de     *webhook.DecodeError
		stdErr *apperrors.StandardError
	)

	var human string
	switch {
	case errors.As(err, &te):
		human = "The request timed out before the loan service answered"
	case errors.As(err, &se):
		human = fmt.Sprintf("The loan service could not accept your submission (HTTP %d)", se.StatusCode)
	case errors.As(err, &de):
		human = "The loan service sent back an unexpected response"
	case errors.As(err, &stdErr):
		human = stdErr.Message
		if stdErr.Code == apperrors.ErrCodeValidationFailed && stdErr.Details != "" {
			human = stdErr.Details
		}
	default:
		human = "We could not reach the loan service"
	}

	return strings.TrimRight(human, ". ") + ". Please try again in a moment."
}

func requestIDOf(err error) string {
	var (
		te *webhook.TimeoutError
		se *webhook.StatusError
		de *webhook.DecodeError
	)
	switch {
	case errors.As(err, &te):
		return te.RequestID
	case errors.As(err, &se):
		return se.RequestID
	case errors.As(err, &de):
		return de.RequestID
	}
	return ""
}
