// internal/api/respond.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/validation"

	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondError renders err with the HTTP status of its code. A non-empty
// message replaces the error's own message.
func respondError(w http.ResponseWriter, r *http.Request, err error, message string) {
	stdErr := apperrors.AsStandardError(err)
	body := errorBody{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		RequestID: middleware.GetReqID(r.Context()),
	}
	if id, ok := stdErr.Metadata["requestId"].(string); ok && id != "" {
		body.RequestID = id
	}
	if message != "" {
		body.Message = message
	}
	respondJSON(w, apperrors.HTTPStatus(stdErr.Code), errorResponse{Error: body})
}

// respondLoadError renders a failed read. Everything except a missing record
// or bad input is worth retrying.
func respondLoadError(w http.ResponseWriter, r *http.Request, what string, err error) {
	stdErr := apperrors.AsStandardError(err)
	switch stdErr.Code {
	case apperrors.ErrCodeApplicationNotFound, apperrors.ErrCodeValidationFailed:
		respondError(w, r, stdErr, "")
		return
	}
	stdErr.Retryable = true
	respondError(w, r, stdErr, "Failed to load "+what)
}

// decodeBody checks the body against the named schema, then unmarshals it
// into v.
func decodeBody(r *http.Request, schemas *validation.Validator, schema string, v interface{}) error {
	if r.Body == nil {
		return apperrors.NewValidationError("request body is required")
	}
	defer r.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("read body: %v", err))
	}
	if len(raw) > maxBodyBytes {
		return apperrors.NewValidationError("request body is too large")
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return apperrors.NewValidationError("request body is required")
	}

	result, err := schemas.ValidateJSON(schema, raw)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !result.Valid {
		return apperrors.NewValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("decode body: %v", err))
	}
	return nil
}
