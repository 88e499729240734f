// internal/api/submissions.go
package api

import (
	"context"
	"net/http"

	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/validation"
	"loan-origination/internal/submission"
	"loan-origination/internal/webhook"
)

type submissionHandler struct {
	svc     *submission.Service
	schemas *validation.Validator
	log     logger.Logger
}

func newSubmissionHandler(svc *submission.Service, schemas *validation.Validator, log logger.Logger) *submissionHandler {
	return &submissionHandler{
		svc:     svc,
		schemas: schemas,
		log:     log.WithFields(map[string]interface{}{"handler": "submission"}),
	}
}

// handle decodes a request of type T and forwards it. Every failure is
// rendered with a borrower-facing message.
func handle[T any](h *submissionHandler, endpoint string, submit func(context.Context, T) (*submission.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if err := decodeBody(r, h.schemas, endpoint, &req); err != nil {
			respondError(w, r, err, submission.UserMessage(err))
			return
		}

		res, err := submit(r.Context(), req)
		if err != nil {
			stdErr := webhook.ToStandardError(endpoint, err)
			if stdErr.Code == apperrors.ErrCodeInternal {
				h.log.Error("submission failed", map[string]interface{}{"endpoint": endpoint, "error": err})
			}
			respondError(w, r, stdErr, submission.UserMessage(err))
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

func (h *submissionHandler) Preloan(w http.ResponseWriter, r *http.Request) {
	handle(h, webhook.EndpointPreloanApplication, h.svc.SubmitPreloan)(w, r)
}

func (h *submissionHandler) LoanApplication(w http.ResponseWriter, r *http.Request) {
	handle(h, webhook.EndpointLoanApplication, h.svc.SubmitLoanApplication)(w, r)
}

func (h *submissionHandler) DocumentUpload(w http.ResponseWriter, r *http.Request) {
	handle(h, webhook.EndpointDocumentUpload, h.svc.SubmitDocument)(w, r)
}

func (h *submissionHandler) AssetDeclaration(w http.ResponseWriter, r *http.Request) {
	handle(h, webhook.EndpointAssetDeclaration, h.svc.SubmitAssetDeclaration)(w, r)
}

func (h *submissionHandler) ESGAssessment(w http.ResponseWriter, r *http.Request) {
	handle(h, webhook.EndpointESGAssessment, h.svc.SubmitESG)(w, r)
}

func (h *submissionHandler) LoanPlan(w http.ResponseWriter, r *http.Request) {
	handle(h, webhook.EndpointLoanPlan, h.svc.SubmitLoanPlan)(w, r)
}
