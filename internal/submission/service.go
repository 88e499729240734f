// Package submission sanitizes borrower forms and forwards them to the
// workflow engine through the webhook gateway.
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-origination/internal/activity"
	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/money"
	"loan-origination/internal/common/observability"
	"loan-origination/internal/datasource"
	"loan-origination/internal/models"
	"loan-origination/internal/webhook"

	"github.com/google/uuid"
)

// RedirectLoans is where the borrower lands after a successful submission.
const RedirectLoans = "/dashboard/loans"

// Sender delivers a payload to a workflow endpoint.
type Sender interface {
	Send(ctx context.Context, endpoint string, data interface{}) (*webhook.Result, error)
}

// Result is returned to the borrower after the engine accepted a submission.
type Result struct {
	Endpoint   string          `json:"endpoint"`
	ID         string          `json:"id"`
	RequestID  string          `json:"requestId"`
	Message    string          `json:"message"`
	RedirectTo string          `json:"redirectTo,omitempty"`
	Response   json.RawMessage `json:"response"`
}

type Service struct {
	sender   Sender
	ds       datasource.DataSource
	activity activity.Recorder
	obs      *observability.Observability
	log      logger.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService wires the submission path. ds is used only to look up the
// borrower profile and may be nil.
func NewService(sender Sender, ds datasource.DataSource, rec activity.Recorder, obs *observability.Observability, log logger.Logger, opts ...Option) *Service {
	if rec == nil {
		rec = activity.Nop{}
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	s := &Service{
		sender:   sender,
		ds:       ds,
		activity: rec,
		obs:      obs,
		log:      log.WithFields(map[string]interface{}{"component": "submission"}),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) SubmitPreloan(ctx context.Context, req PreloanRequest) (*Result, error) {
	at := s.now()
	id := TrimID(req.ApplicationID)
	if id == "" {
		id = s.newID()
	}
	user := s.lookupUser(ctx, req.UserID, User{})
	payload := buildPreloan(req, id, user, timestamp(at))

	return s.submit(ctx, webhook.EndpointPreloanApplication, id, user.ID, payload, at,
		"Your pre-application has been submitted", RedirectLoans)
}

func (s *Service) SubmitLoanApplication(ctx context.Context, req LoanApplicationRequest) (*Result, error) {
	at := s.now()
	id := TrimID(req.ApplicationID)
	if id == "" {
		id = s.newID()
	}
	user := s.lookupUser(ctx, req.UserID, User{
		Email:        TrimID(req.Personal.Email),
		FirstName:    TrimID(req.Personal.FirstName),
		LastName:     TrimID(req.Personal.LastName),
		MobileNumber: TrimID(req.Personal.MobileNumber),
	})
	payload := buildLoanApplication(req, id, user, timestamp(at))

	return s.submit(ctx, webhook.EndpointLoanApplication, id, user.ID, payload, at,
		"Your loan application has been submitted", RedirectLoans)
}

func (s *Service) SubmitDocument(ctx context.Context, req DocumentUploadRequest) (*Result, error) {
	if TrimID(req.ApplicationID) == "" {
		return nil, apperrors.NewValidationError("applicationId is required")
	}
	if TrimID(req.FileName) == "" {
		return nil, apperrors.NewValidationError("fileName is required")
	}

	at := s.now()
	uploadID := s.newID()
	user := s.lookupUser(ctx, req.UserID, User{})
	payload := buildDocumentUpload(req, uploadID, user, timestamp(at))

	return s.submit(ctx, webhook.EndpointDocumentUpload, uploadID, user.ID, payload, at,
		fmt.Sprintf("%s uploaded", payload.DocumentData.FileName), "")
}

// SubmitAssetDeclaration forwards the declared assets with a peso total.
func (s *Service) SubmitAssetDeclaration(ctx context.Context, req AssetDeclarationRequest) (*Result, error) {
	if TrimID(req.ApplicationID) == "" {
		return nil, apperrors.NewValidationError("applicationId is required")
	}
	if len(req.Assets) == 0 {
		return nil, apperrors.NewValidationError("at least one asset must be declared")
	}

	at := s.now()
	user := s.lookupUser(ctx, req.UserID, User{})
	payload := buildAssetDeclaration(req, user, timestamp(at))

	msg := fmt.Sprintf("Asset declaration submitted. Total declared value: %s", payload.Summary.FormattedTotal)
	return s.submit(ctx, webhook.EndpointAssetDeclaration, payload.ApplicationID, user.ID, payload, at, msg, RedirectLoans)
}

// SubmitESG refuses incomplete or out-of-range questionnaires.
func (s *Service) SubmitESG(ctx context.Context, req ESGRequest) (*Result, error) {
	a := req.Assessment()
	if a.ApplicationID == "" {
		return nil, apperrors.NewValidationError("applicationId is required")
	}
	if problems := a.Validate(); len(problems) > 0 {
		return nil, apperrors.NewValidationError(problems[0]).WithMetadata("problems", problems)
	}
	if !a.IsFormComplete() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("ESG assessment is %d%% complete; every question must be answered", a.CompletionPercentage()),
		).WithMetadata("completionPercentage", a.CompletionPercentage())
	}

	at := s.now()
	user := s.lookupUser(ctx, req.UserID, User{})
	payload := buildESG(a, user, at)

	return s.submit(ctx, webhook.EndpointESGAssessment, a.ApplicationID, user.ID, payload, at,
		"Your ESG assessment has been submitted", RedirectLoans)
}

func (s *Service) SubmitLoanPlan(ctx context.Context, req LoanPlanRequest) (*Result, error) {
	if TrimID(req.ApplicationID) == "" {
		return nil, apperrors.NewValidationError("applicationId is required")
	}
	if ParseNumber(req.LoanAmount) <= 0 {
		return nil, apperrors.NewValidationError("loanAmount must be greater than zero")
	}

	at := s.now()
	user := s.lookupUser(ctx, req.UserID, User{})
	payload := buildLoanPlan(req, user, timestamp(at))

	msg := fmt.Sprintf("Loan plan for %s created", money.Peso(payload.PlanData.LoanAmount))
	return s.submit(ctx, webhook.EndpointLoanPlan, payload.ApplicationID, user.ID, payload, at, msg, RedirectLoans)
}

// submit sends payload once. Gateway errors are returned unchanged.
func (s *Service) submit(ctx context.Context, endpoint, id, userID string, payload interface{}, at time.Time, message, redirect string) (*Result, error) {
	log := s.log.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"id":       id,
	})

	res, err := s.sender.Send(ctx, endpoint, payload)
	elapsed := s.now().Sub(at)
	if err != nil {
		s.obs.RecordSubmission(ctx, endpoint, "failed", elapsed)
		log.Warn("submission failed", map[string]interface{}{"error": err})
		s.activity.Record(ctx, models.ActivityEvent{
			Type:          models.ActivitySubmission,
			ApplicationID: id,
			Actor:         userID,
			Message:       endpoint + " submission failed",
			RequestID:     requestIDOf(err),
			Attributes: map[string]interface{}{
				"endpoint": endpoint,
				"outcome":  "failed",
				"error":    err.Error(),
			},
		})
		return nil, err
	}

	s.obs.RecordSubmission(ctx, endpoint, "success", elapsed)
	log.Info("submission accepted", map[string]interface{}{"requestId": res.RequestID})
	s.activity.Record(ctx, models.ActivityEvent{
		Type:          models.ActivitySubmission,
		ApplicationID: id,
		Actor:         userID,
		Message:       endpoint + " submitted",
		RequestID:     res.RequestID,
		Attributes: map[string]interface{}{
			"endpoint":   endpoint,
			"outcome":    "success",
			"statusCode": res.StatusCode,
		},
	})

	return &Result{
		Endpoint:   endpoint,
		ID:         id,
		RequestID:  res.RequestID,
		Message:    message,
		RedirectTo: redirect,
		Response:   res.Body,
	}, nil
}

// lookupUser builds the user block from users_profiles, falling back to the
// request data when the profile cannot be read.
func (s *Service) lookupUser(ctx context.Context, userID string, fallback User) User {
	fallback.ID = TrimID(userID)
	if fallback.ID == "" || s.ds == nil {
		return fallback
	}

	profiles, err := s.ds.Profiles(ctx, []string{fallback.ID})
	if err != nil {
		s.log.Warn("profile lookup failed, using request data", map[string]interface{}{
			"userId": fallback.ID,
			"error":  err,
		})
		return fallback
	}
	for _, p := range profiles {
		if p.ID == fallback.ID {
			return userFromProfile(p)
		}
	}
	return fallback
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
