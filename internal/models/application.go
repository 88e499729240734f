// internal/models/application.go
package models

import "time"

// LoanApplication is one row of preloan_applications. Status is owned by the
// workflow engine and is never validated locally.
type LoanApplication struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	LoanAmount         float64   `db:"loan_amount" json:"loan_amount"`
	LoanPurpose        string    `db:"loan_purpose" json:"loan_purpose"`
	Status             string    `db:"status" json:"status"`
	AIDecision         *string   `db:"ai_decision" json:"ai_decision"`
	AIConfidence       *float64  `db:"ai_confidence" json:"ai_confidence"`
	DocumentsCompleted bool      `db:"documents_completed" json:"documents_completed"`
	ESGCompleted       bool      `db:"esg_completed" json:"esg_completed"`
	AssetsCompleted    bool      `db:"assets_completed" json:"assets_completed"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// ApplicationView is the denormalized officer-facing row. Related records
// that do not exist are zero values, which render as {} and [].
type ApplicationView struct {
	LoanApplication

	ApplicantName   string             `json:"applicantName"`
	Profile         UserProfile        `json:"profile"`
	Employment      Employment         `json:"employment"`
	Address         Address            `json:"address"`
	Financial       FinancialInfo      `json:"financial"`
	RiskProfile     RiskProfile        `json:"riskProfile"`
	Assets          []AssetDeclaration `json:"assets"`
	CreditScore     int                `json:"creditScore"`
	RiskLevel       string             `json:"riskLevel"`
	TotalAssetValue float64            `json:"totalAssetValue"`
}

// Status values the service itself reacts to. Anything else passes through.
const (
	StatusPending        = "pending"
	StatusUnderReview    = "under_review"
	StatusApproved       = "approved"
	StatusRejected       = "rejected"
	StatusNeedsDocuments = "needs_documents"
)
