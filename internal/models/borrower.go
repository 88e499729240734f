// internal/models/borrower.go
package models

import "time"

type UserProfile struct {
	ID           string `db:"id" json:"id,omitempty"`
	FirstName    string `db:"first_name" json:"first_name,omitempty"`
	LastName     string `db:"last_name" json:"last_name,omitempty"`
	Email        string `db:"email" json:"email,omitempty"`
	MobileNumber string `db:"mobile_number" json:"mobile_number,omitempty"`
}

// FullName joins first and last name, skipping blanks.
func (p UserProfile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

type Employment struct {
	UserID         string    `db:"user_id" json:"user_id,omitempty"`
	EmploymentType string    `db:"employment_type" json:"employment_type,omitempty"`
	EmployerName   string    `db:"employer_name" json:"employer_name,omitempty"`
	JobTitle       string    `db:"job_title" json:"job_title,omitempty"`
	MonthlyIncome  float64   `db:"monthly_income" json:"monthly_income,omitempty"`
	YearsEmployed  float64   `db:"years_employed" json:"years_employed,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
}

type Address struct {
	UserID     string    `db:"user_id" json:"user_id,omitempty"`
	Street     string    `db:"street" json:"street,omitempty"`
	Barangay   string    `db:"barangay" json:"barangay,omitempty"`
	City       string    `db:"city" json:"city,omitempty"`
	Province   string    `db:"province" json:"province,omitempty"`
	Region     string    `db:"region" json:"region,omitempty"`
	PostalCode string    `db:"postal_code" json:"postal_code,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
}

type FinancialInfo struct {
	UserID          string    `db:"user_id" json:"user_id,omitempty"`
	MonthlyIncome   float64   `db:"monthly_income" json:"monthly_income,omitempty"`
	MonthlyExpenses float64   `db:"monthly_expenses" json:"monthly_expenses,omitempty"`
	ExistingLoans   float64   `db:"existing_loans" json:"existing_loans,omitempty"`
	CreditScore     *int      `db:"credit_score" json:"credit_score,omitempty"`
	BankName        string    `db:"bank_name" json:"bank_name,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"-"`
}

type RiskProfile struct {
	UserID      string    `db:"user_id" json:"user_id,omitempty"`
	CreditScore *int      `db:"credit_score" json:"credit_score,omitempty"`
	RiskGrade   *string   `db:"risk_grade" json:"risk_grade,omitempty"`
	RiskFactors string    `db:"risk_factors" json:"risk_factors,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// AssetDeclaration is keyed by application_id. UserID is carried as data.
type AssetDeclaration struct {
	ID             string    `db:"id" json:"id"`
	ApplicationID  string    `db:"application_id" json:"application_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	AssetType      string    `db:"asset_type" json:"asset_type"`
	Description    string    `db:"description" json:"description"`
	EstimatedValue float64   `db:"estimated_value" json:"estimated_value"`
	Age            int       `db:"age" json:"age"`
	Condition      string    `db:"condition" json:"condition"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
