// internal/datasource/rows.go
package datasource

import (
	"database/sql"

	"loan-origination/internal/models"
)

// Scan targets for the Postgres tables. Every column except the primary key
// may be NULL; NULL maps to the zero value of the model field.

type applicationRow struct {
	ID                 string          `db:"id"`
	UserID             sql.NullString  `db:"user_id"`
	LoanAmount         sql.NullFloat64 `db:"loan_amount"`
	LoanPurpose        sql.NullString  `db:"loan_purpose"`
	Status             sql.NullString  `db:"status"`
	AIDecision         *string         `db:"ai_decision"`
	AIConfidence       *float64        `db:"ai_confidence"`
	DocumentsCompleted sql.NullBool    `db:"documents_completed"`
	ESGCompleted       sql.NullBool    `db:"esg_completed"`
	AssetsCompleted    sql.NullBool    `db:"assets_completed"`
	CreatedAt          sql.NullTime    `db:"created_at"`
	UpdatedAt          sql.NullTime    `db:"updated_at"`
}

func (r applicationRow) model() models.LoanApplication {
	return models.LoanApplication{
		ID:                 r.ID,
		UserID:             r.UserID.String,
		LoanAmount:         r.LoanAmount.Float64,
		LoanPurpose:        r.LoanPurpose.String,
		Status:             r.Status.String,
		AIDecision:         r.AIDecision,
		AIConfidence:       r.AIConfidence,
		DocumentsCompleted: r.DocumentsCompleted.Bool,
		ESGCompleted:       r.ESGCompleted.Bool,
		AssetsCompleted:    r.AssetsCompleted.Bool,
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
	}
}

type profileRow struct {
	ID           string         `db:"id"`
	FirstName    sql.NullString `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	Email        sql.NullString `db:"email"`
	MobileNumber sql.NullString `db:"mobile_number"`
}

func (r profileRow) model() models.UserProfile {
	return models.UserProfile{
		ID:           r.ID,
		FirstName:    r.FirstName.String,
		LastName:     r.LastName.String,
		Email:        r.Email.String,
		MobileNumber: r.MobileNumber.String,
	}
}

type employmentRow struct {
	UserID         sql.NullString  `db:"user_id"`
	EmploymentType sql.NullString  `db:"employment_type"`
	EmployerName   sql.NullString  `db:"employer_name"`
	JobTitle       sql.NullString  `db:"job_title"`
	MonthlyIncome  sql.NullFloat64 `db:"monthly_income"`
	YearsEmployed  sql.NullFloat64 `db:"years_employed"`
	CreatedAt      sql.NullTime    `db:"created_at"`
}

func (r employmentRow) model() models.Employment {
	return models.Employment{
		UserID:         r.UserID.String,
		EmploymentType: r.EmploymentType.String,
		EmployerName:   r.EmployerName.String,
		JobTitle:       r.JobTitle.String,
		MonthlyIncome:  r.MonthlyIncome.Float64,
		YearsEmployed:  r.YearsEmployed.Float64,
		CreatedAt:      r.CreatedAt.Time,
	}
}

type addressRow struct {
	UserID     sql.NullString `db:"user_id"`
	Street     sql.NullString `db:"street"`
	Barangay   sql.NullString `db:"barangay"`
	City       sql.NullString `db:"city"`
	Province   sql.NullString `db:"province"`
	Region     sql.NullString `db:"region"`
	PostalCode sql.NullString `db:"postal_code"`
	CreatedAt  sql.NullTime   `db:"created_at"`
}

func (r addressRow) model() models.Address {
	return models.Address{
		UserID:     r.UserID.String,
		Street:     r.Street.String,
		Barangay:   r.Barangay.String,
		City:       r.City.String,
		Province:   r.Province.String,
		Region:     r.Region.String,
		PostalCode: r.PostalCode.String,
		CreatedAt:  r.CreatedAt.Time,
	}
}

type financialRow struct {
	UserID          sql.NullString  `db:"user_id"`
	MonthlyIncome   sql.NullFloat64 `db:"monthly_income"`
	MonthlyExpenses sql.NullFloat64 `db:"monthly_expenses"`
	ExistingLoans   sql.NullFloat64 `db:"existing_loans"`
	CreditScore     sql.NullInt64   `db:"credit_score"`
	BankName        sql.NullString  `db:"bank_name"`
	CreatedAt       sql.NullTime    `db:"created_at"`
}

func (r financialRow) model() models.FinancialInfo {
	return models.FinancialInfo{
		UserID:          r.UserID.String,
		MonthlyIncome:   r.MonthlyIncome.Float64,
		MonthlyExpenses: r.MonthlyExpenses.Float64,
		ExistingLoans:   r.ExistingLoans.Float64,
		CreditScore:     intPtrOf(r.CreditScore),
		BankName:        r.BankName.String,
		CreatedAt:       r.CreatedAt.Time,
	}
}

type riskRow struct {
	UserID      sql.NullString `db:"user_id"`
	CreditScore sql.NullInt64  `db:"credit_score"`
	RiskGrade   *string        `db:"risk_grade"`
	RiskFactors sql.NullString `db:"risk_factors"`
	CreatedAt   sql.NullTime   `db:"created_at"`
}

func (r riskRow) model() models.RiskProfile {
	return models.RiskProfile{
		UserID:      r.UserID.String,
		CreditScore: intPtrOf(r.CreditScore),
		RiskGrade:   r.RiskGrade,
		RiskFactors: r.RiskFactors.String,
		CreatedAt:   r.CreatedAt.Time,
	}
}

type assetRow struct {
	ID             string          `db:"id"`
	ApplicationID  sql.NullString  `db:"application_id"`
	UserID         sql.NullString  `db:"user_id"`
	AssetType      sql.NullString  `db:"asset_type"`
	Description    sql.NullString  `db:"description"`
	EstimatedValue sql.NullFloat64 `db:"estimated_value"`
	Age            sql.NullInt64   `db:"age"`
	Condition      sql.NullString  `db:"condition"`
	CreatedAt      sql.NullTime    `db:"created_at"`
}

func (r assetRow) model() models.AssetDeclaration {
	return models.AssetDeclaration{
		ID:             r.ID,
		ApplicationID:  r.ApplicationID.String,
		UserID:         r.UserID.String,
		AssetType:      r.AssetType.String,
		Description:    r.Description.String,
		EstimatedValue: r.EstimatedValue.Float64,
		Age:            int(r.Age.Int64),
		Condition:      r.Condition.String,
		CreatedAt:      r.CreatedAt.Time,
	}
}

type esgRow struct {
	ApplicationID        string             `db:"application_id"`
	Environment          models.ESGCategory `db:"environment"`
	Social               models.ESGCategory `db:"social"`
	Governance           models.ESGCategory `db:"governance"`
	Stability1           models.ESGCategory `db:"stability_1"`
	Stability2           models.ESGCategory `db:"stability_2"`
	Stability3           models.ESGCategory `db:"stability_3"`
	CompletionPercentage sql.NullInt64      `db:"completion_percentage"`
	CreatedAt            sql.NullTime       `db:"created_at"`
}

func (r esgRow) model() models.ESGAssessment {
	return models.ESGAssessment{
		ApplicationID:        r.ApplicationID,
		Environment:          r.Environment,
		Social:               r.Social,
		Governance:           r.Governance,
		Stability1:           r.Stability1,
		Stability2:           r.Stability2,
		Stability3:           r.Stability3,
		CompletionPercentage: int(r.CompletionPercentage.Int64),
		CreatedAt:            r.CreatedAt.Time,
	}
}

type locationRow struct {
	ID      string          `db:"id"`
	Name    sql.NullString  `db:"name"`
	Type    sql.NullString  `db:"type"`
	Status  sql.NullString  `db:"status"`
	Lat     sql.NullFloat64 `db:"lat"`
	Lng     sql.NullFloat64 `db:"lng"`
	Phone   sql.NullString  `db:"phone"`
	Address sql.NullString  `db:"address"`
}

func (r locationRow) model() models.Location {
	return models.Location{
		ID:      r.ID,
		Name:    r.Name.String,
		Type:    models.LocationType(r.Type.String),
		Status:  r.Status.String,
		Lat:     r.Lat.Float64,
		Lng:     r.Lng.Float64,
		Phone:   r.Phone.String,
		Address: r.Address.String,
	}
}

func intPtrOf(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// toModels converts scanned rows, keeping nil for an empty result.
func toModels[R interface{ model() M }, M any](rows []R) []M {
	if len(rows) == 0 {
		return nil
	}
	out := make([]M, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out
}
