// internal/submission/payloads.go
package submission

import (
	"strings"
	"time"

	"loan-origination/internal/common/money"
	"loan-origination/internal/esg"
	"loan-origination/internal/models"

	"github.com/shopspring/decimal"
)

// Workflow types understood by the engine.
const (
	WorkflowPreloan         = "preloan_application"
	WorkflowLoanApplication = "full_loan_application"
	WorkflowDocumentUpload  = "document_upload"
	WorkflowAssetDecl       = "asset_declaration"
	WorkflowESG             = "esg_assessment"
	WorkflowLoanPlan        = "loan_plan"
)

// User is the borrower block carried by every payload. Fields are always
// present, blank when unknown.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	MobileNumber string `json:"mobile_number"`
}

func userFromProfile(p models.UserProfile) User {
	return User{
		ID:           TrimID(p.ID),
		Email:        TrimID(p.Email),
		FirstName:    TrimID(p.FirstName),
		LastName:     TrimID(p.LastName),
		MobileNumber: TrimID(p.MobileNumber),
	}
}

// --- preloan-application ---

type PreloanRequest struct {
	ApplicationID  string      `json:"applicationId"`
	UserID         string      `json:"userId"`
	LoanAmount     interface{} `json:"loanAmount"`
	LoanPurpose    string      `json:"loanPurpose"`
	LoanTerm       interface{} `json:"loanTerm"`
	MonthlyIncome  interface{} `json:"monthlyIncome"`
	EmploymentType string      `json:"employmentType"`
	BusinessType   string      `json:"businessType"`
	Notes          string      `json:"notes"`
}

type LoanData struct {
	LoanAmount     float64 `json:"loan_amount"`
	LoanPurpose    string  `json:"loan_purpose"`
	LoanTermMonths int     `json:"loan_term_months"`
	MonthlyIncome  float64 `json:"monthly_income"`
	EmploymentType string  `json:"employment_type"`
	BusinessType   string  `json:"business_type"`
	Notes          *string `json:"notes"`
}

// LegacyData repeats the loan fields in the shape older workflows read.
type LegacyData struct {
	UserID  string  `json:"user_id"`
	Amount  float64 `json:"amount"`
	Purpose string  `json:"purpose"`
	Term    int     `json:"term"`
}

type PreloanPayload struct {
	ApplicationID string     `json:"applicationId"`
	SubmittedAt   string     `json:"submittedAt"`
	User          User       `json:"user"`
	LoanData      LoanData   `json:"loanData"`
	WorkflowType  string     `json:"workflow_type"`
	LegacyData    LegacyData `json:"legacyData"`
}

func buildPreloan(req PreloanRequest, id string, user User, submittedAt string) PreloanPayload {
	loan := LoanData{
		LoanAmount:     ParseNumber(req.LoanAmount),
		LoanPurpose:    TrimText(req.LoanPurpose),
		LoanTermMonths: ParseInt(req.LoanTerm),
		MonthlyIncome:  ParseNumber(req.MonthlyIncome),
		EmploymentType: TrimID(req.EmploymentType),
		BusinessType:   TrimID(req.BusinessType),
		Notes:          NullableString(req.Notes),
	}
	return PreloanPayload{
		ApplicationID: id,
		SubmittedAt:   submittedAt,
		User:          user,
		LoanData:      loan,
		WorkflowType:  WorkflowPreloan,
		LegacyData: LegacyData{
			UserID:  user.ID,
			Amount:  loan.LoanAmount,
			Purpose: loan.LoanPurpose,
			Term:    loan.LoanTermMonths,
		},
	}
}

// --- loan-application ---

type PersonalInput struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	BirthDate    string `json:"birthDate"`
	CivilStatus  string `json:"civilStatus"`
}

type EmploymentInput struct {
	EmploymentType string      `json:"employmentType"`
	EmployerName   string      `json:"employerName"`
	JobTitle       string      `json:"jobTitle"`
	MonthlyIncome  interface{} `json:"monthlyIncome"`
	YearsEmployed  interface{} `json:"yearsEmployed"`
}

type AddressInput struct {
	Street     string `json:"street"`
	Barangay   string `json:"barangay"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
}

type FinancialInput struct {
	MonthlyIncome   interface{} `json:"monthlyIncome"`
	MonthlyExpenses interface{} `json:"monthlyExpenses"`
	ExistingLoans   interface{} `json:"existingLoans"`
	BankName        string      `json:"bankName"`
}

type LoanApplicationRequest struct {
	ApplicationID string          `json:"applicationId"`
	UserID        string          `json:"userId"`
	LoanAmount    interface{}     `json:"loanAmount"`
	LoanPurpose   string          `json:"loanPurpose"`
	LoanTerm      interface{}     `json:"loanTerm"`
	Personal      PersonalInput   `json:"personal"`
	Employment    EmploymentInput `json:"employment"`
	Address       AddressInput    `json:"address"`
	Financial     FinancialInput  `json:"financial"`
}

type ApplicationData struct {
	LoanAmount     float64 `json:"loan_amount"`
	LoanPurpose    string  `json:"loan_purpose"`
	LoanTermMonths int     `json:"loan_term_months"`
	Personal       struct {
		BirthDate   *string `json:"birth_date"`
		CivilStatus string  `json:"civil_status"`
	} `json:"personal"`
	Employment struct {
		EmploymentType string  `json:"employment_type"`
		EmployerName   string  `json:"employer_name"`
		JobTitle       string  `json:"job_title"`
		MonthlyIncome  float64 `json:"monthly_income"`
		YearsEmployed  float64 `json:"years_employed"`
	} `json:"employment"`
	Address struct {
		Street     string `json:"street"`
		Barangay   string `json:"barangay"`
		City       string `json:"city"`
		Province   string `json:"province"`
		Region     string `json:"region"`
		PostalCode string `json:"postal_code"`
	} `json:"address"`
	Financial struct {
		MonthlyIncome   float64 `json:"monthly_income"`
		MonthlyExpenses float64 `json:"monthly_expenses"`
		ExistingLoans   float64 `json:"existing_loans"`
		BankName        string  `json:"bank_name"`
	} `json:"financial"`
}

type LoanApplicationPayload struct {
	ApplicationID   string          `json:"applicationId"`
	SubmittedAt     string          `json:"submittedAt"`
	User            User            `json:"user"`
	ApplicationData ApplicationData `json:"applicationData"`
	WorkflowType    string          `json:"workflow_type"`
}

func buildLoanApplication(req LoanApplicationRequest, id string, user User, submittedAt string) LoanApplicationPayload {
	var d ApplicationData
	d.LoanAmount = ParseNumber(req.LoanAmount)
	d.LoanPurpose = TrimText(req.LoanPurpose)
	d.LoanTermMonths = ParseInt(req.LoanTerm)

	d.Personal.BirthDate = NullableString(req.Personal.BirthDate)
	d.Personal.CivilStatus = TrimID(req.Personal.CivilStatus)

	d.Employment.EmploymentType = TrimID(req.Employment.EmploymentType)
	d.Employment.EmployerName = TrimID(req.Employment.EmployerName)
	d.Employment.JobTitle = TrimID(req.Employment.JobTitle)
	d.Employment.MonthlyIncome = ParseNumber(req.Employment.MonthlyIncome)
	d.Employment.YearsEmployed = ParseNumber(req.Employment.YearsEmployed)

	d.Address.Street = TrimText(req.Address.Street)
	d.Address.Barangay = TrimID(req.Address.Barangay)
	d.Address.City = TrimID(req.Address.City)
	d.Address.Province = TrimID(req.Address.Province)
	d.Address.Region = TrimID(req.Address.Region)
	d.Address.PostalCode = TrimID(req.Address.PostalCode)

	d.Financial.MonthlyIncome = ParseNumber(req.Financial.MonthlyIncome)
	d.Financial.MonthlyExpenses = ParseNumber(req.Financial.MonthlyExpenses)
	d.Financial.ExistingLoans = ParseNumber(req.Financial.ExistingLoans)
	d.Financial.BankName = TrimID(req.Financial.BankName)

	return LoanApplicationPayload{
		ApplicationID:   id,
		SubmittedAt:     submittedAt,
		User:            user,
		ApplicationData: d,
		WorkflowType:    WorkflowLoanApplication,
	}
}

// --- document-upload ---

type DocumentUploadRequest struct {
	ApplicationID string      `json:"applicationId"`
	UserID        string      `json:"userId"`
	DocumentType  string      `json:"documentType"`
	FileName      string      `json:"fileName"`
	FileSize      interface{} `json:"fileSize"`
	MimeType      string      `json:"mimeType"`
	StorageURL    string      `json:"storageUrl"`
	Description   string      `json:"description"`
}

type DocumentData struct {
	ApplicationID string  `json:"application_id"`
	DocumentType  string  `json:"document_type"`
	FileName      string  `json:"file_name"`
	FileSize      int     `json:"file_size"`
	MimeType      string  `json:"mime_type"`
	StorageURL    string  `json:"storage_url"`
	Description   *string `json:"description"`
}

type DocumentUploadPayload struct {
	UploadID     string       `json:"uploadId"`
	SubmittedAt  string       `json:"submittedAt"`
	User         User         `json:"user"`
	DocumentData DocumentData `json:"documentData"`
	WorkflowType string       `json:"workflow_type"`
}

func buildDocumentUpload(req DocumentUploadRequest, uploadID string, user User, submittedAt string) DocumentUploadPayload {
	return DocumentUploadPayload{
		UploadID:    uploadID,
		SubmittedAt: submittedAt,
		User:        user,
		DocumentData: DocumentData{
			ApplicationID: TrimID(req.ApplicationID),
			DocumentType:  TrimID(req.DocumentType),
			FileName:      TrimID(req.FileName),
			FileSize:      ParseInt(req.FileSize),
			MimeType:      TrimID(req.MimeType),
			StorageURL:    TrimText(req.StorageURL),
			Description:   NullableString(req.Description),
		},
		WorkflowType: WorkflowDocumentUpload,
	}
}

// --- asset-declaration ---

type AssetInput struct {
	AssetType      string      `json:"assetType"`
	Description    string      `json:"description"`
	EstimatedValue interface{} `json:"estimatedValue"`
	Age            interface{} `json:"age"`
	Condition      string      `json:"condition"`
}

type AssetDeclarationRequest struct {
	ApplicationID string       `json:"applicationId"`
	UserID        string       `json:"userId"`
	Assets        []AssetInput `json:"assets"`
}

type DeclaredAsset struct {
	AssetType      string  `json:"asset_type"`
	Description    string  `json:"description"`
	EstimatedValue float64 `json:"estimated_value"`
	Age            int     `json:"age"`
	Condition      string  `json:"condition"`
}

type AssetSummary struct {
	TotalAssets         int     `json:"total_assets"`
	TotalEstimatedValue float64 `json:"total_estimated_value"`
	FormattedTotal      string  `json:"formatted_total"`
}

type AssetDeclarationPayload struct {
	ApplicationID  string          `json:"applicationId"`
	SubmittedAt    string          `json:"submittedAt"`
	User           User            `json:"user"`
	DeclaredAssets []DeclaredAsset `json:"declaredAssets"`
	Summary        AssetSummary    `json:"summary"`
	WorkflowType   string          `json:"workflow_type"`
}

func buildAssetDeclaration(req AssetDeclarationRequest, user User, submittedAt string) AssetDeclarationPayload {
	assets := make([]DeclaredAsset, 0, len(req.Assets))
	total := decimal.Zero
	for _, in := range req.Assets {
		a := DeclaredAsset{
			AssetType:      TrimID(in.AssetType),
			Description:    TrimText(in.Description),
			EstimatedValue: ParseNumber(in.EstimatedValue),
			Age:            ParseInt(in.Age),
			Condition:      TrimID(in.Condition),
		}
		total = total.Add(decimal.NewFromFloat(a.EstimatedValue))
		assets = append(assets, a)
	}

	return AssetDeclarationPayload{
		ApplicationID:  TrimID(req.ApplicationID),
		SubmittedAt:    submittedAt,
		User:           user,
		DeclaredAssets: assets,
		Summary: AssetSummary{
			TotalAssets:         len(assets),
			TotalEstimatedValue: total.InexactFloat64(),
			FormattedTotal:      money.FormatPeso(total),
		},
		WorkflowType: WorkflowAssetDecl,
	}
}

// --- esg-assessment ---

type ESGRequest struct {
	ApplicationID string              `json:"applicationId"`
	UserID        string              `json:"userId"`
	Responses     map[string][]string `json:"responses"`
}

// Assessment builds the questionnaire state for req against the default
// questionnaire.
func (req ESGRequest) Assessment() *esg.Assessment {
	responses := make(map[esg.Category][]string, len(req.Responses))
	for k, v := range req.Responses {
		trimmed := make([]string, len(v))
		for i, r := range v {
			trimmed[i] = TrimText(r)
		}
		responses[esg.Category(strings.ToLower(strings.TrimSpace(k)))] = trimmed
	}
	return esg.DefaultQuestionnaire().Assess(TrimID(req.ApplicationID), responses)
}

type ESGPayload struct {
	ApplicationID        string               `json:"applicationId"`
	SubmittedAt          string               `json:"submittedAt"`
	User                 User                 `json:"user"`
	Assessment           models.ESGAssessment `json:"assessment"`
	CompletionPercentage int                  `json:"completionPercentage"`
	WorkflowType         string               `json:"workflow_type"`
}

func buildESG(a *esg.Assessment, user User, at time.Time) ESGPayload {
	rec := a.Record()
	rec.CreatedAt = at.UTC()
	return ESGPayload{
		ApplicationID:        a.ApplicationID,
		SubmittedAt:          timestamp(at),
		User:                 user,
		Assessment:           rec,
		CompletionPercentage: rec.CompletionPercentage,
		WorkflowType:         WorkflowESG,
	}
}

// --- loan-plan ---

type LoanPlanRequest struct {
	ApplicationID    string      `json:"applicationId"`
	UserID           string      `json:"userId"`
	LoanAmount       interface{} `json:"loanAmount"`
	TermMonths       interface{} `json:"termMonths"`
	InterestRate     interface{} `json:"interestRate"`
	MonthlyPayment   interface{} `json:"monthlyPayment"`
	PaymentFrequency string      `json:"paymentFrequency"`
	StartDate        string      `json:"startDate"`
	Purpose          string      `json:"purpose"`
}

type PlanData struct {
	LoanAmount       float64 `json:"loan_amount"`
	TermMonths       int     `json:"term_months"`
	InterestRate     float64 `json:"interest_rate"`
	MonthlyPayment   float64 `json:"monthly_payment"`
	TotalRepayment   float64 `json:"total_repayment"`
	PaymentFrequency string  `json:"payment_frequency"`
	StartDate        *string `json:"start_date"`
	Purpose          string  `json:"purpose"`
}

type LoanPlanPayload struct {
	ApplicationID string   `json:"applicationId"`
	SubmittedAt   string   `json:"submittedAt"`
	User          User     `json:"user"`
	PlanData      PlanData `json:"planData"`
	WorkflowType  string   `json:"workflow_type"`
}

func buildLoanPlan(req LoanPlanRequest, user User, submittedAt string) LoanPlanPayload {
	term := ParseInt(req.TermMonths)
	monthly := decimal.NewFromFloat(ParseNumber(req.MonthlyPayment)).Round(2)
	total := monthly.Mul(decimal.NewFromInt(int64(term)))

	frequency := strings.ToLower(TrimID(req.PaymentFrequency))
	if frequency == "" {
		frequency = "monthly"
	}

	return LoanPlanPayload{
		ApplicationID: TrimID(req.ApplicationID),
		SubmittedAt:   submittedAt,
		User:          user,
		PlanData: PlanData{
			LoanAmount:       ParseNumber(req.LoanAmount),
			TermMonths:       term,
			InterestRate:     ParseNumber(req.InterestRate),
			MonthlyPayment:   monthly.InexactFloat64(),
			TotalRepayment:   total.InexactFloat64(),
			PaymentFrequency: frequency,
			StartDate:        NullableString(req.StartDate),
			Purpose:          TrimText(req.Purpose),
		},
		WorkflowType: WorkflowLoanPlan,
	}
}
