// internal/datasource/demo.go
package datasource

import (
	"time"

	"loan-origination/internal/models"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func day(d int) time.Time         { return time.Date(2024, time.May, d, 9, 0, 0, 0, time.UTC) }

// DemoDataset is the sample borrower book served in fixture mode.
func DemoDataset() Dataset {
	return Dataset{
		Applications: []models.LoanApplication{
			{
				ID: "LA-2024-0001", UserID: "u-maria", LoanAmount: 25000, LoanPurpose: "Sari-sari store inventory",
				Status: models.StatusUnderReview, AIDecision: strPtr("approve"), AIConfidence: floatPtr(0.87),
				DocumentsCompleted: true, ESGCompleted: true, AssetsCompleted: true,
				CreatedAt: day(2), UpdatedAt: day(3),
			},
			{
				ID: "LA-2024-0002", UserID: "u-jose", LoanAmount: 50000, LoanPurpose: "Tricycle purchase",
				Status: models.StatusPending, DocumentsCompleted: true, AssetsCompleted: true,
				CreatedAt: day(4), UpdatedAt: day(4),
			},
			{
				ID: "LA-2024-0003", UserID: "u-ana", LoanAmount: 15000, LoanPurpose: "Online selling equipment",
				Status: models.StatusNeedsDocuments, AIDecision: strPtr("review"), AIConfidence: floatPtr(0.55),
				CreatedAt: day(6), UpdatedAt: day(7),
			},
			{
				ID: "LA-2024-0004", UserID: "u-ramon", LoanAmount: 80000, LoanPurpose: "Fishing boat repair",
				Status: models.StatusPending,
				CreatedAt: day(8), UpdatedAt: day(8),
			},
		},
		Profiles: []models.UserProfile{
			{ID: "u-maria", FirstName: "Maria", LastName: "Santos", Email: "maria.santos@example.ph", MobileNumber: "+639171234567"},
			{ID: "u-jose", FirstName: "Jose", LastName: "Reyes", Email: "jose.reyes@example.ph", MobileNumber: "+639189876543"},
			{ID: "u-ana", FirstName: "Ana", LastName: "Cruz", Email: "ana.cruz@example.ph", MobileNumber: "+639201112233"},
		},
		Employment: []models.Employment{
			{UserID: "u-maria", EmploymentType: "self_employed", EmployerName: "Santos Sari-Sari", JobTitle: "Owner", MonthlyIncome: 18000, YearsEmployed: 6, CreatedAt: day(1)},
			{UserID: "u-jose", EmploymentType: "gig_worker", EmployerName: "Grab", JobTitle: "Driver", MonthlyIncome: 22000, YearsEmployed: 2, CreatedAt: day(1)},
			{UserID: "u-jose", EmploymentType: "gig_worker", EmployerName: "Angkas", JobTitle: "Rider", MonthlyIncome: 15000, YearsEmployed: 1, CreatedAt: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
			{UserID: "u-ana", EmploymentType: "freelancer", EmployerName: "", JobTitle: "Virtual Assistant", MonthlyIncome: 20000, YearsEmployed: 3, CreatedAt: day(5)},
		},
		Addresses: []models.Address{
			{UserID: "u-maria", Street: "12 Mabini St", Barangay: "San Roque", City: "Marikina", Province: "Metro Manila", Region: "NCR", PostalCode: "1801", CreatedAt: day(1)},
			{UserID: "u-jose", Street: "45 Rizal Ave", Barangay: "Poblacion", City: "Cebu City", Province: "Cebu", Region: "VII", PostalCode: "6000", CreatedAt: day(1)},
		},
		FinancialInfo: []models.FinancialInfo{
			{UserID: "u-maria", MonthlyIncome: 18000, MonthlyExpenses: 9000, ExistingLoans: 0, CreditScore: intPtr(712), BankName: "Landbank", CreatedAt: day(1)},
			{UserID: "u-jose", MonthlyIncome: 22000, MonthlyExpenses: 14000, ExistingLoans: 10000, CreditScore: intPtr(640), BankName: "GCash", CreatedAt: day(1)},
			{UserID: "u-ana", MonthlyIncome: 20000, MonthlyExpenses: 15000, ExistingLoans: 5000, CreditScore: intPtr(580), CreatedAt: day(5)},
		},
		RiskProfiles: []models.RiskProfile{
			{UserID: "u-maria", CreditScore: intPtr(712), RiskFactors: "stable income", CreatedAt: day(2)},
			{UserID: "u-jose", CreditScore: intPtr(640), RiskGrade: strPtr("medium"), RiskFactors: "existing loan", CreatedAt: day(4)},
		},
		Assets: []models.AssetDeclaration{
			{ID: "AD-1", ApplicationID: "LA-2024-0001", UserID: "u-maria", AssetType: "inventory", Description: "Store stock", EstimatedValue: 30000, Age: 0, Condition: "good", CreatedAt: day(2)},
			{ID: "AD-2", ApplicationID: "LA-2024-0001", UserID: "u-maria", AssetType: "appliance", Description: "Chest freezer", EstimatedValue: 12000, Age: 3, Condition: "fair", CreatedAt: day(2)},
			{ID: "AD-3", ApplicationID: "LA-2024-0002", UserID: "u-jose", AssetType: "vehicle", Description: "Motorcycle", EstimatedValue: 75000, Age: 4, Condition: "good", CreatedAt: day(4)},
		},
		ESG: []models.ESGAssessment{
			{
				ApplicationID:        "LA-2024-0001",
				Environment:          models.ESGCategory{Questions: []string{"How does your business manage waste?", "I minimize plastic use", "I conserve electricity"}, Responses: []string{"We segregate and sell recyclables", "4", "5"}},
				Social:               models.ESGCategory{Questions: []string{"How does your business help your community?", "I treat workers fairly", "I support local suppliers"}, Responses: []string{"Credit for neighbors", "5", "5"}},
				Governance:           models.ESGCategory{Questions: []string{"How do you keep business records?", "I separate personal and business money", "I pay taxes and permits on time"}, Responses: []string{"Notebook ledger", "3", "4"}},
				Stability1:           models.ESGCategory{Questions: []string{"What would you do if sales dropped?", "I have emergency savings"}, Responses: []string{"Reduce stock, sell online", "3"}},
				Stability2:           models.ESGCategory{Questions: []string{"Who helps run the business?", "My household supports the business"}, Responses: []string{"My daughter", "4"}},
				Stability3:           models.ESGCategory{Questions: []string{"What are your plans for the next year?", "I am confident about repayment"}, Responses: []string{"Add a second freezer", "5"}},
				CompletionPercentage: 100,
				CreatedAt:            day(3),
			},
		},
		Locations: []models.Location{
			{ID: "BR-MNL", Name: "Manila Branch", Type: models.LocationBranch, Status: "active", Lat: 14.5995, Lng: 120.9842, Phone: "+6328123456", Address: "Ermita, Manila"},
			{ID: "BR-QC", Name: "Quezon City Branch", Type: models.LocationBranch, Status: "active", Lat: 14.6760, Lng: 121.0437, Phone: "+6328654321", Address: "Diliman, Quezon City"},
			{ID: "BR-CEB", Name: "Cebu Branch", Type: models.LocationBranch, Status: "active", Lat: 10.3157, Lng: 123.8854, Phone: "+63322555111", Address: "Fuente Osmeña, Cebu City"},
			{ID: "AG-MRK", Name: "Marikina Agent", Type: models.LocationAgent, Status: "active", Lat: 14.6507, Lng: 121.1029, Phone: "+639175550001", Address: "San Roque, Marikina"},
			{ID: "AG-DVO", Name: "Davao Agent", Type: models.LocationAgent, Status: "inactive", Lat: 7.1907, Lng: 125.4553, Phone: "+639175550002", Address: "Poblacion, Davao City"},
		},
	}
}
