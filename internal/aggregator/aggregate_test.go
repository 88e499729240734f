package aggregator

import (
	"encoding/json"
	"testing"
	"time"

	"loan-origination/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
func at(day int) time.Time    { return time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC) }

func TestRiskLevel_ScoreBuckets(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{score: 850, want: RiskLow},
		{score: 700, want: RiskLow},
		{score: 699, want: RiskMedium},
		{score: 600, want: RiskMedium},
		{score: 599, want: RiskHigh},
		{score: 0, want: RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel("", tt.score), "score %d", tt.score)
	}
}

func TestRiskLevel_ExplicitGradeWins(t *testing.T) {
	assert.Equal(t, RiskHigh, RiskLevel("high", 800))
	assert.Equal(t, RiskLow, RiskLevel(" LOW ", 300))
	assert.Equal(t, RiskMedium, RiskLevel("Moderate", 300))
	assert.Equal(t, "B+", RiskLevel("B+", 300))
	assert.Equal(t, RiskHigh, RiskLevel("   ", 300))
}

func TestAggregate_MissingRelatedRowsRenderAsEmptyObjects(t *testing.T) {
	views := Aggregate(TableSlices{
		Applications: []models.LoanApplication{{ID: "LA-1", UserID: "u-1", Status: "pending"}},
	})
	require.Len(t, views, 1)

	raw, err := json.Marshal(views[0])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, key := range []string{"employment", "address", "financial", "riskProfile", "profile"} {
		obj, ok := decoded[key].(map[string]interface{})
		require.True(t, ok, "%s should be an object, got %v", key, decoded[key])
		assert.Empty(t, obj, key)
	}
	assets, ok := decoded["assets"].([]interface{})
	require.True(t, ok, "assets should be an array, got %v", decoded["assets"])
	assert.Empty(t, assets)

	assert.Equal(t, "Unknown Applicant", decoded["applicantName"])
	assert.Equal(t, RiskHigh, decoded["riskLevel"])
	assert.Equal(t, "LA-1", decoded["id"])
}

func TestAggregate_JoinsAndPicksNewestRelatedRow(t *testing.T) {
	views := Aggregate(TableSlices{
		Applications: []models.LoanApplication{
			{ID: "LA-2", UserID: "u-2", LoanAmount: 50000},
			{ID: "LA-1", UserID: "u-1", LoanAmount: 25000},
		},
		Profiles: []models.UserProfile{
			{ID: "u-1", FirstName: "Maria", LastName: "Santos"},
			{ID: "u-2", FirstName: "Jose"},
		},
		Employment: []models.Employment{
			{UserID: "u-1", EmployerName: "old", CreatedAt: at(1)},
			{UserID: "u-1", EmployerName: "current", CreatedAt: at(9)},
			{UserID: "u-1", EmployerName: "middle", CreatedAt: at(5)},
		},
		Addresses: []models.Address{{UserID: "u-2", City: "Cebu City", CreatedAt: at(1)}},
		FinancialInfo: []models.FinancialInfo{
			{UserID: "u-1", CreditScore: intPtr(710), CreatedAt: at(1)},
			{UserID: "u-2", CreditScore: intPtr(650), CreatedAt: at(1)},
		},
		RiskProfiles: []models.RiskProfile{
			{UserID: "u-2", CreditScore: intPtr(590), CreatedAt: at(2)},
		},
		Assets: []models.AssetDeclaration{
			{ID: "AD-1", ApplicationID: "LA-1", EstimatedValue: 30000},
			{ID: "AD-2", ApplicationID: "LA-1", EstimatedValue: 12000},
			{ID: "AD-X", ApplicationID: "LA-404", EstimatedValue: 99999},
		},
	})
	require.Len(t, views, 2)

	// order follows the application slice
	assert.Equal(t, "LA-2", views[0].ID)
	assert.Equal(t, "LA-1", views[1].ID)

	jose, maria := views[0], views[1]

	assert.Equal(t, "Maria Santos", maria.ApplicantName)
	assert.Equal(t, "current", maria.Employment.EmployerName)
	assert.Empty(t, maria.Address.City)
	assert.Equal(t, 710, maria.CreditScore)
	assert.Equal(t, RiskLow, maria.RiskLevel)
	require.Len(t, maria.Assets, 2)
	assert.Equal(t, 42000.0, maria.TotalAssetValue)

	assert.Equal(t, "Jose", jose.ApplicantName)
	assert.Equal(t, "Cebu City", jose.Address.City)
	assert.Equal(t, 590, jose.CreditScore, "risk profile score wins over financial info")
	assert.Equal(t, RiskHigh, jose.RiskLevel)
	assert.NotNil(t, jose.Assets)
	assert.Empty(t, jose.Assets)
}

func TestAggregate_ExplicitRiskGrade(t *testing.T) {
	views := Aggregate(TableSlices{
		Applications: []models.LoanApplication{{ID: "LA-1", UserID: "u-1"}},
		RiskProfiles: []models.RiskProfile{{UserID: "u-1", CreditScore: intPtr(720), RiskGrade: strPtr("high")}},
	})
	require.Len(t, views, 1)
	assert.Equal(t, RiskHigh, views[0].RiskLevel)
}

func TestAggregate_NoApplications(t *testing.T) {
	views := Aggregate(TableSlices{})
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestSummarize(t *testing.T) {
	views := []models.ApplicationView{
		{LoanApplication: models.LoanApplication{Status: "pending", LoanAmount: 10000}, RiskLevel: RiskLow, CreditScore: 720},
		{LoanApplication: models.LoanApplication{Status: "under_review", LoanAmount: 20000}, RiskLevel: RiskHigh, CreditScore: 580},
		{LoanApplication: models.LoanApplication{Status: "approved", LoanAmount: 5000}, RiskLevel: RiskLow},
	}

	s := Summarize(views)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.AwaitingReview)
	assert.Equal(t, 35000.0, s.TotalRequested)
	assert.Equal(t, map[string]int{"pending": 1, "under_review": 1, "approved": 1}, s.ByStatus)
	assert.Equal(t, map[string]int{RiskLow: 2, RiskHigh: 1}, s.ByRiskLevel)
	assert.Equal(t, 650, s.AverageScore)
}
