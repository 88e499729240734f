// Package aggregator stitches loan applications and their related borrower
// records into officer-facing view models.
package aggregator

import (
	"strings"
	"time"

	"loan-origination/internal/models"
)

// Risk levels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

const unknownApplicant = "Unknown Applicant"

// TableSlices holds raw rows from each table. Related slices may contain
// several rows per user; the newest by CreatedAt is used.
type TableSlices struct {
	Applications  []models.LoanApplication
	Profiles      []models.UserProfile
	Employment    []models.Employment
	Addresses     []models.Address
	FinancialInfo []models.FinancialInfo
	RiskProfiles  []models.RiskProfile
	Assets        []models.AssetDeclaration
}

// Aggregate left-joins every related table onto the applications, keeping
// their order. Missing related rows become zero values and an empty asset
// list.
func Aggregate(t TableSlices) []models.ApplicationView {
	profiles := make(map[string]models.UserProfile, len(t.Profiles))
	for _, p := range t.Profiles {
		if _, ok := profiles[p.ID]; !ok {
			profiles[p.ID] = p
		}
	}

	employment := latestBy(t.Employment,
		func(e models.Employment) string { return e.UserID },
		func(e models.Employment) time.Time { return e.CreatedAt })
	addresses := latestBy(t.Addresses,
		func(a models.Address) string { return a.UserID },
		func(a models.Address) time.Time { return a.CreatedAt })
	financial := latestBy(t.FinancialInfo,
		func(f models.FinancialInfo) string { return f.UserID },
		func(f models.FinancialInfo) time.Time { return f.CreatedAt })
	risk := latestBy(t.RiskProfiles,
		func(r models.RiskProfile) string { return r.UserID },
		func(r models.RiskProfile) time.Time { return r.CreatedAt })

	assets := make(map[string][]models.AssetDeclaration)
	for _, a := range t.Assets {
		assets[a.ApplicationID] = append(assets[a.ApplicationID], a)
	}

	views := make([]models.ApplicationView, 0, len(t.Applications))
	for _, app := range t.Applications {
		v := models.ApplicationView{
			LoanApplication: app,
			Profile:         profiles[app.UserID],
			Employment:      employment[app.UserID],
			Address:         addresses[app.UserID],
			Financial:       financial[app.UserID],
			RiskProfile:     risk[app.UserID],
			Assets:          assets[app.ID],
		}
		if v.Assets == nil {
			v.Assets = []models.AssetDeclaration{}
		}

		v.ApplicantName = strings.TrimSpace(v.Profile.FullName())
		if v.ApplicantName == "" {
			v.ApplicantName = unknownApplicant
		}

		v.CreditScore = creditScore(v.RiskProfile, v.Financial)
		grade := ""
		if v.RiskProfile.RiskGrade != nil {
			grade = *v.RiskProfile.RiskGrade
		}
		v.RiskLevel = RiskLevel(grade, v.CreditScore)

		for _, a := range v.Assets {
			v.TotalAssetValue += a.EstimatedValue
		}
		views = append(views, v)
	}
	return views
}

// RiskLevel returns the explicit grade when there is one, otherwise a bucket
// of score: 700 and above is Low, 600 to 699 Medium, anything lower High.
func RiskLevel(grade string, score int) string {
	switch g := strings.ToLower(strings.TrimSpace(grade)); g {
	case "":
	case "low":
		return RiskLow
	case "medium", "moderate":
		return RiskMedium
	case "high":
		return RiskHigh
	default:
		return strings.TrimSpace(grade)
	}

	switch {
	case score >= 700:
		return RiskLow
	case score >= 600:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func creditScore(r models.RiskProfile, f models.FinancialInfo) int {
	if r.CreditScore != nil {
		return *r.CreditScore
	}
	if f.CreditScore != nil {
		return *f.CreditScore
	}
	return 0
}

func latestBy[T any](rows []T, key func(T) string, createdAt func(T) time.Time) map[string]T {
	out := make(map[string]T, len(rows))
	for _, row := range rows {
		k := key(row)
		if cur, ok := out[k]; ok && !createdAt(row).After(createdAt(cur)) {
			continue
		}
		out[k] = row
	}
	return out
}

// QueueSummary backs the officer queue-triage dashboard.
type QueueSummary struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"byStatus"`
	ByRiskLevel    map[string]int `json:"byRiskLevel"`
	AwaitingReview int            `json:"awaitingReview"`
	TotalRequested float64        `json:"totalRequested"`
	AverageScore   int            `json:"averageCreditScore"`
}

// Summarize counts views by status and risk level.
func Summarize(views []models.ApplicationView) QueueSummary {
	s := QueueSummary{
		Total:       len(views),
		ByStatus:    make(map[string]int),
		ByRiskLevel: make(map[string]int),
	}

	scored, scoreSum := 0, 0
	for _, v := range views {
		s.ByStatus[v.Status]++
		s.ByRiskLevel[v.RiskLevel]++
		s.TotalRequested += v.LoanAmount
		if v.Status == models.StatusPending || v.Status == models.StatusUnderReview {
			s.AwaitingReview++
		}
		if v.CreditScore > 0 {
			scored++
			scoreSum += v.CreditScore
		}
	}
	if scored > 0 {
		s.AverageScore = scoreSum / scored
	}
	return s
}
