// internal/datasource/fixture.go
package datasource

import (
	"context"
	"sort"
	"sync"
	"time"

	"loan-origination/internal/models"
)

// Dataset is the raw content of every table the fixture serves.
type Dataset struct {
	Applications  []models.LoanApplication
	Profiles      []models.UserProfile
	Employment    []models.Employment
	Addresses     []models.Address
	FinancialInfo []models.FinancialInfo
	RiskProfiles  []models.RiskProfile
	Assets        []models.AssetDeclaration
	ESG           []models.ESGAssessment
	Locations     []models.Location
}

// Fixture serves a Dataset from memory with the same ordering rules as
// Postgres. Safe for concurrent use.
type Fixture struct {
	mu   sync.RWMutex
	data Dataset
	now  func() time.Time
}

func NewFixture(data Dataset) *Fixture {
	return &Fixture{data: data, now: time.Now}
}

func (f *Fixture) Applications(ctx context.Context, filter ApplicationFilter) ([]models.LoanApplication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids := toSet(filter.IDs)
	var out []models.LoanApplication
	for _, app := range f.data.Applications {
		if len(ids) > 0 && !ids[app.ID] {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, app)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *Fixture) Profiles(ctx context.Context, userIDs []string) ([]models.UserProfile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filterRows(ctx, f.data.Profiles, userIDs, func(p models.UserProfile) string { return p.ID }, nil)
}

func (f *Fixture) Employment(ctx context.Context, userIDs []string) ([]models.Employment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filterRows(ctx, f.data.Employment, userIDs,
		func(e models.Employment) string { return e.UserID },
		func(e models.Employment) time.Time { return e.CreatedAt })
}

func (f *Fixture) Addresses(ctx context.Context, userIDs []string) ([]models.Address, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filterRows(ctx, f.data.Addresses, userIDs,
		func(a models.Address) string { return a.UserID },
		func(a models.Address) time.Time { return a.CreatedAt })
}

func (f *Fixture) FinancialInfo(ctx context.Context, userIDs []string) ([]models.FinancialInfo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filterRows(ctx, f.data.FinancialInfo, userIDs,
		func(fi models.FinancialInfo) string { return fi.UserID },
		func(fi models.FinancialInfo) time.Time { return fi.CreatedAt })
}

func (f *Fixture) RiskProfiles(ctx context.Context, userIDs []string) ([]models.RiskProfile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filterRows(ctx, f.data.RiskProfiles, userIDs,
		func(r models.RiskProfile) string { return r.UserID },
		func(r models.RiskProfile) time.Time { return r.CreatedAt })
}

func (f *Fixture) Assets(ctx context.Context, applicationIDs []string) ([]models.AssetDeclaration, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	rows, err := filterRows(ctx, f.data.Assets, applicationIDs,
		func(a models.AssetDeclaration) string { return a.ApplicationID }, nil)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows, err
}

func (f *Fixture) ESGAssessments(ctx context.Context, applicationIDs []string) ([]models.ESGAssessment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return filterRows(ctx, f.data.ESG, applicationIDs,
		func(e models.ESGAssessment) string { return e.ApplicationID },
		func(e models.ESGAssessment) time.Time { return e.CreatedAt })
}

func (f *Fixture) UpdateApplicationStatus(ctx context.Context, id, status string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.data.Applications {
		if f.data.Applications[i].ID == id {
			f.data.Applications[i].Status = status
			f.data.Applications[i].UpdatedAt = f.now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (f *Fixture) Locations(ctx context.Context) ([]models.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := append([]models.Location(nil), f.data.Locations...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// filterRows keeps rows whose key is in keys, newest first when createdAt is
// given. An empty key list matches nothing.
func filterRows[T any](ctx context.Context, rows []T, keys []string, key func(T) string, createdAt func(T) time.Time) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	set := toSet(keys)
	var out []T
	for _, row := range rows {
		if set[key(row)] {
			out = append(out, row)
		}
	}
	if createdAt != nil {
		sort.SliceStable(out, func(i, j int) bool { return createdAt(out[i]).After(createdAt(out[j])) })
	}
	return out, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
