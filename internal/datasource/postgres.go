// internal/datasource/postgres.go
package datasource

import (
	"context"
	"fmt"
	"time"

	"loan-origination/internal/models"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

var (
	applicationColumns = []string{
		"id", "user_id", "loan_amount", "loan_purpose", "status", "ai_decision", "ai_confidence",
		"documents_completed", "esg_completed", "assets_completed", "created_at", "updated_at",
	}
	profileColumns    = []string{"id", "first_name", "last_name", "email", "mobile_number"}
	employmentColumns = []string{
		"user_id", "employment_type", "employer_name", "job_title", "monthly_income", "years_employed", "created_at",
	}
	addressColumns = []string{
		"user_id", "street", "barangay", "city", "province", "region", "postal_code", "created_at",
	}
	financialColumns = []string{
		"user_id", "monthly_income", "monthly_expenses", "existing_loans", "credit_score", "bank_name", "created_at",
	}
	riskColumns  = []string{"user_id", "credit_score", "risk_grade", "risk_factors", "created_at"}
	assetColumns = []string{
		"id", "application_id", "user_id", "asset_type", "description", "estimated_value", "age", "condition", "created_at",
	}
	esgColumns = []string{
		"application_id", "environment", "social", "governance", "stability_1", "stability_2", "stability_3",
		"completion_percentage", "created_at",
	}
	locationColumns = []string{"id", "name", "type", "status", "lat", "lng", "phone", "address"}
)

// Postgres reads the borrower tables with one batched IN query per call.
type Postgres struct {
	db     *sqlx.DB
	tables Tables
}

// NewPostgres uses DefaultTables when tables is the zero value.
func NewPostgres(db *sqlx.DB, tables Tables) *Postgres {
	if tables.Assets == "" {
		tables.Assets = DefaultTables().Assets
	}
	return &Postgres{db: db, tables: tables}
}

func (p *Postgres) Applications(ctx context.Context, filter ApplicationFilter) ([]models.LoanApplication, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(applicationColumns...)
	sb.From(TableApplications)

	var where []string
	if len(filter.IDs) > 0 {
		where = append(where, sb.In("id", sqlbuilder.Flatten(filter.IDs)...))
	}
	if filter.Status != "" {
		where = append(where, sb.Equal("status", filter.Status))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("created_at").Desc()
	if filter.Limit > 0 {
		sb.Limit(filter.Limit)
	}

	var rows []applicationRow
	if err := p.selectInto(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("select %s: %w", TableApplications, err)
	}
	return toModels[applicationRow, models.LoanApplication](rows), nil
}

func (p *Postgres) Profiles(ctx context.Context, userIDs []string) ([]models.UserProfile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(profileColumns...)
	sb.From(TableProfiles)
	sb.Where(sb.In("id", sqlbuilder.Flatten(userIDs)...))

	var rows []profileRow
	if err := p.selectInto(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("select %s: %w", TableProfiles, err)
	}
	return toModels[profileRow, models.UserProfile](rows), nil
}

func (p *Postgres) Employment(ctx context.Context, userIDs []string) ([]models.Employment, error) {
	var rows []employmentRow
	if err := p.selectByUser(ctx, &rows, TableEmployment, employmentColumns, userIDs); err != nil {
		return nil, err
	}
	return toModels[employmentRow, models.Employment](rows), nil
}

func (p *Postgres) Addresses(ctx context.Context, userIDs []string) ([]models.Address, error) {
	var rows []addressRow
	if err := p.selectByUser(ctx, &rows, TableAddresses, addressColumns, userIDs); err != nil {
		return nil, err
	}
	return toModels[addressRow, models.Address](rows), nil
}

func (p *Postgres) FinancialInfo(ctx context.Context, userIDs []string) ([]models.FinancialInfo, error) {
	var rows []financialRow
	if err := p.selectByUser(ctx, &rows, TableFinancialInfo, financialColumns, userIDs); err != nil {
		return nil, err
	}
	return toModels[financialRow, models.FinancialInfo](rows), nil
}

func (p *Postgres) RiskProfiles(ctx context.Context, userIDs []string) ([]models.RiskProfile, error) {
	var rows []riskRow
	if err := p.selectByUser(ctx, &rows, TableRiskProfiles, riskColumns, userIDs); err != nil {
		return nil, err
	}
	return toModels[riskRow, models.RiskProfile](rows), nil
}

func (p *Postgres) Assets(ctx context.Context, applicationIDs []string) ([]models.AssetDeclaration, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(assetColumns...)
	sb.From(p.tables.Assets)
	sb.Where(sb.In("application_id", sqlbuilder.Flatten(applicationIDs)...))
	sb.OrderBy("created_at").Asc()

	var rows []assetRow
	if err := p.selectInto(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("select %s: %w", p.tables.Assets, err)
	}
	return toModels[assetRow, models.AssetDeclaration](rows), nil
}

func (p *Postgres) ESGAssessments(ctx context.Context, applicationIDs []string) ([]models.ESGAssessment, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(esgColumns...)
	sb.From(TableESG)
	sb.Where(sb.In("application_id", sqlbuilder.Flatten(applicationIDs)...))
	sb.OrderBy("created_at").Desc()

	var rows []esgRow
	if err := p.selectInto(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("select %s: %w", TableESG, err)
	}
	return toModels[esgRow, models.ESGAssessment](rows), nil
}

func (p *Postgres) UpdateApplicationStatus(ctx context.Context, id, status string) (bool, error) {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(TableApplications)
	ub.Set(ub.Assign("status", status), ub.Assign("updated_at", time.Now().UTC()))
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", TableApplications, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s: %w", TableApplications, err)
	}
	return n == 1, nil
}

func (p *Postgres) Locations(ctx context.Context) ([]models.Location, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(locationColumns...)
	sb.From(TableLocations)
	sb.OrderBy("name").Asc()

	var rows []locationRow
	if err := p.selectInto(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("select %s: %w", TableLocations, err)
	}
	return toModels[locationRow, models.Location](rows), nil
}

func (p *Postgres) selectByUser(ctx context.Context, dest interface{}, table string, columns, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.In("user_id", sqlbuilder.Flatten(userIDs)...))
	sb.OrderBy("created_at").Desc()

	if err := p.selectInto(ctx, dest, sb); err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

func (p *Postgres) selectInto(ctx context.Context, dest interface{}, sb *sqlbuilder.SelectBuilder) error {
	query, args := sb.Build()
	return p.db.SelectContext(ctx, dest, query, args...)
}
