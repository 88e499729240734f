// Package datasource abstracts the borrower tables behind one interface with
// a Postgres implementation and an in-memory fixture for demos and tests.
package datasource

import (
	"context"
	"fmt"

	"loan-origination/internal/common/config"
	"loan-origination/internal/models"

	"github.com/jmoiron/sqlx"
)

// Table names.
const (
	TableApplications  = "preloan_applications"
	TableProfiles      = "users_profiles"
	TableEmployment    = "user_employment"
	TableAddresses     = "user_addresses"
	TableFinancialInfo = "user_financial_info"
	TableRiskProfiles  = "preloan_risk_profiles"
	TableAssets        = "assets_declarations"
	TableESG           = "esg_assessments"
	TableLocations     = "locations"
)

// Tables holds the table names that differ between deployments.
type Tables struct {
	Assets string
}

func DefaultTables() Tables {
	return Tables{Assets: TableAssets}
}

// ApplicationFilter selects loan applications. Zero fields are ignored.
type ApplicationFilter struct {
	IDs    []string
	Status string
	Limit  int
}

// DataSource reads borrower records. Related-table methods return every
// matching row, newest first; picking the current row is the caller's job.
type DataSource interface {
	Applications(ctx context.Context, filter ApplicationFilter) ([]models.LoanApplication, error)
	Profiles(ctx context.Context, userIDs []string) ([]models.UserProfile, error)
	Employment(ctx context.Context, userIDs []string) ([]models.Employment, error)
	Addresses(ctx context.Context, userIDs []string) ([]models.Address, error)
	FinancialInfo(ctx context.Context, userIDs []string) ([]models.FinancialInfo, error)
	RiskProfiles(ctx context.Context, userIDs []string) ([]models.RiskProfile, error)
	Assets(ctx context.Context, applicationIDs []string) ([]models.AssetDeclaration, error)
	ESGAssessments(ctx context.Context, applicationIDs []string) ([]models.ESGAssessment, error)
	// UpdateApplicationStatus reports whether a row was updated.
	UpdateApplicationStatus(ctx context.Context, id, status string) (bool, error)
	Locations(ctx context.Context) ([]models.Location, error)
}

// New picks the implementation named by data_source.mode. db may be nil in
// fixture mode.
func New(cfg config.DataSourceConfig, db *sqlx.DB) (DataSource, error) {
	switch cfg.Mode {
	case config.DataSourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres data source requires a database connection")
		}
		return NewPostgres(db, Tables{Assets: cfg.AssetsTable}), nil
	case config.DataSourceFixture:
		return NewFixture(DemoDataset()), nil
	default:
		return nil, fmt.Errorf("unknown data source mode %q", cfg.Mode)
	}
}
