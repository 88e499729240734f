// internal/aggregator/service.go
package aggregator

import (
	"context"
	"strings"
	"sync"

	"loan-origination/internal/common/config"
	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/metrics"
	"loan-origination/internal/datasource"
	"loan-origination/internal/models"
)

// ApplicationQuery selects the queue to aggregate. Zero fields are ignored.
type ApplicationQuery struct {
	IDs    []string
	Status string
	Limit  int
}

// Service reads through a DataSource. Only the application fetch can fail a
// call; every related-table failure is logged and read as "no rows".
type Service struct {
	ds           datasource.DataSource
	allowed      map[string]bool
	defaultLimit int
	log          logger.Logger
}

func NewService(ds datasource.DataSource, cfg config.OfficerConfig, log logger.Logger) *Service {
	var allowed map[string]bool
	if len(cfg.AllowedApplicationIDs) > 0 {
		allowed = make(map[string]bool, len(cfg.AllowedApplicationIDs))
		for _, id := range cfg.AllowedApplicationIDs {
			allowed[strings.TrimSpace(id)] = true
		}
	}
	return &Service{
		ds:           ds,
		allowed:      allowed,
		defaultLimit: cfg.DefaultPageSize,
		log:          log.WithFields(map[string]interface{}{"component": "aggregator"}),
	}
}

// ListApplications returns one view per matching application, newest first.
func (s *Service) ListApplications(ctx context.Context, q ApplicationQuery) ([]models.ApplicationView, error) {
	filter := datasource.ApplicationFilter{IDs: q.IDs, Status: q.Status, Limit: q.Limit}
	if filter.Limit <= 0 && len(filter.IDs) == 0 {
		filter.Limit = s.defaultLimit
	}

	apps, err := s.ds.Applications(ctx, filter)
	if err != nil {
		s.log.Error("application fetch failed", map[string]interface{}{"error": err, "ids": q.IDs})
		return nil, apperrors.NewDataFetchFailedError(datasource.TableApplications, err)
	}
	if len(apps) == 0 {
		return []models.ApplicationView{}, nil
	}

	return Aggregate(s.fetchRelated(ctx, apps)), nil
}

// GetApplication returns APPLICATION_NOT_FOUND for an unknown id.
func (s *Service) GetApplication(ctx context.Context, id string) (*models.ApplicationView, error) {
	views, err := s.ListApplications(ctx, ApplicationQuery{IDs: []string{id}})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, apperrors.NewApplicationNotFoundError(id)
	}
	return &views[0], nil
}

// CanUpdate reports whether id passes the configured allow-list. An empty
// list allows every application.
func (s *Service) CanUpdate(id string) bool {
	return s.allowed == nil || s.allowed[id]
}

// UpdateStatus writes status to a single application. An id outside the
// allow-list returns false without touching the store. The caller re-fetches
// to observe the change.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	log := s.log.WithFields(map[string]interface{}{"applicationId": id, "status": status})

	if !s.CanUpdate(id) {
		log.Warn("status update outside allow-list", nil)
		return false, nil
	}

	ok, err := s.ds.UpdateApplicationStatus(ctx, id, status)
	if err != nil {
		log.Error("status update failed", map[string]interface{}{"error": err})
		return false, apperrors.NewStatusUpdateFailedError(id, err)
	}
	if !ok {
		log.Warn("status update matched no application", nil)
		return false, nil
	}
	log.Info("application status updated", nil)
	return true, nil
}

// fetchRelated issues one batched query per related table concurrently.
func (s *Service) fetchRelated(ctx context.Context, apps []models.LoanApplication) TableSlices {
	userIDs := distinct(apps, func(a models.LoanApplication) string { return a.UserID })
	appIDs := distinct(apps, func(a models.LoanApplication) string { return a.ID })

	out := TableSlices{Applications: apps}

	// each fetch writes a distinct field of out
	var wg sync.WaitGroup
	run := func(table string, fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetch(); err != nil {
				metrics.AggregatorSubqueryFailures.WithLabelValues(table).Inc()
				s.log.Warn("related table fetch failed, using empty result", map[string]interface{}{
					"table": table,
					"error": err,
				})
			}
		}()
	}

	run(datasource.TableProfiles, func() (err error) {
		out.Profiles, err = s.ds.Profiles(ctx, userIDs)
		return err
	})
	run(datasource.TableEmployment, func() (err error) {
		out.Employment, err = s.ds.Employment(ctx, userIDs)
		return err
	})
	run(datasource.TableAddresses, func() (err error) {
		out.Addresses, err = s.ds.Addresses(ctx, userIDs)
		return err
	})
	run(datasource.TableFinancialInfo, func() (err error) {
		out.FinancialInfo, err = s.ds.FinancialInfo(ctx, userIDs)
		return err
	})
	run(datasource.TableRiskProfiles, func() (err error) {
		out.RiskProfiles, err = s.ds.RiskProfiles(ctx, userIDs)
		return err
	})
	run(datasource.TableAssets, func() (err error) {
		out.Assets, err = s.ds.Assets(ctx, appIDs)
		return err
	})

	wg.Wait()
	return out
}

func distinct[T any](rows []T, key func(T) string) []string {
	seen := make(map[string]bool, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
