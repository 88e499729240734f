// Package locator serves the branch and agent list through an injected TTL
// cache.
package locator

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"loan-origination/internal/cache"
	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/models"
)

const (
	CacheKey   = "locations:all"
	DefaultTTL = 5 * time.Minute

	earthRadiusKm = 6371.0
)

// GeolocationHint tells the client how to read the device position.
type GeolocationHint struct {
	TimeoutMs    int `json:"timeoutMs"`
	MaximumAgeMs int `json:"maximumAgeMs"`
}

var DefaultGeolocation = GeolocationHint{TimeoutMs: 10000, MaximumAgeMs: 60000}

// Source loads the full location list. datasource.DataSource satisfies it.
type Source interface {
	Locations(ctx context.Context) ([]models.Location, error)
}

// Filter narrows the list. Zero fields are ignored; matching is
// case-insensitive.
type Filter struct {
	Type   models.LocationType
	Status string
}

func (f Filter) match(l models.Location) bool {
	if f.Type != "" && !strings.EqualFold(string(f.Type), string(l.Type)) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(f.Status, l.Status) {
		return false
	}
	return true
}

// Nearby is a location with its distance from the borrower.
type Nearby struct {
	models.Location
	DistanceKm float64 `json:"distanceKm"`
}

type Service struct {
	src   Source
	store cache.Store[[]models.Location]
	ttl   time.Duration
	log   logger.Logger
}

func NewService(src Source, store cache.Store[[]models.Location], ttl time.Duration, log logger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		src:   src,
		store: store,
		ttl:   ttl,
		log:   log.WithFields(map[string]interface{}{"component": "locator"}),
	}
}

// List returns the cached locations matching f, sorted by name.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Location, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Location, 0, len(all))
	for _, l := range all {
		if f.match(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Nearest returns up to limit locations matching f, closest first. limit <= 0
// returns every match.
func (s *Service) Nearest(ctx context.Context, lat, lng float64, f Filter, limit int) ([]Nearby, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || math.IsNaN(lat) || math.IsNaN(lng) {
		return nil, apperrors.NewValidationError("lat must be within [-90, 90] and lng within [-180, 180]")
	}

	matches, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]Nearby, 0, len(matches))
	for _, l := range matches {
		out = append(out, Nearby{Location: l, DistanceKm: Haversine(lat, lng, l.Lat, l.Lng)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Refresh reloads the list into the cache. On failure the current entry is
// left in place.
func (s *Service) Refresh(ctx context.Context) error {
	rows, err := s.src.Locations(ctx)
	if err != nil {
		return apperrors.NewDataFetchFailedError("locations", err)
	}
	s.store.Set(ctx, CacheKey, rows, s.ttl)
	s.log.Debug("location cache refreshed", map[string]interface{}{"count": len(rows)})
	return nil
}

// Invalidate drops the cached list.
func (s *Service) Invalidate(ctx context.Context) {
	s.store.Delete(ctx, CacheKey)
}

func (s *Service) load(ctx context.Context) ([]models.Location, error) {
	if rows, ok := s.store.Get(ctx, CacheKey); ok {
		return rows, nil
	}

	rows, err := s.src.Locations(ctx)
	if err != nil {
		s.log.Error("location fetch failed", map[string]interface{}{"error": err})
		return nil, apperrors.NewDataFetchFailedError("locations", err)
	}
	s.store.Set(ctx, CacheKey, rows, s.ttl)
	return rows, nil
}

// Haversine is the great-circle distance in kilometres.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}
