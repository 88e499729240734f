package locator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"loan-origination/internal/cache"
	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/datasource"
	"loan-origination/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	rows  []models.Location
	err   error
}

func newCountingSource(t *testing.T) *countingSource {
	t.Helper()
	rows, err := datasource.NewFixture(datasource.DemoDataset()).Locations(context.Background())
	require.NoError(t, err)
	return &countingSource{rows: rows}
}

func (c *countingSource) Locations(ctx context.Context) ([]models.Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return append([]models.Location(nil), c.rows...), nil
}

func (c *countingSource) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemoryService(t *testing.T, src Source, ttl time.Duration) (*Service, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	store := cache.NewMemory[[]models.Location](cache.WithClock[[]models.Location](clk.Now))
	return NewService(src, store, ttl, logger.NewTestLogger(t)), clk
}

func TestList_ReadsThroughCache(t *testing.T) {
	src := newCountingSource(t)
	svc, clk := newMemoryService(t, src, time.Minute)
	ctx := context.Background()

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = svc.List(ctx, Filter{Type: models.LocationBranch})
	require.NoError(t, err)
	assert.Equal(t, 1, src.count(), "second call should be served from cache")

	clk.Advance(time.Minute)
	_, err = svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, src.count(), "expired entry should be reloaded")
}

func TestList_Filters(t *testing.T) {
	svc, _ := newMemoryService(t, newCountingSource(t), time.Minute)
	ctx := context.Background()

	branches, err := svc.List(ctx, Filter{Type: models.LocationBranch})
	require.NoError(t, err)
	assert.Len(t, branches, 3)

	activeAgents, err := svc.List(ctx, Filter{Type: "AGENT", Status: "Active"})
	require.NoError(t, err)
	require.Len(t, activeAgents, 1)
	assert.Equal(t, "AG-MRK", activeAgents[0].ID)
}

func TestList_SourceErrorIsDataFetchFailed(t *testing.T) {
	src := &countingSource{err: errors.New("timeout")}
	svc, _ := newMemoryService(t, src, time.Minute)

	_, err := svc.List(context.Background(), Filter{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDataFetchFailed))
}

func TestNearest_SortsByDistance(t *testing.T) {
	svc, _ := newMemoryService(t, newCountingSource(t), time.Minute)

	// Marikina
	got, err := svc.Nearest(context.Background(), 14.6507, 121.1029, Filter{Status: "active"}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "AG-MRK", got[0].ID)
	assert.InDelta(t, 0, got[0].DistanceKm, 0.001)
	assert.Equal(t, "BR-QC", got[1].ID)
	assert.Equal(t, "BR-MNL", got[2].ID)
	assert.Less(t, got[1].DistanceKm, got[2].DistanceKm)
}

func TestNearest_NoLimitReturnsAll(t *testing.T) {
	svc, _ := newMemoryService(t, newCountingSource(t), time.Minute)

	got, err := svc.Nearest(context.Background(), 10.3157, 123.8854, Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "BR-CEB", got[0].ID)
}

func TestNearest_RejectsBadCoordinates(t *testing.T) {
	svc, _ := newMemoryService(t, newCountingSource(t), time.Minute)

	_, err := svc.Nearest(context.Background(), 91, 0, Filter{}, 1)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))

	_, err = svc.Nearest(context.Background(), 0, -181, Filter{}, 1)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}

func TestHaversine(t *testing.T) {
	// Manila to Cebu City is roughly 570 km.
	d := Haversine(14.5995, 120.9842, 10.3157, 123.8854)
	assert.InDelta(t, 570, d, 15)
	assert.Equal(t, 0.0, Haversine(1, 1, 1, 1))
}

func TestRefresh_KeepsEntryOnFailure(t *testing.T) {
	src := newCountingSource(t)
	svc, _ := newMemoryService(t, src, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))

	src.mu.Lock()
	src.err = errors.New("db down")
	src.mu.Unlock()

	assert.Error(t, svc.Refresh(ctx))

	rows, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestInvalidate(t *testing.T) {
	src := newCountingSource(t)
	svc, _ := newMemoryService(t, src, time.Minute)
	ctx := context.Background()

	_, _ = svc.List(ctx, Filter{})
	svc.Invalidate(ctx)
	_, _ = svc.List(ctx, Filter{})
	assert.Equal(t, 2, src.count())
}

func TestSchedule_RunsRefresh(t *testing.T) {
	src := newCountingSource(t)
	svc, _ := newMemoryService(t, src, time.Minute)

	c := cron.New()
	id, err := svc.Schedule(c, "@every 15m")
	require.NoError(t, err)

	c.Entry(id).Job.Run()
	assert.Equal(t, 1, src.count())

	_, err = svc.Schedule(c, "not a schedule")
	assert.Error(t, err)
}

func TestList_RedisBackedCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	src := newCountingSource(t)
	store := cache.NewRedis[[]models.Location](client, "loan-origination:", logger.NewTestLogger(t))
	svc := NewService(src, store, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	_, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.True(t, mr.Exists("loan-origination:"+CacheKey))

	rows, err := svc.List(ctx, Filter{Type: models.LocationBranch})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 1, src.count())

	mr.FastForward(2 * time.Minute)
	_, err = svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, src.count())
}

func TestDefaultGeolocation(t *testing.T) {
	assert.Equal(t, GeolocationHint{TimeoutMs: 10000, MaximumAgeMs: 60000}, DefaultGeolocation)
}
