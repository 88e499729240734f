package syncapplicationstatus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"loan-origination/internal/aggregator"
	"loan-origination/internal/common/config"
	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/datasource"
	"loan-origination/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) StatusChanged(ctx context.Context, view models.ApplicationView) []models.Notification {
	args := m.Called(ctx, view)
	return args.Get(0).([]models.Notification)
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []models.ActivityEvent
}

func (m *memoryRecorder) Record(ctx context.Context, e models.ActivityEvent) {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
}

func (m *memoryRecorder) Search(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error) {
	return m.events, nil
}

type brokenStore struct {
	*datasource.Fixture
}

func (b brokenStore) UpdateApplicationStatus(ctx context.Context, id, status string) (bool, error) {
	return false, errors.New("connection reset")
}

func newTestHandler(t *testing.T, ds datasource.DataSource, officer config.OfficerConfig) (*Handler, *MockNotifier, *memoryRecorder) {
	t.Helper()
	log := logger.NewTestLogger(t)
	apps := aggregator.NewService(ds, officer, log)
	notifier := &MockNotifier{}
	rec := &memoryRecorder{}
	h := NewHandler(&Config{Timeout: 5 * time.Second}, apps, notifier, rec, nil, log)
	return h, notifier, rec
}

func TestExecute_WritesStatusAndNotifies(t *testing.T) {
	ds := datasource.NewFixture(datasource.DemoDataset())
	h, notifier, rec := newTestHandler(t, ds, config.OfficerConfig{})
	notifier.On("StatusChanged", mock.Anything, mock.MatchedBy(func(v models.ApplicationView) bool {
		return v.ID == "LA-2024-0002" && v.Status == models.StatusApproved && v.ApplicantName == "Jose Reyes"
	})).Return([]models.Notification{
		{ApplicationID: "LA-2024-0002", Channel: models.ChannelSMS, Status: models.NotificationSent},
		{ApplicationID: "LA-2024-0002", Channel: models.ChannelEmail, Status: models.NotificationSkipped},
	}).Once()

	out, err := h.Execute(context.Background(), &Input{
		ApplicationID: "LA-2024-0002",
		Status:        " Approved ",
		Reason:        "credit committee",
	})
	require.NoError(t, err)

	assert.Equal(t, "LA-2024-0002", out.ApplicationID)
	assert.True(t, out.Updated)
	assert.Equal(t, models.StatusApproved, out.Status)
	assert.Equal(t, 1, out.NotificationsSent)

	notifier.AssertExpectations(t)

	require.Len(t, rec.events, 1)
	assert.Equal(t, models.ActivityStatusChange, rec.events[0].Type)
	assert.Equal(t, "workflow", rec.events[0].Actor)
	assert.Equal(t, "credit committee", rec.events[0].Attributes["reason"])

	apps, err := ds.Applications(context.Background(), datasource.ApplicationFilter{IDs: []string{"LA-2024-0002"}})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, models.StatusApproved, apps[0].Status)
}

func TestExecute_OutsideAllowList(t *testing.T) {
	ds := datasource.NewFixture(datasource.DemoDataset())
	h, notifier, rec := newTestHandler(t, ds, config.OfficerConfig{
		AllowedApplicationIDs: []string{"LA-2024-0001"},
	})

	out, err := h.Execute(context.Background(), &Input{ApplicationID: "LA-2024-0004", Status: "rejected"})
	require.NoError(t, err)

	assert.False(t, out.Updated)
	assert.Zero(t, out.NotificationsSent)
	notifier.AssertNotCalled(t, "StatusChanged", mock.Anything, mock.Anything)
	assert.Empty(t, rec.events)
}

func TestExecute_UnknownApplication(t *testing.T) {
	ds := datasource.NewFixture(datasource.DemoDataset())
	h, notifier, _ := newTestHandler(t, ds, config.OfficerConfig{})

	out, err := h.Execute(context.Background(), &Input{ApplicationID: "LA-missing", Status: "approved"})
	require.NoError(t, err)
	assert.False(t, out.Updated)
	notifier.AssertNotCalled(t, "StatusChanged", mock.Anything, mock.Anything)
}

func TestExecute_InvalidInput(t *testing.T) {
	ds := datasource.NewFixture(datasource.DemoDataset())
	h, _, _ := newTestHandler(t, ds, config.OfficerConfig{})

	tests := []struct {
		name  string
		input Input
	}{
		{"missing application id", Input{Status: "approved"}},
		{"missing status", Input{ApplicationID: "LA-2024-0001", Status: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), &tt.input)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
		})
	}
}

func TestExecute_StoreFailureIsRetryable(t *testing.T) {
	ds := brokenStore{datasource.NewFixture(datasource.DemoDataset())}
	h, notifier, _ := newTestHandler(t, ds, config.OfficerConfig{})

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "LA-2024-0001", Status: "approved"})
	require.Error(t, err)

	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeStatusUpdateFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, apperrors.ConvertToBPMNError(stdErr).Retries)
	notifier.AssertNotCalled(t, "StatusChanged", mock.Anything, mock.Anything)
}

func TestLoadConfig(t *testing.T) {
	c := LoadConfig(config.WorkerConfig{Timeout: 12000, MaxJobsActive: 2})
	assert.Equal(t, 12*time.Second, c.Timeout)
	assert.Equal(t, 2, c.MaxJobsActive)

	c = LoadConfig(config.WorkerConfig{})
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, 5, c.MaxJobsActive)
}
