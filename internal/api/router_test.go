package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"loan-origination/internal/aggregator"
	"loan-origination/internal/cache"
	"loan-origination/internal/common/config"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/datasource"
	"loan-origination/internal/locator"
	"loan-origination/internal/models"
	"loan-origination/internal/submission"
	"loan-origination/internal/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeSender) Send(ctx context.Context, endpoint string, data interface{}) (*webhook.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, endpoint)
	if f.err != nil {
		return nil, f.err
	}
	return &webhook.Result{
		RequestID:  "1715329800000-0001abcde",
		StatusCode: http.StatusOK,
		Body:       json.RawMessage(`{"accepted":true}`),
	}, nil
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []models.ActivityEvent
}

func (m *memoryRecorder) Record(ctx context.Context, e models.ActivityEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *memoryRecorder) Search(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityEvent
	for _, e := range m.events {
		if q.Type != "" && e.Type != q.Type {
			continue
		}
		if q.ApplicationID != "" && e.ApplicationID != q.ApplicationID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type stubNotifier struct {
	calls int
}

func (n *stubNotifier) StatusChanged(ctx context.Context, view models.ApplicationView) []models.Notification {
	n.calls++
	return []models.Notification{{ApplicationID: view.ID, Channel: models.ChannelSMS, Status: models.NotificationSent}}
}

type brokenApplications struct {
	*datasource.Fixture
}

func (brokenApplications) Applications(ctx context.Context, filter datasource.ApplicationFilter) ([]models.LoanApplication, error) {
	return nil, errors.New("connection refused")
}

type testEnv struct {
	router   http.Handler
	sender   *fakeSender
	activity *memoryRecorder
	notifier *stubNotifier
}

func newTestEnv(t *testing.T, ds datasource.DataSource, officer config.OfficerConfig) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)
	env := &testEnv{
		sender:   &fakeSender{},
		activity: &memoryRecorder{},
		notifier: &stubNotifier{},
	}
	deps := Deps{
		Applications: aggregator.NewService(ds, officer, log),
		Submissions:  submission.NewService(env.sender, ds, env.activity, nil, log),
		Locator:      locator.NewService(ds, cache.NewMemory[[]models.Location](), time.Minute, log),
		Activity:     env.activity,
		Notifier:     env.notifier,
	}
	env.router = NewRouter(deps, Options{RequestTimeout: 5 * time.Second}, log)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decode(t, rec)
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return e
}

func demo() *datasource.Fixture {
	return datasource.NewFixture(datasource.DemoDataset())
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	log := logger.NewTestLogger(t)
	router := NewRouter(Deps{Ready: func(ctx context.Context) error { return errors.New("postgres down") }}, Options{}, log)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "postgres down")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})
	env.do(t, http.MethodGet, "/health", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestOfficer_ListApplications(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/officer/applications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 4, body["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/officer/applications?ids=LA-2024-0001,LA-2024-0003", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/officer/applications?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/officer/applications?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorOf(t, rec)["code"])
}

func TestOfficer_ListFailureIsRetryable(t *testing.T) {
	env := newTestEnv(t, brokenApplications{demo()}, config.OfficerConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/officer/applications", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	e := errorOf(t, rec)
	assert.Equal(t, "Failed to load applications", e["message"])
	assert.Equal(t, true, e["retryable"])
	assert.Equal(t, "DATA_FETCH_FAILED", e["code"])
}

func TestOfficer_GetApplication(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/officer/applications/LA-2024-0001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "LA-2024-0001", body["id"])
	assert.Equal(t, "Maria Santos", body["applicantName"])

	rec = env.do(t, http.MethodGet, "/api/v1/officer/applications/LA-missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	e := errorOf(t, rec)
	assert.Equal(t, "APPLICATION_NOT_FOUND", e["code"])
	assert.Equal(t, false, e["retryable"])
}

func TestOfficer_Summary(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/officer/applications/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 4, body["total"])
	assert.EqualValues(t, 170000, body["totalRequested"])
}

func TestOfficer_UpdateStatus(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodPatch, "/api/v1/officer/applications/LA-2024-0002/status",
		map[string]string{"status": "Approved", "actor": "officer-17"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["updated"])
	app := body["application"].(map[string]interface{})
	assert.Equal(t, "approved", app["status"])
	assert.Len(t, body["notifications"], 1)
	assert.Equal(t, 1, env.notifier.calls)

	require.Len(t, env.activity.events, 1)
	assert.Equal(t, models.ActivityStatusChange, env.activity.events[0].Type)
	assert.Equal(t, "officer-17", env.activity.events[0].Actor)

	rec = env.do(t, http.MethodGet, "/api/v1/officer/activity?applicationId=LA-2024-0002", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["events"], 1)
}

func TestOfficer_UpdateStatusRejected(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{AllowedApplicationIDs: []string{"LA-2024-0001"}})

	rec := env.do(t, http.MethodPatch, "/api/v1/officer/applications/LA-2024-0002/status",
		map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "STATUS_UPDATE_NOT_ALLOWED", errorOf(t, rec)["code"])

	rec = env.do(t, http.MethodPatch, "/api/v1/officer/applications/LA-2024-0001/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec)["details"], "status")

	rec = env.do(t, http.MethodPatch, "/api/v1/officer/applications/LA-2024-0001/status", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/officer/applications/LA-2024-0001/status",
		map[string]string{"status": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorOf(t, rec)["code"])

	assert.Zero(t, env.notifier.calls)
	assert.Empty(t, env.activity.events)
}

func TestOfficer_UpdateStatusUnknownApplication(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodPatch, "/api/v1/officer/applications/LA-missing/status",
		map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmission_AssetDeclaration(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/submissions/asset-declaration", map[string]interface{}{
		"applicationId": "LA-2024-0001",
		"userId":        "u-maria",
		"assets": []map[string]interface{}{
			{"assetType": "vehicle", "description": "Tricycle", "estimatedValue": "₱75,000", "age": "3", "condition": "good"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, webhook.EndpointAssetDeclaration, body["endpoint"])
	assert.Equal(t, "LA-2024-0001", body["id"])
	assert.Contains(t, body["message"], "₱75,000")
	assert.Equal(t, submission.RedirectLoans, body["redirectTo"])
	assert.Equal(t, []string{webhook.EndpointAssetDeclaration}, env.sender.calls)
}

func TestSubmission_SchemaRejection(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/submissions/asset-declaration", map[string]interface{}{
		"applicationId": "LA-2024-0001",
		"assets":        []interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := errorOf(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", e["code"])
	assert.True(t, strings.HasSuffix(e["message"].(string), "Please try again in a moment."))
	assert.Empty(t, env.sender.calls)
}

func TestSubmission_WebhookFailure(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})
	env.sender.err = &webhook.StatusError{
		Endpoint:   webhook.EndpointLoanPlan,
		RequestID:  "1715329800000-0002zzzzz",
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"boom"}`,
	}

	rec := env.do(t, http.MethodPost, "/api/v1/submissions/loan-plan", map[string]interface{}{
		"applicationId": "LA-2024-0001",
		"loanAmount":    25000,
		"termMonths":    12,
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	e := errorOf(t, rec)
	assert.Equal(t, "WEBHOOK_HTTP_STATUS", e["code"])
	assert.Equal(t, "The loan service could not accept your submission (HTTP 500). Please try again in a moment.", e["message"])
	assert.Equal(t, "1715329800000-0002zzzzz", e["requestId"])
	assert.Equal(t, false, e["retryable"])
}

func TestSubmission_TimeoutIsRetryable(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})
	env.sender.err = &webhook.TimeoutError{Endpoint: webhook.EndpointPreloanApplication, RequestID: "r-1", Timeout: time.Second}

	rec := env.do(t, http.MethodPost, "/api/v1/submissions/preloan-application", map[string]interface{}{
		"userId":     "u-jose",
		"loanAmount": "50,000",
	})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	e := errorOf(t, rec)
	assert.Equal(t, "WEBHOOK_TIMEOUT", e["code"])
	assert.Equal(t, true, e["retryable"])
}

func TestESG_QuestionnaireAndProgress(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/esg/questionnaire", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["sections"], 6)

	rec = env.do(t, http.MethodPost, "/api/v1/esg/progress", map[string]interface{}{
		"responses": map[string][]string{
			"environment": {"We sort plastic for recycling", "4", "5", "9"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, false, body["complete"])
	assert.Len(t, body["problems"], 1)
	assert.Greater(t, body["completionPercentage"].(float64), float64(0))
	assert.Less(t, body["completionPercentage"].(float64), float64(100))

	rec = env.do(t, http.MethodPost, "/api/v1/esg/progress", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocations(t *testing.T) {
	env := newTestEnv(t, demo(), config.OfficerConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/locations?type=branch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["locations"], 3)
	geo := body["geolocation"].(map[string]interface{})
	assert.EqualValues(t, 10000, geo["timeoutMs"])
	assert.EqualValues(t, 60000, geo["maximumAgeMs"])

	rec = env.do(t, http.MethodGet, "/api/v1/locations?lat=14.6507&lng=121.1029&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	locs := decode(t, rec)["locations"].([]interface{})
	require.Len(t, locs, 1)
	assert.Equal(t, "AG-MRK", locs[0].(map[string]interface{})["id"])

	rec = env.do(t, http.MethodGet, "/api/v1/locations?lat=north&lng=121", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/locations?lat=95&lng=121", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
