package activity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"loan-origination/internal/common/logger"
	"loan-origination/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type esRequest struct {
	method string
	path   string
	body   map[string]interface{}
}

type fakeES struct {
	mu       sync.Mutex
	requests []esRequest
	status   int
	response string
}

func (f *fakeES) last() esRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newFakeES(t *testing.T, status int, response string) (*elasticsearch.Client, *fakeES) {
	t.Helper()
	f := &fakeES{status: status, response: response}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)

		f.mu.Lock()
		f.requests = append(f.requests, esRequest{method: r.Method, path: r.URL.Path, body: body})
		f.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.response))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, f
}

func TestRecord_IndexesEventWithGeneratedID(t *testing.T) {
	client, es := newFakeES(t, http.StatusCreated, `{"result":"created"}`)
	rec := NewElasticsearch(client, "loan-activity", logger.NewTestLogger(t))
	rec.now = func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }

	rec.Record(context.Background(), models.ActivityEvent{
		Type:          models.ActivitySubmission,
		ApplicationID: "LA-1",
		Message:       "asset-declaration submitted",
	})

	req := es.last()
	assert.Equal(t, http.MethodPut, req.method)
	assert.True(t, strings.HasPrefix(req.path, "/loan-activity/_doc/"), req.path)
	assert.Equal(t, "LA-1", req.body["applicationId"])
	assert.Equal(t, "submission", req.body["type"])
	assert.Equal(t, "2024-05-02T09:00:00Z", req.body["timestamp"])
	assert.NotEmpty(t, req.body["id"])
}

func TestRecord_ErrorIsSwallowed(t *testing.T) {
	client, _ := newFakeES(t, http.StatusInternalServerError, `{"error":"boom"}`)
	rec := NewElasticsearch(client, "loan-activity", logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), models.ActivityEvent{Type: models.ActivityStatusChange})
	})
}

func TestSearch_BuildsFilteredQuery(t *testing.T) {
	client, es := newFakeES(t, http.StatusOK, `{
		"hits": {"hits": [
			{"_source": {"id": "e2", "type": "status_change", "applicationId": "LA-1", "message": "approved", "timestamp": "2024-05-03T10:00:00Z"}},
			{"_source": {"id": "e1", "type": "status_change", "applicationId": "LA-1", "message": "under_review", "timestamp": "2024-05-02T10:00:00Z"}}
		]}
	}`)
	rec := NewElasticsearch(client, "loan-activity", logger.NewTestLogger(t))

	events, err := rec.Search(context.Background(), models.ActivityQuery{
		ApplicationID: "LA-1",
		Type:          models.ActivityStatusChange,
		Limit:         10,
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "approved", events[0].Message)

	req := es.last()
	assert.Equal(t, "/loan-activity/_search", req.path)
	assert.EqualValues(t, 10, req.body["size"])

	filters := req.body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	assert.Len(t, filters, 2)
}

func TestSearch_ErrorStatus(t *testing.T) {
	client, _ := newFakeES(t, http.StatusBadRequest, `{"error":"bad query"}`)
	rec := NewElasticsearch(client, "loan-activity", logger.NewTestLogger(t))

	_, err := rec.Search(context.Background(), models.ActivityQuery{})
	assert.Error(t, err)
}

func TestBuildQuery_DefaultsAndClamp(t *testing.T) {
	q := buildQuery(models.ActivityQuery{})
	assert.Equal(t, DefaultLimit, q["size"])
	assert.Contains(t, q["query"], "match_all")

	q = buildQuery(models.ActivityQuery{Limit: 10000})
	assert.Equal(t, MaxLimit, q["size"])
}

func TestEnsureIndex_SkipsExisting(t *testing.T) {
	client, es := newFakeES(t, http.StatusOK, `{}`)
	rec := NewElasticsearch(client, "loan-activity", logger.NewTestLogger(t))

	require.NoError(t, rec.EnsureIndex(context.Background()))
	assert.Equal(t, http.MethodHead, es.last().method)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.Record(context.Background(), models.ActivityEvent{})
	events, err := r.Search(context.Background(), models.ActivityQuery{})
	require.NoError(t, err)
	assert.Empty(t, events)
}
