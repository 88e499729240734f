// internal/activity/elasticsearch.go
package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/common/logger"
	"loan-origination/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"id":            {"type": "keyword"},
			"type":          {"type": "keyword"},
			"applicationId": {"type": "keyword"},
			"actor":         {"type": "keyword"},
			"requestId":     {"type": "keyword"},
			"message":       {"type": "text"},
			"attributes":    {"type": "object", "enabled": false},
			"timestamp":     {"type": "date"}
		}
	}
}`

// Elasticsearch writes one document per event into a single index.
type Elasticsearch struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
	now    func() time.Time
}

func NewElasticsearch(client *elasticsearch.Client, index string, log logger.Logger) *Elasticsearch {
	return &Elasticsearch{
		client: client,
		index:  index,
		log:    log.WithFields(map[string]interface{}{"component": "activity", "index": index}),
		now:    time.Now,
	}
}

// EnsureIndex creates the index with keyword mappings when it is missing.
func (e *Elasticsearch) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", e.index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", e.index, res.Status())
	}
	return nil
}

func (e *Elasticsearch) Record(ctx context.Context, event models.ActivityEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now().UTC()
	}

	log := e.log.WithFields(map[string]interface{}{
		"eventId":       event.ID,
		"type":          event.Type,
		"applicationId": event.ApplicationID,
	})

	body, err := json.Marshal(event)
	if err != nil {
		log.Error("encode activity event", map[string]interface{}{"error": err})
		return
	}

	res, err := e.client.Index(
		e.index,
		bytes.NewReader(body),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(event.ID),
	)
	if err != nil {
		log.Error("record activity event", map[string]interface{}{"error": err})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Error("record activity event", map[string]interface{}{"status": res.Status()})
		return
	}
	log.Debug("activity recorded", nil)
}

// Search returns matching events, newest first.
func (e *Elasticsearch) Search(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, err
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
		e.client.Search.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search activity: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search activity: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode activity search: %w", err)
	}

	events := make([]models.ActivityEvent, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		events = append(events, hit.Source)
	}
	return events, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.ActivityEvent `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildQuery(q models.ActivityQuery) map[string]interface{} {
	filters := []interface{}{}
	if q.ApplicationID != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"applicationId": q.ApplicationID},
		})
	}
	if q.Type != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"type": q.Type},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filters) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		}
	}

	return map[string]interface{}{
		"size":  clampLimit(q.Limit),
		"query": query,
		"sort": []interface{}{
			map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}},
		},
	}
}
