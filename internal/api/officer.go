// internal/api/officer.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"loan-origination/internal/activity"
	"loan-origination/internal/aggregator"
	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/validation"
	"loan-origination/internal/models"

	"github.com/go-chi/chi/v5"
)

// StatusNotifier is satisfied by notify.Notifier.
type StatusNotifier interface {
	StatusChanged(ctx context.Context, view models.ApplicationView) []models.Notification
}

type officerHandler struct {
	apps     *aggregator.Service
	activity activity.Recorder
	notifier StatusNotifier
	schemas  *validation.Validator
	log      logger.Logger
}

func newOfficerHandler(apps *aggregator.Service, rec activity.Recorder, notifier StatusNotifier, schemas *validation.Validator, log logger.Logger) *officerHandler {
	return &officerHandler{
		apps:     apps,
		activity: rec,
		notifier: notifier,
		schemas:  schemas,
		log:      log.WithFields(map[string]interface{}{"handler": "officer"}),
	}
}

func parseQuery(r *http.Request) (aggregator.ApplicationQuery, error) {
	q := aggregator.ApplicationQuery{Status: strings.TrimSpace(r.URL.Query().Get("status"))}
	for _, raw := range r.URL.Query()["ids"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				q.IDs = append(q.IDs, id)
			}
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, apperrors.NewValidationError("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}

// List serves the officer queue.
func (h *officerHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	views, err := h.apps.ListApplications(r.Context(), q)
	if err != nil {
		respondLoadError(w, r, "applications", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"applications": views,
		"count":        len(views),
	})
}

func (h *officerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	views, err := h.apps.ListApplications(r.Context(), q)
	if err != nil {
		respondLoadError(w, r, "applications", err)
		return
	}
	respondJSON(w, http.StatusOK, aggregator.Summarize(views))
}

func (h *officerHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.apps.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondLoadError(w, r, "application", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// UpdateStatus writes an officer's decision and answers with the re-fetched
// application.
func (h *officerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.apps.CanUpdate(id) {
		respondError(w, r, apperrors.NewStatusNotAllowedError(id), "")
		return
	}

	var req statusUpdateRequest
	if err := decodeBody(r, h.schemas, schemaStatusUpdate, &req); err != nil {
		respondError(w, r, err, "")
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		respondError(w, r, apperrors.NewValidationError("status must not be blank"), "")
		return
	}

	updated, err := h.apps.UpdateStatus(r.Context(), id, status)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	if !updated {
		respondError(w, r, apperrors.NewApplicationNotFoundError(id), "")
		return
	}

	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = "officer"
	}
	h.activity.Record(r.Context(), models.ActivityEvent{
		Type:          models.ActivityStatusChange,
		ApplicationID: id,
		Actor:         actor,
		Message:       "status changed to " + status,
		Attributes:    map[string]interface{}{"status": status, "reason": req.Reason},
	})

	view, err := h.apps.GetApplication(r.Context(), id)
	if err != nil {
		respondLoadError(w, r, "application", err)
		return
	}

	var notifications []models.Notification
	if h.notifier != nil {
		notifications = h.notifier.StatusChanged(r.Context(), *view)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"updated":       true,
		"application":   view,
		"notifications": notifications,
	})
}

// Activity serves the officer activity log.
func (h *officerHandler) Activity(w http.ResponseWriter, r *http.Request) {
	q := models.ActivityQuery{
		ApplicationID: strings.TrimSpace(r.URL.Query().Get("applicationId")),
		Type:          strings.TrimSpace(r.URL.Query().Get("type")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, r, apperrors.NewValidationError("limit must be a non-negative integer"), "")
			return
		}
		q.Limit = n
	}

	events, err := h.activity.Search(r.Context(), q)
	if err != nil {
		respondLoadError(w, r, "activity", apperrors.NewDataFetchFailedError("activity", err))
		return
	}
	if events == nil {
		events = []models.ActivityEvent{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
