// internal/api/locations.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/locator"
	"loan-origination/internal/models"
)

type locationHandler struct {
	svc *locator.Service
}

func newLocationHandler(svc *locator.Service) *locationHandler {
	return &locationHandler{svc: svc}
}

// List serves branches and agents. With lat and lng the result is ordered
// by distance and carries distanceKm.
func (h *locationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f := locator.Filter{
		Type:   models.LocationType(strings.TrimSpace(query.Get("type"))),
		Status: strings.TrimSpace(query.Get("status")),
	}

	latRaw, lngRaw := query.Get("lat"), query.Get("lng")
	if latRaw == "" && lngRaw == "" {
		locations, err := h.svc.List(r.Context(), f)
		if err != nil {
			respondLoadError(w, r, "locations", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"locations":   locations,
			"geolocation": locator.DefaultGeolocation,
		})
		return
	}

	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lng, lngErr := strconv.ParseFloat(lngRaw, 64)
	if latErr != nil || lngErr != nil {
		respondError(w, r, apperrors.NewValidationError("lat and lng must both be numbers"), "")
		return
	}
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, r, apperrors.NewValidationError("limit must be a non-negative integer"), "")
			return
		}
		limit = n
	}

	nearby, err := h.svc.Nearest(r.Context(), lat, lng, f, limit)
	if err != nil {
		respondLoadError(w, r, "locations", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"locations":   nearby,
		"geolocation": locator.DefaultGeolocation,
	})
}
