// Package api serves the officer dashboard, borrower submission and branch
// locator endpoints over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"loan-origination/internal/activity"
	"loan-origination/internal/aggregator"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/locator"
	"loan-origination/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services behind the routes. Activity and Notifier may be nil.
type Deps struct {
	Applications *aggregator.Service
	Submissions  *submission.Service
	Locator      *locator.Service
	Activity     activity.Recorder
	Notifier     StatusNotifier
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Options struct {
	RequestTimeout time.Duration
}

func NewRouter(deps Deps, opts Options, log logger.Logger) *chi.Mux {
	if deps.Activity == nil {
		deps.Activity = activity.Nop{}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 40 * time.Second
	}
	log = log.WithFields(map[string]interface{}{"component": "api"})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(opts.RequestTimeout))
	router.Use(Metrics())

	health := &healthHandler{ready: deps.Ready}
	router.Get("/health", health.Live)
	router.Get("/ready", health.Ready)
	router.Handle("/metrics", promhttp.Handler())

	schemas := newRequestValidator()
	officer := newOfficerHandler(deps.Applications, deps.Activity, deps.Notifier, schemas, log)
	subs := newSubmissionHandler(deps.Submissions, schemas, log)
	esgH := newESGHandler(schemas)
	locs := newLocationHandler(deps.Locator)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/officer", func(r chi.Router) {
			r.Get("/applications", officer.List)
			r.Get("/applications/summary", officer.Summary)
			r.Get("/applications/{id}", officer.Get)
			r.Patch("/applications/{id}/status", officer.UpdateStatus)
			r.Get("/activity", officer.Activity)
		})

		r.Route("/esg", func(r chi.Router) {
			r.Get("/questionnaire", esgH.Questionnaire)
			r.Post("/progress", esgH.Progress)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Post("/preloan-application", subs.Preloan)
			r.Post("/loan-application", subs.LoanApplication)
			r.Post("/document-upload", subs.DocumentUpload)
			r.Post("/asset-declaration", subs.AssetDeclaration)
			r.Post("/esg-assessment", subs.ESGAssessment)
			r.Post("/loan-plan", subs.LoanPlan)
		})

		r.Get("/locations", locs.List)
	})

	return router
}

type healthHandler struct {
	ready func(ctx context.Context) error
}

func (h *healthHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *healthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
