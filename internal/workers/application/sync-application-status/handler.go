// internal/workers/application/sync-application-status/handler.go
package syncapplicationstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/activity"
	apperrors "loan-origination/internal/common/errors"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/metrics"
	"loan-origination/internal/common/observability"
	"loan-origination/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sync-application-status"
)

// Applications is satisfied by aggregator.Service.
type Applications interface {
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
	GetApplication(ctx context.Context, id string) (*models.ApplicationView, error)
}

// Notifier is satisfied by notify.Notifier.
type Notifier interface {
	StatusChanged(ctx context.Context, view models.ApplicationView) []models.Notification
}

// Handler writes a status decided by the workflow engine back to the
// application row, then tells the borrower.
type Handler struct {
	config     *Config
	apps       Applications
	notifier   Notifier
	activity   activity.Recorder
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, apps Applications, notifier Notifier, rec activity.Recorder, obs *observability.Observability, log logger.Logger) *Handler {
	if rec == nil {
		rec = activity.Nop{}
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		apps:       apps,
		notifier:   notifier,
		activity:   rec,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.fail(ctx, client, job, apperrors.NewValidationError(fmt.Sprintf("parse input: %v", err)))
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		return h.fail(ctx, client, job, err)
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("build complete command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("complete job %d: %w", job.Key, err)
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.logger.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	stdErr := apperrors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	id := strings.TrimSpace(input.ApplicationID)
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if id == "" {
		return nil, apperrors.NewValidationError("applicationId is required")
	}
	if status == "" {
		return nil, apperrors.NewValidationError("status is required")
	}

	updated, err := h.apps.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	output := &Output{ApplicationID: id, Updated: updated, Status: status}
	if !updated {
		h.logger.Warn("status not written", map[string]interface{}{"applicationId": id, "status": status})
		return output, nil
	}

	actor := input.Actor
	if actor == "" {
		actor = "workflow"
	}
	h.activity.Record(ctx, models.ActivityEvent{
		Type:          models.ActivityStatusChange,
		ApplicationID: id,
		Actor:         actor,
		Message:       "status changed to " + status,
		Attributes: map[string]interface{}{
			"status": status,
			"reason": input.Reason,
		},
	})

	// the write already succeeded; a failed re-read only skips notifications
	view, err := h.apps.GetApplication(ctx, id)
	if err != nil {
		h.logger.Warn("re-fetch after status update failed", map[string]interface{}{
			"applicationId": id,
			"error":         err,
		})
		return output, nil
	}

	if h.notifier != nil {
		for _, n := range h.notifier.StatusChanged(ctx, *view) {
			if n.Status == models.NotificationSent {
				output.NotificationsSent++
			}
		}
	}
	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
