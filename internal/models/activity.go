// internal/models/activity.go
package models

import "time"

// ActivityEvent is one entry of the officer activity log.
type ActivityEvent struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	ApplicationID string                 `json:"applicationId,omitempty"`
	Actor         string                 `json:"actor,omitempty"`
	Message       string                 `json:"message"`
	RequestID     string                 `json:"requestId,omitempty"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
}

const (
	ActivitySubmission   = "submission"
	ActivityStatusChange = "status_change"
	ActivityNotification = "notification"
)

// ActivityQuery filters the activity log. Zero fields are ignored.
type ActivityQuery struct {
	ApplicationID string
	Type          string
	Limit         int
}
