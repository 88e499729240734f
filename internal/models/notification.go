// internal/models/notification.go
package models

// Notification is the outcome of one borrower message attempt.
type Notification struct {
	ApplicationID string `json:"applicationId"`
	RecipientID   string `json:"recipientId"`
	Type          string `json:"type"`    // new status, e.g. "approved"
	Channel       string `json:"channel"` // "email", "sms"
	Status        string `json:"status"`  // "sent", "failed", "skipped"
	MessageID     string `json:"messageId,omitempty"`
	Error         string `json:"error,omitempty"`
	SentAt        string `json:"sentAt,omitempty"`
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)
