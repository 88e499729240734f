// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/activity"
	"loan-origination/internal/common/config"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/money"
	"loan-origination/internal/models"
)

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, senderID, message string) (string, error)
}

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

type template struct {
	subject string
	body    string
}

var templates = map[string]template{
	models.StatusApproved: {
		subject: "Your loan application has been approved",
		body:    "Good news, {{name}}! Your loan application {{applicationId}} for {{amount}} has been approved. We will contact you about release of funds.",
	},
	models.StatusRejected: {
		subject: "Update on your loan application",
		body:    "Hi {{name}}, your loan application {{applicationId}} for {{amount}} was not approved this time. You may apply again after 30 days.",
	},
	models.StatusNeedsDocuments: {
		subject: "We need more documents for your loan application",
		body:    "Hi {{name}}, we need additional documents for loan application {{applicationId}}. Please upload them in the app so we can continue your review.",
	},
}

// Notable reports whether a status change is worth telling the borrower.
func Notable(status string) bool {
	_, ok := templates[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Notifier tells borrowers about status changes by SMS and email. Delivery
// problems are logged and returned as records, never as errors.
type Notifier struct {
	cfg      config.NotificationConfig
	sms      SMSSender
	email    EmailSender
	activity activity.Recorder
	log      logger.Logger
	now      func() time.Time
}

// NewNotifier accepts nil senders for channels that are not configured.
func NewNotifier(cfg config.NotificationConfig, sms SMSSender, email EmailSender, rec activity.Recorder, log logger.Logger) *Notifier {
	if rec == nil {
		rec = activity.Nop{}
	}
	return &Notifier{
		cfg:      cfg,
		sms:      sms,
		email:    email,
		activity: rec,
		log:      log.WithFields(map[string]interface{}{"component": "notify"}),
		now:      time.Now,
	}
}

// StatusChanged notifies the applicant of view's current status. Statuses
// that are not Notable produce no records.
func (n *Notifier) StatusChanged(ctx context.Context, view models.ApplicationView) []models.Notification {
	status := strings.ToLower(strings.TrimSpace(view.Status))
	tmpl, ok := templates[status]
	if !ok {
		return nil
	}

	name := view.Profile.FirstName
	if name == "" {
		name = "there"
	}
	data := map[string]string{
		"name":          name,
		"applicationId": view.ID,
		"amount":        money.Peso(view.LoanAmount),
	}
	body := renderTemplate(tmpl.body, data)

	base := models.Notification{
		ApplicationID: view.ID,
		RecipientID:   view.UserID,
		Type:          status,
	}

	return []models.Notification{
		n.deliver(ctx, base, models.ChannelSMS, n.cfg.SMS.Enabled && n.sms != nil, view.Profile.MobileNumber,
			func(to string) (string, error) {
				return n.sms.SendSMS(ctx, to, n.cfg.SMS.SenderID, body)
			}),
		n.deliver(ctx, base, models.ChannelEmail, n.cfg.Email.Enabled && n.email != nil, view.Profile.Email,
			func(to string) (string, error) {
				return n.email.SendText(ctx, n.cfg.Email.FromEmail, to, tmpl.subject, body)
			}),
	}
}

func (n *Notifier) deliver(ctx context.Context, rec models.Notification, channel string, enabled bool, to string, send func(string) (string, error)) models.Notification {
	rec.Channel = channel
	log := n.log.WithFields(map[string]interface{}{
		"applicationId": rec.ApplicationID,
		"channel":       channel,
		"type":          rec.Type,
	})

	to = strings.TrimSpace(to)
	switch {
	case !enabled:
		rec.Status = models.NotificationSkipped
		rec.Error = "channel disabled"
		return rec
	case to == "":
		rec.Status = models.NotificationSkipped
		rec.Error = "no " + channel + " contact on file"
		log.Warn("borrower has no contact for channel", nil)
		return rec
	}

	messageID, err := send(to)
	if err != nil {
		rec.Status = models.NotificationFailed
		rec.Error = err.Error()
		log.Error("notification send failed", map[string]interface{}{"error": err})
	} else {
		rec.Status = models.NotificationSent
		rec.MessageID = messageID
		rec.SentAt = n.now().UTC().Format(time.RFC3339)
		log.Info("notification sent", map[string]interface{}{"messageId": messageID})
	}

	n.activity.Record(ctx, models.ActivityEvent{
		Type:          models.ActivityNotification,
		ApplicationID: rec.ApplicationID,
		Actor:         "system",
		Message:       fmt.Sprintf("%s %s notification %s", rec.Type, channel, rec.Status),
		Attributes: map[string]interface{}{
			"channel":   channel,
			"status":    rec.Status,
			"messageId": rec.MessageID,
		},
	})
	return rec
}

// renderTemplate replaces {{key}} placeholders and drops any left unresolved.
func renderTemplate(tmpl string, data map[string]string) string {
	result := tmpl
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
