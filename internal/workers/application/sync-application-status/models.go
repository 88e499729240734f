// internal/workers/application/sync-application-status/models.go
package syncapplicationstatus

type Input struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	Actor         string `json:"actor"`
	Reason        string `json:"reason"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	Updated           bool   `json:"updated"`
	Status            string `json:"status"`
	NotificationsSent int    `json:"notificationsSent"`
}
