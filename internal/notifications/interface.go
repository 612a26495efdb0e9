package notifications

import (
	"context"

	"github.com/pulseboard/social-listener/internal/models"
)

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendAlerts(ctx context.Context, alerts []models.Alert) error
	SendDigest(ctx context.Context, digest *models.Digest) error
}

// UrgentAlerts returns the alerts that warrant an immediate push: high and critical
func UrgentAlerts(alerts []models.Alert) []models.Alert {
	urgent := make([]models.Alert, 0)
	for _, a := range alerts {
		if a.Severity.Rank() >= models.SeverityHigh.Rank() {
			urgent = append(urgent, a)
		}
	}
	return urgent
}
