// Package rules derives deterministic alerts from an analysis result.
package rules

import (
	"fmt"
	"strings"

	"github.com/pulseboard/social-listener/internal/models"
)

const (
	sentimentSpikeThreshold   = -0.3
	sentimentSpikeHigh        = -0.5
	emergingThemeMinFrequency = 3
	emergingThemeHigh         = -0.2
)

// Evaluate returns rule alerts followed by the model's own alerts, unchanged.
// It never fails and does not modify its input; a nil result yields no alerts.
func Evaluate(result *models.AnalysisResult) []models.Alert {
	alerts := make([]models.Alert, 0)
	if result == nil {
		return alerts
	}

	if alert, ok := sentimentSpike(result.SentimentBreakdown); ok {
		alerts = append(alerts, alert)
	}

	for _, theme := range result.Themes {
		if alert, ok := emergingTheme(theme); ok {
			alerts = append(alerts, alert)
		}
	}

	for _, a := range result.Alerts {
		alerts = append(alerts, models.Alert{
			Type:              models.AlertType(a.Type),
			Severity:          models.Severity(a.Severity),
			Title:             a.Title,
			Description:       a.Description,
			RecommendedAction: a.RecommendedAction,
			RelatedPostIDs:    copyIDs(a.RelatedPostIDs),
		})
	}

	return alerts
}

func sentimentSpike(s models.SentimentBreakdown) (models.Alert, bool) {
	if s.Overall >= sentimentSpikeThreshold {
		return models.Alert{}, false
	}

	severity := models.SeverityMedium
	if s.Overall < sentimentSpikeHigh {
		severity = models.SeverityHigh
	}

	return models.Alert{
		Type:              models.AlertSentimentSpike,
		Severity:          severity,
		Title:             "Negative Sentiment Spike Detected",
		Description:       fmt.Sprintf("Overall sentiment dropped to %.2f. Key drivers: %s", s.Overall, strings.Join(s.KeyDrivers, ", ")),
		RecommendedAction: "Review negative posts and assess if response is needed",
		RelatedPostIDs:    []string{},
	}, true
}

func emergingTheme(t models.ThemeResult) (models.Alert, bool) {
	if !t.IsEmerging || t.Frequency < emergingThemeMinFrequency {
		return models.Alert{}, false
	}

	severity := models.SeverityMedium
	if t.Sentiment < emergingThemeHigh {
		severity = models.SeverityHigh
	}

	return models.Alert{
		Type:              models.AlertEmergingTheme,
		Severity:          severity,
		Title:             "Emerging Theme: " + t.Name,
		Description:       t.Description,
		RecommendedAction: t.WhyItMatters,
		RelatedPostIDs:    copyIDs(t.ExamplePostIDs),
	}, true
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
