package models

import (
	"strings"
	"time"
)

// AlertType classifies what triggered an alert
type AlertType string

const (
	AlertSentimentSpike AlertType = "sentiment_spike"
	AlertEmergingTheme  AlertType = "emerging_theme"
	AlertViralPost      AlertType = "viral_post"
	AlertCompetitorNews AlertType = "competitor_news"
	AlertPRRisk         AlertType = "pr_risk"
)

// ParseAlertType validates an alert type string
func ParseAlertType(value string) (AlertType, bool) {
	switch t := AlertType(strings.ToLower(strings.TrimSpace(value))); t {
	case AlertSentimentSpike, AlertEmergingTheme, AlertViralPost, AlertCompetitorNews, AlertPRRisk:
		return t, true
	}
	return "", false
}

// Severity is the totally ordered urgency of an alert
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities low < medium < high < critical. Unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// ParseSeverity validates a severity string
func ParseSeverity(value string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if s.Rank() == 0 {
		return "", false
	}
	return s, true
}

// Alert represents a notable condition that needs human acknowledgement
type Alert struct {
	ID                string     `json:"id"`
	BatchID           string     `json:"batch_id,omitempty"`
	Type              AlertType  `json:"type"`
	Severity          Severity   `json:"severity"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	RecommendedAction string     `json:"recommended_action,omitempty"`
	RelatedPostIDs    []string   `json:"related_post_ids"`
	IsAcknowledged    bool       `json:"is_acknowledged"`
	AcknowledgedAt    *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
