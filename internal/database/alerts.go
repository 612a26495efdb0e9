package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

type alertMetadata struct {
	RecommendedAction string `json:"recommended_action,omitempty"`
}

var alertColumns = []string{
	"id", "COALESCE(batch_id::text, '')", "alert_type", "severity", "title", "description",
	"related_posts", "metadata", "is_acknowledged", "created_at",
}

// SaveAlerts inserts each alert independently and returns how many were saved.
// Ids and creation times are written back into alerts.
func (s *Store) SaveAlerts(ctx context.Context, batchID string, alerts []models.Alert) (int, error) {
	var batchRef interface{}
	if batchID != "" {
		parsed, err := uuid.Parse(batchID)
		if err != nil {
			return 0, fmt.Errorf("%w: batch id %q", ErrInvalidInput, batchID)
		}
		batchRef = parsed
	}

	saved := 0
	var errs []error

	for i := range alerts {
		if err := s.insertAlert(ctx, batchRef, &alerts[i]); err != nil {
			logrus.WithField("batch_id", batchID).Errorf("Failed to save alert %q: %v", alerts[i].Title, err)
			errs = append(errs, err)
			continue
		}
		saved++
	}

	return saved, errors.Join(errs...)
}

func (s *Store) insertAlert(ctx context.Context, batchRef interface{}, alert *models.Alert) error {
	id := uuid.New()
	createdAt := s.now()

	metadata, err := json.Marshal(alertMetadata{RecommendedAction: alert.RecommendedAction})
	if err != nil {
		return fmt.Errorf("encode alert metadata: %w", err)
	}

	related := alert.RelatedPostIDs
	if related == nil {
		related = []string{}
	}

	query, args, err := s.sb.Insert("alerts").
		Columns("id", "batch_id", "alert_type", "severity", "title", "description",
			"related_posts", "metadata", "is_acknowledged", "created_at").
		Values(id, batchRef, string(alert.Type), string(alert.Severity), alert.Title, alert.Description,
			related, metadata, false, createdAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build alert insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return mapError(err, "alert", id.String())
	}

	alert.ID = id.String()
	alert.CreatedAt = createdAt
	return nil
}

// ActiveAlerts returns unacknowledged alerts, newest first.
// Severity ordering is applied by the caller.
func (s *Store) ActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	query, args, err := s.sb.Select(alertColumns...).
		From("alerts").
		Where(squirrel.Eq{"is_acknowledged": false}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active alerts query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		var (
			alert     models.Alert
			id        uuid.UUID
			alertType string
			severity  string
			metadata  []byte
		)
		if err := rows.Scan(&id, &alert.BatchID, &alertType, &severity, &alert.Title, &alert.Description,
			&alert.RelatedPostIDs, &metadata, &alert.IsAcknowledged, &alert.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}

		alert.ID = id.String()
		alert.Type = models.AlertType(alertType)
		alert.Severity = models.Severity(severity)
		if alert.RelatedPostIDs == nil {
			alert.RelatedPostIDs = []string{}
		}

		var meta alertMetadata
		if len(metadata) > 0 && json.Unmarshal(metadata, &meta) == nil {
			alert.RecommendedAction = meta.RecommendedAction
		}

		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// AcknowledgeAlert flips an alert to acknowledged exactly once.
// Acknowledging an already-acknowledged or unknown alert is a no-op.
func (s *Store) AcknowledgeAlert(ctx context.Context, id string) error {
	alertID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: alert id %q", ErrInvalidInput, id)
	}

	query, args, err := s.sb.Update("alerts").
		Set("is_acknowledged", true).
		Set("acknowledged_at", s.now()).
		Where(squirrel.Eq{"id": alertID, "is_acknowledged": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build acknowledge query: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "alert", id)
	}

	if tag.RowsAffected() == 0 {
		logrus.Debugf("Alert %s already acknowledged or unknown", id)
	}

	return nil
}
