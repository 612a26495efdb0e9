package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pulseboard/social-listener/internal/models"
)

// SentimentSnapshots returns snapshots taken since the given time, oldest first
func (s *Store) SentimentSnapshots(ctx context.Context, since time.Time) ([]models.SentimentSnapshot, error) {
	query, args, err := s.sb.Select("id", "batch_id", "overall_sentiment", "positive_count",
		"neutral_count", "negative_count", "volume", "timestamp").
		From("sentiment_snapshots").
		Where(squirrel.GtOrEq{"timestamp": since}).
		OrderBy("timestamp ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshots query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]models.SentimentSnapshot, 0)
	for rows.Next() {
		var (
			snap        models.SentimentSnapshot
			id, batchID uuid.UUID
		)
		if err := rows.Scan(&id, &batchID, &snap.OverallSentiment, &snap.PositiveCount, &snap.NeutralCount,
			&snap.NegativeCount, &snap.Volume, &snap.Timestamp); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.ID = id.String()
		snap.BatchID = batchID.String()
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// Themes returns theme rows seen since the given time, most recent first.
// Rows for the same name recur across batches; callers pick the latest.
func (s *Store) Themes(ctx context.Context, since time.Time) ([]models.Theme, error) {
	query, args, err := s.sb.Select("id", "batch_id", "name", "description", "frequency", "sentiment_avg",
		"audience_type", "is_emerging", "example_posts", "why_it_matters", "last_seen_at").
		From("themes").
		Where(squirrel.GtOrEq{"last_seen_at": since}).
		OrderBy("last_seen_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build themes query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query themes: %w", err)
	}
	defer rows.Close()

	themes := make([]models.Theme, 0)
	for rows.Next() {
		var (
			theme       models.Theme
			id, batchID uuid.UUID
		)
		if err := rows.Scan(&id, &batchID, &theme.Name, &theme.Description, &theme.Frequency, &theme.SentimentAvg,
			&theme.AudienceType, &theme.IsEmerging, &theme.ExamplePosts, &theme.WhyItMatters, &theme.LastSeenAt); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		theme.ID = id.String()
		theme.BatchID = batchID.String()
		themes = append(themes, theme)
	}

	return themes, rows.Err()
}

// CompetitorMentions returns mentions recorded since the given time
func (s *Store) CompetitorMentions(ctx context.Context, since time.Time) ([]models.CompetitorMention, error) {
	query, args, err := s.sb.Select("id", "batch_id", "post_id", "competitor", "sentiment", "is_comparison", "mentioned_at").
		From("competitor_mentions").
		Where(squirrel.GtOrEq{"mentioned_at": since}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build competitor mentions query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query competitor mentions: %w", err)
	}
	defer rows.Close()

	mentions := make([]models.CompetitorMention, 0)
	for rows.Next() {
		var (
			mention     models.CompetitorMention
			id, batchID uuid.UUID
		)
		if err := rows.Scan(&id, &batchID, &mention.PostID, &mention.Competitor, &mention.Sentiment,
			&mention.IsComparison, &mention.MentionedAt); err != nil {
			return nil, fmt.Errorf("scan competitor mention: %w", err)
		}
		mention.ID = id.String()
		mention.BatchID = batchID.String()
		mentions = append(mentions, mention)
	}

	return mentions, rows.Err()
}

// Communities returns community rows active since the given time, most recent first
func (s *Store) Communities(ctx context.Context, since time.Time) ([]models.Community, error) {
	query, args, err := s.sb.Select("id", "batch_id", "name", "description", "primary_platform", "audience_type",
		"estimated_size", "sentiment_toward_brand", "notes", "last_activity_at").
		From("communities").
		Where(squirrel.GtOrEq{"last_activity_at": since}).
		OrderBy("last_activity_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build communities query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query communities: %w", err)
	}
	defer rows.Close()

	communities := make([]models.Community, 0)
	for rows.Next() {
		var (
			community   models.Community
			id, batchID uuid.UUID
			notes       []byte
		)
		if err := rows.Scan(&id, &batchID, &community.Name, &community.Description, &community.PrimaryPlatform,
			&community.AudienceType, &community.EstimatedSize, &community.SentimentTowardBrand, &notes,
			&community.LastActivityAt); err != nil {
			return nil, fmt.Errorf("scan community: %w", err)
		}
		community.ID = id.String()
		community.BatchID = batchID.String()
		if len(notes) > 0 {
			if err := json.Unmarshal(notes, &community.Notes); err != nil {
				return nil, fmt.Errorf("decode notes for community %s: %w", community.ID, err)
			}
		}
		communities = append(communities, community)
	}

	return communities, rows.Err()
}
