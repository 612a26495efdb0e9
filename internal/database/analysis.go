package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

// SaveAnalysisBatch writes the batch row and then its themes, sentiment snapshot,
// competitor mentions and communities as separate statements. A failed batch row
// is fatal. Later writes are not rolled back on failure: their errors are logged
// and returned joined together with the batch id.
func (s *Store) SaveAnalysisBatch(ctx context.Context, batch *models.AnalysisBatch, result *models.AnalysisResult) (string, error) {
	if batch == nil || result == nil {
		return "", fmt.Errorf("%w: batch and result are required", ErrInvalidInput)
	}

	batchID := uuid.New()
	createdAt := s.now()

	rawAnalysis, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}

	postIDs := batch.PostIDs
	if postIDs == nil {
		postIDs = []string{}
	}

	query, args, err := s.sb.Insert("analysis_batches").
		Columns("id", "post_ids", "post_count", "time_range_start", "time_range_end",
			"raw_response", "raw_analysis", "processing_time_ms", "created_at").
		Values(batchID, postIDs, len(postIDs), batch.TimeRangeStart, batch.TimeRangeEnd,
			batch.RawResponse, rawAnalysis, batch.ProcessingTime.Milliseconds(), createdAt).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build batch insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return "", mapError(err, "analysis batch", batchID.String())
	}

	batch.ID = batchID.String()
	batch.CreatedAt = createdAt
	log := logrus.WithField("batch_id", batch.ID)

	var errs []error
	writes := []struct {
		name  string
		write func() error
	}{
		{"themes", func() error { return s.insertThemes(ctx, batchID, createdAt, result.Themes) }},
		{"sentiment snapshot", func() error {
			return s.insertSnapshot(ctx, batchID, createdAt, result.SentimentBreakdown, len(postIDs))
		}},
		{"competitor mentions", func() error {
			return s.insertCompetitorMentions(ctx, batchID, createdAt, result.CompetitorAnalysis)
		}},
		{"communities", func() error {
			return s.insertCommunities(ctx, batchID, createdAt, result.CommunitiesIdentified)
		}},
	}

	for _, w := range writes {
		if err := w.write(); err != nil {
			log.Errorf("Failed to save %s: %v", w.name, err)
			errs = append(errs, fmt.Errorf("save %s: %w", w.name, err))
		}
	}

	return batch.ID, errors.Join(errs...)
}

func (s *Store) insertThemes(ctx context.Context, batchID uuid.UUID, seenAt time.Time, themes []models.ThemeResult) error {
	if len(themes) == 0 {
		return nil
	}

	insert := s.sb.Insert("themes").
		Columns("id", "batch_id", "name", "description", "frequency", "sentiment_avg",
			"audience_type", "is_emerging", "example_posts", "why_it_matters", "last_seen_at")

	for _, theme := range themes {
		examples := theme.ExamplePostIDs
		if examples == nil {
			examples = []string{}
		}
		insert = insert.Values(uuid.New(), batchID, theme.Name, theme.Description, theme.Frequency,
			theme.Sentiment, models.NormalizeAudience(theme.AudienceType), theme.IsEmerging,
			examples, theme.WhyItMatters, seenAt)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, query, args...)
	return err
}

func (s *Store) insertSnapshot(ctx context.Context, batchID uuid.UUID, timestamp time.Time, breakdown models.SentimentBreakdown, volume int) error {
	query, args, err := s.sb.Insert("sentiment_snapshots").
		Columns("id", "batch_id", "overall_sentiment", "positive_count", "neutral_count",
			"negative_count", "volume", "timestamp").
		Values(uuid.New(), batchID, breakdown.Overall, breakdown.PositiveCount, breakdown.NeutralCount,
			breakdown.NegativeCount, volume, timestamp).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, query, args...)
	return err
}

// insertCompetitorMentions writes one row per cited comparison post
func (s *Store) insertCompetitorMentions(ctx context.Context, batchID uuid.UUID, mentionedAt time.Time, competitors []models.CompetitorResult) error {
	insert := s.sb.Insert("competitor_mentions").
		Columns("id", "batch_id", "post_id", "competitor", "sentiment", "is_comparison", "mentioned_at")

	rows := 0
	for _, comp := range competitors {
		for _, postID := range comp.ComparisonPosts {
			insert = insert.Values(uuid.New(), batchID, postID, models.NormalizeCompetitor(comp.Competitor),
				comp.Sentiment, true, mentionedAt)
			rows++
		}
	}
	if rows == 0 {
		return nil
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, query, args...)
	return err
}

func (s *Store) insertCommunities(ctx context.Context, batchID uuid.UUID, activeAt time.Time, communities []models.CommunityResult) error {
	if len(communities) == 0 {
		return nil
	}

	insert := s.sb.Insert("communities").
		Columns("id", "batch_id", "name", "description", "primary_platform", "audience_type",
			"estimated_size", "sentiment_toward_brand", "notes", "last_activity_at")

	for _, community := range communities {
		notes, err := json.Marshal(models.CommunityNotes{
			KeyConcerns:     nonNil(community.KeyConcerns),
			Opportunities:   nonNil(community.Opportunities),
			GatheringPlaces: nonNil(community.GatheringPlaces),
		})
		if err != nil {
			return fmt.Errorf("encode notes for %q: %w", community.Name, err)
		}

		insert = insert.Values(uuid.New(), batchID, community.Name, community.Description,
			community.PrimaryPlatform, models.NormalizeAudience(community.AudienceType),
			models.NormalizeSize(community.SizeIndicator), community.SentimentTowardClaude, notes, activeAt)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, query, args...)
	return err
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
