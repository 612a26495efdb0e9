// Package aggregation turns stored analysis rows into the read-optimized dashboard snapshot.
package aggregation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pulseboard/social-listener/internal/models"
)

const (
	dashboardWindow      = 7 * 24 * time.Hour
	platformCountsWindow = 24 * time.Hour
	maxThemes            = 10
	maxAlerts            = 10
)

// Store is the read side of persistence the dashboard is built from
type Store interface {
	SentimentSnapshots(ctx context.Context, since time.Time) ([]models.SentimentSnapshot, error)
	Themes(ctx context.Context, since time.Time) ([]models.Theme, error)
	CompetitorMentions(ctx context.Context, since time.Time) ([]models.CompetitorMention, error)
	ActiveAlerts(ctx context.Context) ([]models.Alert, error)
	PlatformCounts(ctx context.Context, since time.Time) (map[string]int, error)
	Communities(ctx context.Context, since time.Time) ([]models.Community, error)
	LatestPostAt(ctx context.Context) (time.Time, error)
}

// Service builds dashboard snapshots
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates an aggregation service over store
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// DashboardData computes the current dashboard snapshot.
// Every section is non-nil even when its window holds no data.
func (s *Service) DashboardData(ctx context.Context) (*models.DashboardData, error) {
	now := s.now().UTC()
	weekAgo := now.Add(-dashboardWindow)

	snapshots, err := s.store.SentimentSnapshots(ctx, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("sentiment trend: %w", err)
	}

	themes, err := s.store.Themes(ctx, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("themes: %w", err)
	}

	mentions, err := s.store.CompetitorMentions(ctx, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("competitor mentions: %w", err)
	}

	alerts, err := s.store.ActiveAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}

	counts, err := s.store.PlatformCounts(ctx, now.Add(-platformCountsWindow))
	if err != nil {
		return nil, fmt.Errorf("platform counts: %w", err)
	}
	if counts == nil {
		counts = map[string]int{}
	}

	// Two windows are fetched so each community can be compared with the prior week
	communities, err := s.store.Communities(ctx, now.Add(-2*dashboardWindow))
	if err != nil {
		return nil, fmt.Errorf("communities: %w", err)
	}

	latest, err := s.store.LatestPostAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest post: %w", err)
	}

	data := &models.DashboardData{
		SentimentTrend:  sentimentTrend(snapshots, now),
		Themes:          topThemes(themes, now),
		CompetitorStats: CompetitorStats(mentions),
		Alerts:          topAlerts(alerts, now),
		PlatformCounts:  counts,
		Communities:     summarizeCommunities(communities, now),
		LastUpdated:     ISOTime(now, now),
	}
	if !latest.IsZero() {
		data.LatestPostAt = ISOTime(latest, now)
	}

	return data, nil
}

func sentimentTrend(snapshots []models.SentimentSnapshot, now time.Time) []models.SentimentPoint {
	sorted := append([]models.SentimentSnapshot(nil), snapshots...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	points := make([]models.SentimentPoint, 0, len(sorted))
	for _, snap := range sorted {
		points = append(points, models.SentimentPoint{
			Hour:          ISOTime(snap.Timestamp, now),
			PlatformID:    "all",
			AvgSentiment:  snap.OverallSentiment,
			TotalVolume:   snap.Volume,
			PositiveCount: snap.PositiveCount,
			NeutralCount:  snap.NeutralCount,
			NegativeCount: snap.NegativeCount,
		})
	}
	return points
}

// nameKey is the display identity of a named entity across batches
func nameKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// topThemes keeps the latest occurrence of each theme name, then ranks by frequency
func topThemes(themes []models.Theme, now time.Time) []models.ThemeSummary {
	latest := make(map[string]models.Theme)
	for _, t := range themes {
		key := nameKey(t.Name)
		if existing, ok := latest[key]; !ok || t.LastSeenAt.After(existing.LastSeenAt) {
			latest[key] = t
		}
	}

	deduped := make([]models.Theme, 0, len(latest))
	for _, t := range latest {
		deduped = append(deduped, t)
	}
	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].Frequency != deduped[j].Frequency {
			return deduped[i].Frequency > deduped[j].Frequency
		}
		if !deduped[i].LastSeenAt.Equal(deduped[j].LastSeenAt) {
			return deduped[i].LastSeenAt.After(deduped[j].LastSeenAt)
		}
		return deduped[i].Name < deduped[j].Name
	})
	if len(deduped) > maxThemes {
		deduped = deduped[:maxThemes]
	}

	summaries := make([]models.ThemeSummary, 0, len(deduped))
	for _, t := range deduped {
		examples := t.ExamplePosts
		if examples == nil {
			examples = []string{}
		}
		summaries = append(summaries, models.ThemeSummary{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			Frequency:      t.Frequency,
			SentimentAvg:   t.SentimentAvg,
			AudienceType:   t.AudienceType,
			IsEmerging:     t.IsEmerging,
			ExamplePostIDs: examples,
			WhyItMatters:   t.WhyItMatters,
			LastSeenAt:     ISOTime(t.LastSeenAt, now),
		})
	}
	return summaries
}

func topAlerts(alerts []models.Alert, now time.Time) []models.AlertSummary {
	sorted := append([]models.Alert(nil), alerts...)
	SortAlerts(sorted)
	if len(sorted) > maxAlerts {
		sorted = sorted[:maxAlerts]
	}

	summaries := make([]models.AlertSummary, 0, len(sorted))
	for _, a := range sorted {
		summaries = append(summaries, SummarizeAlert(a, now))
	}
	return summaries
}

// SummarizeAlert converts a stored alert into its rendered form
func SummarizeAlert(a models.Alert, now time.Time) models.AlertSummary {
	related := a.RelatedPostIDs
	if related == nil {
		related = []string{}
	}
	return models.AlertSummary{
		ID:                a.ID,
		Type:              string(a.Type),
		Severity:          string(a.Severity),
		Title:             a.Title,
		Description:       a.Description,
		RecommendedAction: a.RecommendedAction,
		RelatedPostIDs:    related,
		IsAcknowledged:    a.IsAcknowledged,
		CreatedAt:         ISOTime(a.CreatedAt, now),
	}
}

// summarizeCommunities merges community rows by models.CommunityKey. The most
// recently active row within the current window represents the community; rows
// from the prior window only contribute to the trend.
func summarizeCommunities(rows []models.Community, now time.Time) []models.CommunitySummary {
	windowStart := now.Add(-dashboardWindow)

	latest := make(map[string]models.Community)
	current := make(map[string]int)
	previous := make(map[string]int)

	for _, c := range rows {
		key := models.CommunityKey(c.Name)
		if c.LastActivityAt.Before(windowStart) {
			previous[key]++
			continue
		}
		current[key]++
		if existing, ok := latest[key]; !ok || c.LastActivityAt.After(existing.LastActivityAt) {
			latest[key] = c
		}
	}

	merged := make([]models.Community, 0, len(latest))
	for _, c := range latest {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].LastActivityAt.Equal(merged[j].LastActivityAt) {
			return merged[i].LastActivityAt.After(merged[j].LastActivityAt)
		}
		return merged[i].Name < merged[j].Name
	})

	summaries := make([]models.CommunitySummary, 0, len(merged))
	for _, c := range merged {
		key := models.CommunityKey(c.Name)
		notes := c.Notes
		if notes.KeyConcerns == nil {
			notes.KeyConcerns = []string{}
		}
		if notes.Opportunities == nil {
			notes.Opportunities = []string{}
		}
		if notes.GatheringPlaces == nil {
			notes.GatheringPlaces = []string{}
		}

		summaries = append(summaries, models.CommunitySummary{
			ID:                   c.ID,
			Name:                 c.Name,
			Description:          c.Description,
			PrimaryPlatform:      c.PrimaryPlatform,
			AudienceType:         c.AudienceType,
			EstimatedSize:        c.EstimatedSize,
			SentimentTowardBrand: c.SentimentTowardBrand,
			Notes:                notes,
			LastActivityAt:       ISOTime(c.LastActivityAt, now),
			Trend:                ClassifyTrend(current[key], previous[key]),
			Volume:               ClassifyVolume(c.EstimatedSize, current[key]),
			MentionCount:         current[key],
		})
	}
	return summaries
}
