package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pulseboard/social-listener/internal/analysis"
	"github.com/pulseboard/social-listener/internal/metrics"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/pulseboard/social-listener/internal/notifications"
	"github.com/pulseboard/social-listener/internal/storage"
	"github.com/sirupsen/logrus"
)

// digestPeriods is the reporting period stamped on each digest type
var digestPeriods = map[models.DigestType]time.Duration{
	models.DigestDaily:  24 * time.Hour,
	models.DigestWeekly: 7 * 24 * time.Hour,
}

// RunDailyDigest generates and stores the daily digest
func (s *Service) RunDailyDigest(ctx context.Context) (*models.Digest, error) {
	return s.RunDigest(ctx, models.DigestDaily)
}

// RunWeeklyDigest generates and stores the weekly digest.
// It reads the same dashboard windows as the daily digest; only the stamped period differs.
func (s *Service) RunWeeklyDigest(ctx context.Context) (*models.Digest, error) {
	return s.RunDigest(ctx, models.DigestWeekly)
}

// RunDigest builds a narrative digest from the current dashboard snapshot and stores it
func (s *Service) RunDigest(ctx context.Context, digestType models.DigestType) (*models.Digest, error) {
	period, ok := digestPeriods[digestType]
	if !ok {
		return nil, fmt.Errorf("unknown digest type %q", digestType)
	}

	digest, err := s.generateDigest(ctx, digestType, period)
	if err != nil {
		metrics.DigestsGeneratedTotal.WithLabelValues(string(digestType), "failed").Inc()
		logrus.WithField("type", digestType).Errorf("Digest generation failed: %v", err)
		return nil, err
	}
	metrics.DigestsGeneratedTotal.WithLabelValues(string(digestType), "ok").Inc()

	s.archiveBlob(ctx, storage.DigestPath(digestType, digest.ID), []byte(digest.Content))
	s.notify(func(n notifications.NotificationInterface) error { return n.SendDigest(ctx, digest) })

	s.mu.Lock()
	s.metrics.LastDigest = digest.GeneratedAt
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"type":      digestType,
		"digest_id": digest.ID,
		"insights":  len(digest.KeyInsights),
	}).Info("Digest generated")

	return digest, nil
}

func (s *Service) generateDigest(ctx context.Context, digestType models.DigestType, period time.Duration) (*models.Digest, error) {
	now := s.now().UTC()
	periodStart := now.Add(-period)

	data, err := s.dashboard.DashboardData(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard data: %w", err)
	}

	in := digestInput(data)
	in.PeriodStart = periodStart
	in.PeriodEnd = now

	narrative, err := s.analyzer.GenerateNarrative(ctx, digestType, in)
	if err != nil {
		return nil, err
	}

	digest := &models.Digest{
		Type:        digestType,
		PeriodStart: periodStart,
		PeriodEnd:   now,
		Content:     narrative.Content,
		Summary:     narrative.Summary,
		KeyInsights: narrative.KeyInsights,
		GeneratedAt: now,
	}

	if _, err := s.store.SaveDigest(ctx, digest); err != nil {
		return nil, fmt.Errorf("save digest: %w", err)
	}

	return digest, nil
}

// digestInput condenses a dashboard snapshot into narrative input. Overall
// sentiment is the mean of the trend points and the post count is the sum of
// platform counts; enterprise signals are not aggregated across batches.
func digestInput(data *models.DashboardData) analysis.DigestInput {
	in := analysis.DigestInput{
		Themes:      data.Themes,
		Competitors: data.CompetitorStats,
		Communities: data.Communities,
		Alerts:      data.Alerts,
		Sentiment:   models.SentimentBreakdown{KeyDrivers: []string{}},
		Enterprise: models.EnterpriseSignals{
			Topics:             []string{},
			PainPoints:         []string{},
			EvaluationCriteria: []string{},
		},
	}

	if n := len(data.SentimentTrend); n > 0 {
		var total float64
		for _, point := range data.SentimentTrend {
			total += point.AvgSentiment
			in.Sentiment.PositiveCount += point.PositiveCount
			in.Sentiment.NeutralCount += point.NeutralCount
			in.Sentiment.NegativeCount += point.NegativeCount
		}
		in.Sentiment.Overall = total / float64(n)
	}

	for _, count := range data.PlatformCounts {
		in.PostCount += count
	}

	return in
}
