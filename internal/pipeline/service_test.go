package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pulseboard/social-listener/internal/analysis"
	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/database"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type testDeps struct {
	store     *mockStore
	collector *mockCollector
	analyzer  *mockAnalyzer
	dashboard *mockDashboard
	archive   *mockArchive
	notifier  *mockNotifier
}

func newTestService() (*Service, *testDeps) {
	deps := &testDeps{
		store:     &mockStore{},
		collector: &mockCollector{},
		analyzer:  &mockAnalyzer{},
		dashboard: &mockDashboard{},
		archive:   &mockArchive{},
		notifier:  &mockNotifier{},
	}

	cfg := &config.Config{
		AnalysisWindow:  time.Hour,
		PipelineTimeout: time.Minute,
		AnalysisTimeout: time.Minute,
	}

	svc := NewService(cfg, deps.store, deps.collector, deps.analyzer, deps.dashboard).
		WithArchive(deps.archive).
		WithNotifier(deps.notifier)
	svc.now = func() time.Time { return fixedNow }

	return svc, deps
}

func (d *testDeps) assertExpectations(t *testing.T) {
	d.store.AssertExpectations(t)
	d.collector.AssertExpectations(t)
	d.analyzer.AssertExpectations(t)
	d.dashboard.AssertExpectations(t)
	d.archive.AssertExpectations(t)
	d.notifier.AssertExpectations(t)
}

func samplePosts() []models.Post {
	return []models.Post{
		{ID: "p1", PlatformID: models.PlatformReddit, ExternalID: "a", PostedAt: fixedNow.Add(-50 * time.Minute)},
		{ID: "p2", PlatformID: models.PlatformBluesky, ExternalID: "b", PostedAt: fixedNow.Add(-10 * time.Minute)},
	}
}

func negativeAnalysis() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:            "Users are upset",
		SentimentBreakdown: models.SentimentBreakdown{Overall: -0.6, KeyDrivers: []string{"outage"}},
		Alerts: []models.AlertResult{
			{Type: "viral_post", Severity: "low", Title: "Meme thread"},
		},
		RawResponse:    `{"summary":"Users are upset"}`,
		ProcessingTime: 3 * time.Second,
	}
}

// assignIDs mimics the store writing ids back into saved alerts
func assignIDs(args mock.Arguments) {
	alerts := args.Get(2).([]models.Alert)
	for i := range alerts {
		alerts[i].ID = fmt.Sprintf("alert-%d", i)
	}
}

func TestRunPipeline_Success(t *testing.T) {
	svc, deps := newTestService()
	posts := samplePosts()
	result := negativeAnalysis()

	deps.store.On("Ping", mock.Anything).Return(nil)
	deps.collector.On("CollectAll", mock.Anything).Return(posts)
	deps.store.On("SavePosts", mock.Anything, posts).Return(models.SaveResult{Inserted: 2}, nil)
	deps.store.On("RecentPosts", mock.Anything, time.Hour).Return(posts, nil)
	deps.analyzer.On("AnalyzeBatch", mock.Anything, posts).Return(result, nil)
	deps.store.On("SaveAnalysisBatch", mock.Anything, mock.MatchedBy(func(b *models.AnalysisBatch) bool {
		return len(b.PostIDs) == 2 &&
			b.TimeRangeStart.Equal(fixedNow.Add(-50*time.Minute)) &&
			b.TimeRangeEnd.Equal(fixedNow.Add(-10*time.Minute)) &&
			b.ProcessingTime == 3*time.Second
	}), result).Return("batch-1", nil)
	deps.archive.On("Store", mock.Anything, "analysis/batch-1.json", []byte(result.RawResponse)).Return(nil)
	deps.store.On("SaveAlerts", mock.Anything, "batch-1", mock.MatchedBy(func(alerts []models.Alert) bool {
		return len(alerts) == 2 && alerts[0].Type == models.AlertSentimentSpike && alerts[1].Type == models.AlertViralPost
	})).Run(assignIDs).Return(2, nil)
	deps.notifier.On("SendAlerts", mock.Anything, mock.MatchedBy(func(alerts []models.Alert) bool {
		return len(alerts) == 1 && alerts[0].Severity == models.SeverityHigh
	})).Return(nil)

	got, err := svc.RunPipeline(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, got.Collected)
	assert.Equal(t, 2, got.Analyzed)
	assert.Equal(t, 2, got.Alerts)
	assert.Empty(t, got.Errors)
	assert.NotNil(t, got.Errors)
	deps.assertExpectations(t)

	assert.Contains(t, svc.GetMetrics(), `"total_runs": 1`)
}

func TestRunPipeline_StorageUnavailable(t *testing.T) {
	svc, deps := newTestService()
	deps.store.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	got, err := svc.RunPipeline(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
	deps.collector.AssertNotCalled(t, "CollectAll", mock.Anything)
}

func TestRunPipeline_EmptyWindowSkipsAnalysis(t *testing.T) {
	svc, deps := newTestService()

	deps.store.On("Ping", mock.Anything).Return(nil)
	deps.collector.On("CollectAll", mock.Anything).Return([]models.Post{})
	deps.store.On("SavePosts", mock.Anything, []models.Post{}).Return(models.SaveResult{}, nil)
	deps.store.On("RecentPosts", mock.Anything, time.Hour).Return([]models.Post{}, nil)

	got, err := svc.RunPipeline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Analyzed)
	assert.Empty(t, got.Errors)
	deps.analyzer.AssertNotCalled(t, "AnalyzeBatch", mock.Anything, mock.Anything)
	deps.assertExpectations(t)
}

func TestRunPipeline_AnalysisFailure(t *testing.T) {
	svc, deps := newTestService()
	posts := samplePosts()

	deps.store.On("Ping", mock.Anything).Return(nil)
	deps.collector.On("CollectAll", mock.Anything).Return(posts)
	deps.store.On("SavePosts", mock.Anything, posts).Return(models.SaveResult{Inserted: 1, Skipped: 1}, nil)
	deps.store.On("RecentPosts", mock.Anything, time.Hour).Return(posts, nil)
	deps.analyzer.On("AnalyzeBatch", mock.Anything, posts).Return(nil, analysis.ErrMalformedPayload)

	got, err := svc.RunPipeline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Collected)
	assert.Equal(t, 0, got.Analyzed)
	require.Len(t, got.Errors, 1)
	assert.True(t, strings.HasPrefix(got.Errors[0], "analyzing: "))
	deps.store.AssertNotCalled(t, "SaveAnalysisBatch", mock.Anything, mock.Anything, mock.Anything)
	deps.assertExpectations(t)
}

type panickingCollector struct{}

func (panickingCollector) CollectAll(ctx context.Context) []models.Post {
	panic("nil map write")
}

func TestRunPipeline_StagePanicIsRecorded(t *testing.T) {
	svc, deps := newTestService()
	svc.collector = panickingCollector{}

	deps.store.On("Ping", mock.Anything).Return(nil)
	deps.store.On("RecentPosts", mock.Anything, time.Hour).Return([]models.Post{}, nil)

	got, err := svc.RunPipeline(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "collecting: panic: nil map write", got.Errors[0])
	deps.assertExpectations(t)
}

func TestRunPipeline_BatchRowFailureStopsBeforeAlerting(t *testing.T) {
	svc, deps := newTestService()
	posts := samplePosts()
	result := negativeAnalysis()

	deps.store.On("Ping", mock.Anything).Return(nil)
	deps.collector.On("CollectAll", mock.Anything).Return(posts)
	deps.store.On("SavePosts", mock.Anything, posts).Return(models.SaveResult{Skipped: 2}, nil)
	deps.store.On("RecentPosts", mock.Anything, time.Hour).Return(posts, nil)
	deps.analyzer.On("AnalyzeBatch", mock.Anything, posts).Return(result, nil)
	deps.store.On("SaveAnalysisBatch", mock.Anything, mock.Anything, result).Return("", errors.New("disk full"))

	got, err := svc.RunPipeline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Analyzed)
	assert.Equal(t, []string{"persisting: disk full"}, got.Errors)
	deps.store.AssertNotCalled(t, "SaveAlerts", mock.Anything, mock.Anything, mock.Anything)
	deps.assertExpectations(t)
}

func TestRunPipeline_PartialPersistenceContinues(t *testing.T) {
	svc, deps := newTestService()
	posts := samplePosts()
	result := negativeAnalysis()
	result.SentimentBreakdown.Overall = 0.1
	result.Alerts = nil

	deps.store.On("Ping", mock.Anything).Return(nil)
	deps.collector.On("CollectAll", mock.Anything).Return(posts)
	deps.store.On("SavePosts", mock.Anything, posts).Return(models.SaveResult{Inserted: 2}, nil)
	deps.store.On("RecentPosts", mock.Anything, time.Hour).Return(posts, nil)
	deps.analyzer.On("AnalyzeBatch", mock.Anything, posts).Return(result, nil)
	deps.store.On("SaveAnalysisBatch", mock.Anything, mock.Anything, result).
		Return("batch-2", errors.New("save themes: timeout"))
	deps.archive.On("Store", mock.Anything, "analysis/batch-2.json", mock.Anything).Return(errors.New("forbidden"))
	deps.store.On("SaveAlerts", mock.Anything, "batch-2", []models.Alert{}).Return(0, nil)

	got, err := svc.RunPipeline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"persisting: save themes: timeout"}, got.Errors)
	assert.Equal(t, 0, got.Alerts)
	deps.notifier.AssertNotCalled(t, "SendAlerts", mock.Anything, mock.Anything)
	deps.assertExpectations(t)
}

func TestRunDigest(t *testing.T) {
	svc, deps := newTestService()

	data := &models.DashboardData{
		SentimentTrend: []models.SentimentPoint{
			{AvgSentiment: 0.2, PositiveCount: 3, NegativeCount: 1},
			{AvgSentiment: -0.4, NeutralCount: 2, NegativeCount: 4},
		},
		Themes:         []models.ThemeSummary{{Name: "Coding agents"}},
		PlatformCounts: map[string]int{"reddit": 5, "hackernews": 2},
	}
	narrative := &analysis.Narrative{Content: "# Daily", Summary: "Calm", KeyInsights: []string{"x"}}

	deps.dashboard.On("DashboardData", mock.Anything).Return(data, nil)
	deps.analyzer.On("GenerateNarrative", mock.Anything, models.DigestDaily, mock.MatchedBy(func(in analysis.DigestInput) bool {
		return in.PostCount == 7 &&
			in.Sentiment.PositiveCount == 3 &&
			in.Sentiment.NegativeCount == 5 &&
			in.PeriodStart.Equal(fixedNow.Add(-24*time.Hour)) &&
			in.PeriodEnd.Equal(fixedNow)
	})).Return(narrative, nil)
	deps.store.On("SaveDigest", mock.Anything, mock.AnythingOfType("*models.Digest")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Digest).ID = "d1" }).
		Return("d1", nil)
	deps.archive.On("Store", mock.Anything, "digests/daily/d1.md", []byte("# Daily")).Return(nil)
	deps.notifier.On("SendDigest", mock.Anything, mock.AnythingOfType("*models.Digest")).Return(nil)

	digest, err := svc.RunDailyDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "d1", digest.ID)
	assert.Equal(t, models.DigestDaily, digest.Type)
	assert.Equal(t, "Calm", digest.Summary)
	assert.Equal(t, fixedNow, digest.GeneratedAt)
	deps.assertExpectations(t)
}

func TestRunWeeklyDigest_NarrativeFailure(t *testing.T) {
	svc, deps := newTestService()

	deps.dashboard.On("DashboardData", mock.Anything).Return(&models.DashboardData{}, nil)
	deps.analyzer.On("GenerateNarrative", mock.Anything, models.DigestWeekly, mock.MatchedBy(func(in analysis.DigestInput) bool {
		return in.PeriodStart.Equal(fixedNow.Add(-7 * 24 * time.Hour))
	})).Return(nil, errors.New("overloaded"))

	digest, err := svc.RunWeeklyDigest(context.Background())
	require.Error(t, err)
	assert.Nil(t, digest)
	deps.store.AssertNotCalled(t, "SaveDigest", mock.Anything, mock.Anything)
	deps.assertExpectations(t)
}

func TestRunDigest_UnknownType(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.RunDigest(context.Background(), "monthly")
	assert.Error(t, err)
}

func TestDigestInput(t *testing.T) {
	in := digestInput(&models.DashboardData{
		SentimentTrend: []models.SentimentPoint{{AvgSentiment: 0.5}, {AvgSentiment: -0.1}, {AvgSentiment: 0.2}},
		PlatformCounts: map[string]int{"reddit": 1, "bluesky": 4},
	})

	assert.InDelta(t, 0.2, in.Sentiment.Overall, 1e-9)
	assert.Equal(t, 5, in.PostCount)
	assert.Equal(t, []string{}, in.Sentiment.KeyDrivers)
	assert.Equal(t, 0, in.Enterprise.Count)
	assert.Equal(t, []string{}, in.Enterprise.Topics)

	empty := digestInput(&models.DashboardData{})
	assert.Equal(t, 0.0, empty.Sentiment.Overall)
	assert.Equal(t, 0, empty.PostCount)
}

func TestGetLatestDigest(t *testing.T) {
	svc, deps := newTestService()
	deps.store.On("LatestDigest", mock.Anything, models.DigestWeekly).
		Return(nil, fmt.Errorf("digest weekly: %w", database.ErrNotFound))
	deps.store.On("LatestDigest", mock.Anything, models.DigestDaily).
		Return(&models.Digest{ID: "d9"}, nil)

	digest, err := svc.GetLatestDigest(context.Background(), models.DigestWeekly)
	require.NoError(t, err)
	assert.Nil(t, digest)

	digest, err = svc.GetLatestDigest(context.Background(), models.DigestDaily)
	require.NoError(t, err)
	assert.Equal(t, "d9", digest.ID)
}

func TestGetActiveAlerts_SortedBySeverity(t *testing.T) {
	svc, deps := newTestService()
	deps.store.On("ActiveAlerts", mock.Anything).Return([]models.Alert{
		{ID: "m", Severity: models.SeverityMedium, CreatedAt: fixedNow},
		{ID: "c", Severity: models.SeverityCritical, CreatedAt: fixedNow.Add(-time.Hour)},
	}, nil)

	alerts, err := svc.GetActiveAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "c", alerts[0].ID)
}

func TestAcknowledgeAndPosts(t *testing.T) {
	svc, deps := newTestService()
	deps.store.On("AcknowledgeAlert", mock.Anything, "a1").Return(nil)
	deps.store.On("GetPostsByIDs", mock.Anything, []string{"p1"}).Return([]models.PostSummary{{ID: "p1"}}, nil)

	require.NoError(t, svc.AcknowledgeAlert(context.Background(), "a1"))
	require.NoError(t, svc.AcknowledgeAlert(context.Background(), "a1"))

	posts, err := svc.GetPostsByIDs(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	deps.store.AssertNumberOfCalls(t, "AcknowledgeAlert", 2)
}
