package pipeline

import (
	"context"
	"time"

	"github.com/pulseboard/social-listener/internal/analysis"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) SavePosts(ctx context.Context, posts []models.Post) (models.SaveResult, error) {
	args := m.Called(ctx, posts)
	return args.Get(0).(models.SaveResult), args.Error(1)
}

func (m *mockStore) RecentPosts(ctx context.Context, window time.Duration) ([]models.Post, error) {
	args := m.Called(ctx, window)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *mockStore) SaveAnalysisBatch(ctx context.Context, batch *models.AnalysisBatch, result *models.AnalysisResult) (string, error) {
	args := m.Called(ctx, batch, result)
	return args.String(0), args.Error(1)
}

func (m *mockStore) SaveAlerts(ctx context.Context, batchID string, alerts []models.Alert) (int, error) {
	args := m.Called(ctx, batchID, alerts)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) ActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	args := m.Called(ctx)
	alerts, _ := args.Get(0).([]models.Alert)
	return alerts, args.Error(1)
}

func (m *mockStore) AcknowledgeAlert(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) GetPostsByIDs(ctx context.Context, ids []string) ([]models.PostSummary, error) {
	args := m.Called(ctx, ids)
	posts, _ := args.Get(0).([]models.PostSummary)
	return posts, args.Error(1)
}

func (m *mockStore) SaveDigest(ctx context.Context, digest *models.Digest) (string, error) {
	args := m.Called(ctx, digest)
	return args.String(0), args.Error(1)
}

func (m *mockStore) LatestDigest(ctx context.Context, digestType models.DigestType) (*models.Digest, error) {
	args := m.Called(ctx, digestType)
	digest, _ := args.Get(0).(*models.Digest)
	return digest, args.Error(1)
}

type mockCollector struct {
	mock.Mock
}

func (m *mockCollector) CollectAll(ctx context.Context) []models.Post {
	posts, _ := m.Called(ctx).Get(0).([]models.Post)
	return posts
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) AnalyzeBatch(ctx context.Context, posts []models.Post) (*models.AnalysisResult, error) {
	args := m.Called(ctx, posts)
	result, _ := args.Get(0).(*models.AnalysisResult)
	return result, args.Error(1)
}

func (m *mockAnalyzer) GenerateNarrative(ctx context.Context, digestType models.DigestType, in analysis.DigestInput) (*analysis.Narrative, error) {
	args := m.Called(ctx, digestType, in)
	narrative, _ := args.Get(0).(*analysis.Narrative)
	return narrative, args.Error(1)
}

type mockDashboard struct {
	mock.Mock
}

func (m *mockDashboard) DashboardData(ctx context.Context) (*models.DashboardData, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).(*models.DashboardData)
	return data, args.Error(1)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) Store(ctx context.Context, name string, data []byte) error {
	return m.Called(ctx, name, data).Error(0)
}

func (m *mockArchive) Retrieve(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockArchive) List(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	return m.Called(ctx, alerts).Error(0)
}

func (m *mockNotifier) SendDigest(ctx context.Context, digest *models.Digest) error {
	return m.Called(ctx, digest).Error(0)
}
