// Package pipeline runs collection, analysis, alerting and digest generation end to end.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pulseboard/social-listener/internal/aggregation"
	"github.com/pulseboard/social-listener/internal/analysis"
	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/database"
	"github.com/pulseboard/social-listener/internal/metrics"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/pulseboard/social-listener/internal/notifications"
	"github.com/pulseboard/social-listener/internal/storage"
	"github.com/sirupsen/logrus"
)

// Store is the persistence the pipeline writes to and serves reads from
type Store interface {
	Ping(ctx context.Context) error
	SavePosts(ctx context.Context, posts []models.Post) (models.SaveResult, error)
	RecentPosts(ctx context.Context, window time.Duration) ([]models.Post, error)
	SaveAnalysisBatch(ctx context.Context, batch *models.AnalysisBatch, result *models.AnalysisResult) (string, error)
	SaveAlerts(ctx context.Context, batchID string, alerts []models.Alert) (int, error)
	ActiveAlerts(ctx context.Context) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id string) error
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.PostSummary, error)
	SaveDigest(ctx context.Context, digest *models.Digest) (string, error)
	LatestDigest(ctx context.Context, digestType models.DigestType) (*models.Digest, error)
}

// Collector gathers posts from every enabled platform
type Collector interface {
	CollectAll(ctx context.Context) []models.Post
}

// Analyzer turns posts and aggregates into model output
type Analyzer interface {
	AnalyzeBatch(ctx context.Context, posts []models.Post) (*models.AnalysisResult, error)
	GenerateNarrative(ctx context.Context, digestType models.DigestType, in analysis.DigestInput) (*analysis.Narrative, error)
}

// Dashboard builds the aggregated snapshot
type Dashboard interface {
	DashboardData(ctx context.Context) (*models.DashboardData, error)
}

// Service orchestrates pipeline runs and serves the read operations behind the API
type Service struct {
	config    *config.Config
	store     Store
	collector Collector
	analyzer  Analyzer
	dashboard Dashboard
	archive   storage.StorageInterface
	notifier  notifications.NotificationInterface
	metrics   *Metrics
	mu        sync.RWMutex
	now       func() time.Time
}

// Metrics is the in-process summary of recent runs exposed on /status
type Metrics struct {
	TotalRuns       int       `json:"total_runs"`
	LastRun         time.Time `json:"last_run"`
	LastRunDuration string    `json:"last_run_duration"`
	LastCollected   int       `json:"last_collected"`
	LastAnalyzed    int       `json:"last_analyzed"`
	LastAlerts      int       `json:"last_alerts"`
	LastErrors      []string  `json:"last_errors"`
	ErrorCount      int       `json:"error_count"`
	LastDigest      time.Time `json:"last_digest"`
}

// NewService creates a pipeline over its collaborators. Archive and notifier are optional.
func NewService(cfg *config.Config, store Store, collector Collector, analyzer Analyzer, dashboard Dashboard) *Service {
	return &Service{
		config:    cfg,
		store:     store,
		collector: collector,
		analyzer:  analyzer,
		dashboard: dashboard,
		metrics:   &Metrics{LastErrors: []string{}},
		now:       time.Now,
	}
}

// WithArchive enables archiving of raw analysis output and digests
func (s *Service) WithArchive(archive storage.StorageInterface) *Service {
	s.archive = archive
	return s
}

// WithNotifier enables pushing urgent alerts and digests
func (s *Service) WithNotifier(notifier notifications.NotificationInterface) *Service {
	s.notifier = notifier
	return s
}

// GetDashboardData returns the current dashboard snapshot
func (s *Service) GetDashboardData(ctx context.Context) (*models.DashboardData, error) {
	return s.dashboard.DashboardData(ctx)
}

// GetActiveAlerts returns unacknowledged alerts, most severe and newest first
func (s *Service) GetActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	alerts, err := s.store.ActiveAlerts(ctx)
	if err != nil {
		return nil, err
	}
	aggregation.SortAlerts(alerts)
	return alerts, nil
}

// AcknowledgeAlert marks an alert as handled. Repeating it is a no-op.
func (s *Service) AcknowledgeAlert(ctx context.Context, id string) error {
	return s.store.AcknowledgeAlert(ctx, id)
}

// GetPostsByIDs returns post summaries for drill-down
func (s *Service) GetPostsByIDs(ctx context.Context, ids []string) ([]models.PostSummary, error) {
	return s.store.GetPostsByIDs(ctx, ids)
}

// GetLatestDigest returns the newest digest of a type, or nil when none exists
func (s *Service) GetLatestDigest(ctx context.Context, digestType models.DigestType) (*models.Digest, error) {
	digest, err := s.store.LatestDigest(ctx, digestType)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return digest, err
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

func (s *Service) updateMetrics(result *models.PipelineResult, finishedAt time.Time, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalRuns++
	s.metrics.LastRun = finishedAt
	s.metrics.LastRunDuration = duration.String()
	s.metrics.LastCollected = result.Collected
	s.metrics.LastAnalyzed = result.Analyzed
	s.metrics.LastAlerts = result.Alerts
	s.metrics.LastErrors = append([]string{}, result.Errors...)
	s.metrics.ErrorCount += len(result.Errors)
}

func (s *Service) archiveBlob(ctx context.Context, name string, data []byte) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Store(ctx, name, data); err != nil {
		logrus.WithField("blob", name).Errorf("Failed to archive: %v", err)
	}
}

func (s *Service) notify(send func(notifications.NotificationInterface) error) {
	if s.notifier == nil {
		return
	}
	if err := send(s.notifier); err != nil {
		logrus.Errorf("Failed to send notification: %v", err)
	}
}

func stageError(stage string, err error) string {
	return fmt.Sprintf("%s: %v", stage, err)
}

// runStage executes fn, converting a panic into an error
func runStage(stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("stage", stage).Errorf("Stage panicked: %v", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func recordStageError(result *models.PipelineResult, stage string, err error) {
	logrus.WithField("stage", stage).Errorf("Pipeline stage failed: %v", err)
	metrics.StageErrorsTotal.WithLabelValues(stage).Inc()
	result.Errors = append(result.Errors, stageError(stage, err))
}
