package pipeline

import (
	"context"
	"fmt"

	"github.com/pulseboard/social-listener/internal/metrics"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/pulseboard/social-listener/internal/notifications"
	"github.com/pulseboard/social-listener/internal/rules"
	"github.com/pulseboard/social-listener/internal/storage"
	"github.com/sirupsen/logrus"
)

// RunPipeline collects, analyzes and alerts once. Stage failures are recorded in
// the result's Errors and end the run early where later stages depend on them;
// only an unreachable store fails the whole invocation.
func (s *Service) RunPipeline(ctx context.Context) (*models.PipelineResult, error) {
	start := s.now()
	logrus.Info("Starting pipeline run")

	if s.config.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.PipelineTimeout)
		defer cancel()
	}

	if err := s.store.Ping(ctx); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
		logrus.Errorf("Pipeline aborted, storage unavailable: %v", err)
		return nil, fmt.Errorf("storage unavailable: %w", err)
	}

	result := &models.PipelineResult{Errors: []string{}}
	s.execute(ctx, result)

	elapsed := s.now().Sub(start)
	result.DurationMS = elapsed.Milliseconds()
	s.updateMetrics(result, s.now(), elapsed)

	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "partial"
	}
	metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	metrics.PipelineDurationSeconds.Observe(elapsed.Seconds())

	logrus.WithFields(logrus.Fields{
		"collected": result.Collected,
		"analyzed":  result.Analyzed,
		"alerts":    result.Alerts,
		"errors":    len(result.Errors),
	}).Infof("Pipeline run completed in %v", elapsed)

	return result, nil
}

func (s *Service) execute(ctx context.Context, result *models.PipelineResult) {
	// collecting
	err := runStage(models.StageCollecting, func() error {
		posts := s.collector.CollectAll(ctx)
		saved, err := s.store.SavePosts(ctx, posts)
		result.Collected = saved.Inserted
		logrus.Infof("Collected %d posts, %d new", len(posts), saved.Inserted)
		return err
	})
	if err != nil {
		recordStageError(result, models.StageCollecting, err)
	}

	// fetching-for-analysis
	var recent []models.Post
	err = runStage(models.StageFetchingForAnalysis, func() error {
		var err error
		recent, err = s.store.RecentPosts(ctx, s.config.AnalysisWindow)
		return err
	})
	if err != nil {
		recordStageError(result, models.StageFetchingForAnalysis, err)
		return
	}
	if len(recent) == 0 {
		logrus.Infof("No posts collected in the last %v, skipping analysis", s.config.AnalysisWindow)
		return
	}

	// analyzing
	var analysisResult *models.AnalysisResult
	err = runStage(models.StageAnalyzing, func() error {
		actx := ctx
		if s.config.AnalysisTimeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, s.config.AnalysisTimeout)
			defer cancel()
		}
		var err error
		analysisResult, err = s.analyzer.AnalyzeBatch(actx, recent)
		return err
	})
	if err != nil {
		recordStageError(result, models.StageAnalyzing, err)
		return
	}
	result.Analyzed = len(recent)

	// persisting
	var batchID string
	err = runStage(models.StagePersisting, func() error {
		batch := newBatch(recent, analysisResult)
		var err error
		batchID, err = s.store.SaveAnalysisBatch(ctx, batch, analysisResult)
		return err
	})
	if err != nil {
		recordStageError(result, models.StagePersisting, err)
	}
	if batchID == "" {
		return
	}
	s.archiveBlob(ctx, storage.AnalysisPath(batchID), []byte(analysisResult.RawResponse))

	// alerting
	var alerts []models.Alert
	err = runStage(models.StageAlerting, func() error {
		alerts = rules.Evaluate(analysisResult)
		saved, err := s.store.SaveAlerts(ctx, batchID, alerts)
		result.Alerts = saved
		return err
	})
	if err != nil {
		recordStageError(result, models.StageAlerting, err)
	}

	persisted := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.ID != "" {
			persisted = append(persisted, a)
			metrics.AlertsGeneratedTotal.WithLabelValues(string(a.Severity)).Inc()
		}
	}
	if urgent := notifications.UrgentAlerts(persisted); len(urgent) > 0 {
		s.notify(func(n notifications.NotificationInterface) error { return n.SendAlerts(ctx, urgent) })
	}
}

// newBatch describes the analyzed posts; the time range spans their posting times
func newBatch(posts []models.Post, result *models.AnalysisResult) *models.AnalysisBatch {
	batch := &models.AnalysisBatch{
		PostIDs:        make([]string, 0, len(posts)),
		RawResponse:    result.RawResponse,
		ProcessingTime: result.ProcessingTime,
	}

	for i, p := range posts {
		batch.PostIDs = append(batch.PostIDs, p.ID)
		if i == 0 || p.PostedAt.Before(batch.TimeRangeStart) {
			batch.TimeRangeStart = p.PostedAt
		}
		if i == 0 || p.PostedAt.After(batch.TimeRangeEnd) {
			batch.TimeRangeEnd = p.PostedAt
		}
	}

	return batch
}
