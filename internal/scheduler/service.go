package scheduler

import (
	"context"
	"fmt"

	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner is the work the scheduler triggers
type Runner interface {
	RunPipeline(ctx context.Context) (*models.PipelineResult, error)
	RunDailyDigest(ctx context.Context) (*models.Digest, error)
	RunWeeklyDigest(ctx context.Context) (*models.Digest, error)
}

// Service handles scheduling of pipeline runs and digests
type Service struct {
	config *config.Config
	runner Runner
	cron   *cron.Cron
}

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

// NewService creates a new scheduler service. A job still running when its
// next tick fires is skipped rather than overlapped.
func NewService(cfg *config.Config, runner Runner) *Service {
	return &Service{
		config: cfg,
		runner: runner,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

func (s *Service) jobs() []job {
	return []job{
		{
			name:     "pipeline",
			schedule: s.config.PipelineSchedule,
			run: func(ctx context.Context) error {
				result, err := s.runner.RunPipeline(ctx)
				if err != nil {
					return err
				}
				if len(result.Errors) > 0 {
					logrus.Warnf("Scheduled pipeline run finished with %d stage errors", len(result.Errors))
				}
				return nil
			},
		},
		{
			name:     "daily-digest",
			schedule: s.config.DailyDigestSchedule,
			run: func(ctx context.Context) error {
				_, err := s.runner.RunDailyDigest(ctx)
				return err
			},
		},
		{
			name:     "weekly-digest",
			schedule: s.config.WeeklyDigestSchedule,
			run: func(ctx context.Context) error {
				_, err := s.runner.RunWeeklyDigest(ctx)
				return err
			},
		},
	}
}

// Start registers every job and begins the schedule
func (s *Service) Start() error {
	for _, j := range s.jobs() {
		j := j
		_, err := s.cron.AddFunc(j.schedule, func() {
			logrus.Infof("Starting scheduled %s run", j.name)
			if err := j.run(context.Background()); err != nil {
				logrus.Errorf("Scheduled %s run failed: %v", j.name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", j.name, j.schedule, err)
		}
		logrus.Infof("Scheduled %s with %q", j.name, j.schedule)
	}

	s.cron.Start()
	logrus.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
