package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	pipelineRuns int
	daily        int
	weekly       int
	err          error
}

func (f *fakeRunner) RunPipeline(ctx context.Context) (*models.PipelineResult, error) {
	f.pipelineRuns++
	if f.err != nil {
		return nil, f.err
	}
	return &models.PipelineResult{Errors: []string{"analyzing: timeout"}}, nil
}

func (f *fakeRunner) RunDailyDigest(ctx context.Context) (*models.Digest, error) {
	f.daily++
	return &models.Digest{}, f.err
}

func (f *fakeRunner) RunWeeklyDigest(ctx context.Context) (*models.Digest, error) {
	f.weekly++
	return &models.Digest{}, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		PipelineSchedule:     "0 */30 * * * *",
		DailyDigestSchedule:  "0 0 9 * * *",
		WeeklyDigestSchedule: "0 0 9 * * 1",
	}
}

func TestStart_RegistersAllJobs(t *testing.T) {
	s := NewService(testConfig(), &fakeRunner{})
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 3)
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.DailyDigestSchedule = "every morning"

	s := NewService(cfg, &fakeRunner{})
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily-digest")
}

func TestJobs_InvokeRunner(t *testing.T) {
	runner := &fakeRunner{}
	s := NewService(testConfig(), runner)

	for _, j := range s.jobs() {
		assert.NoError(t, j.run(context.Background()), j.name)
	}

	assert.Equal(t, 1, runner.pipelineRuns)
	assert.Equal(t, 1, runner.daily)
	assert.Equal(t, 1, runner.weekly)
}

func TestJobs_PropagateErrors(t *testing.T) {
	runner := &fakeRunner{err: errors.New("storage unavailable")}
	s := NewService(testConfig(), runner)

	for _, j := range s.jobs() {
		assert.Error(t, j.run(context.Background()), j.name)
	}
}
