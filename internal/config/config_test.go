package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/social")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, DefaultKeywords, cfg.Keywords)
	assert.Equal(t, DefaultSubreddits, cfg.RedditSubreddits)
	assert.Equal(t, time.Second, cfg.RedditPause)
	assert.Equal(t, 500*time.Millisecond, cfg.BlueskyPause)
	assert.Equal(t, 5, cfg.BlueskyKeywordLimit)
	assert.Equal(t, time.Hour, cfg.AnalysisWindow)
	assert.Equal(t, "0 */30 * * * *", cfg.PipelineSchedule)
	assert.False(t, cfg.NotificationsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/social")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("KEYWORDS", " claude , ,sonnet")
	t.Setenv("REDDIT_PAUSE", "250ms")
	t.Setenv("ANALYSIS_WINDOW", "2h")
	t.Setenv("TEAMS_WEBHOOK_URL", "https://example.com/hook")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, []string{"claude", "sonnet"}, cfg.Keywords)
	assert.Equal(t, 250*time.Millisecond, cfg.RedditPause)
	assert.Equal(t, 2*time.Hour, cfg.AnalysisWindow)
	assert.True(t, cfg.NotificationsEnabled())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing database url",
			env:     map[string]string{"ANTHROPIC_API_KEY": "k"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "missing anthropic key",
			env:     map[string]string{"DATABASE_URL": "postgres://x"},
			wantErr: "ANTHROPIC_API_KEY",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "LLM_PROVIDER": "llama"},
			wantErr: "LLM_PROVIDER",
		},
		{
			name: "email without smtp",
			env: map[string]string{
				"DATABASE_URL":       "postgres://x",
				"ANTHROPIC_API_KEY":  "k",
				"NOTIFICATION_EMAIL": "team@example.com",
			},
			wantErr: "SMTP",
		},
		{
			name: "min conns above max",
			env: map[string]string{
				"DATABASE_URL":       "postgres://x",
				"ANTHROPIC_API_KEY":  "k",
				"DATABASE_MIN_CONNS": "5",
				"DATABASE_MAX_CONNS": "2",
			},
			wantErr: "DATABASE_MIN_CONNS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DATABASE_URL", "ANTHROPIC_API_KEY", "LLM_PROVIDER", "NOTIFICATION_EMAIL"} {
				t.Setenv(key, "")
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
