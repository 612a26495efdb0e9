package app

import (
	"testing"

	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNewSources(t *testing.T) {
	cfg := &config.Config{
		Keywords:            []string{"claude"},
		RedditSubreddits:    []string{"ClaudeAI"},
		BlueskyKeywordLimit: 5,
		HNStoriesPerList:    100,
	}

	srcs := NewSources(cfg)
	names := make([]string, 0, len(srcs))
	for _, src := range srcs {
		names = append(names, src.GetName())
		assert.True(t, src.IsEnabled(), src.GetName())
	}

	assert.Equal(t, []string{models.PlatformReddit, models.PlatformHackerNews, models.PlatformBluesky}, names)
}

func TestNewSources_NoKeywordsDisablesCollectors(t *testing.T) {
	srcs := NewSources(&config.Config{RedditSubreddits: []string{"ClaudeAI"}})
	for _, src := range srcs {
		assert.False(t, src.IsEnabled(), src.GetName())
	}
}
