package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port       string
	Debug      bool
	TimeZone   string
	CronSecret string

	// Database configuration
	DatabaseURL      string
	DatabaseMaxConns int
	DatabaseMinConns int
	AutoMigrate      bool

	// Language model configuration
	LLMProvider     string // "anthropic" or "gemini"
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
	LLMMaxTokens    int

	// Collection configuration
	Keywords            []string
	RedditSubreddits    []string
	RedditClientID      string
	RedditClientSecret  string
	RedditPause         time.Duration
	BlueskyPause        time.Duration
	BlueskyKeywordLimit int
	HNStoriesPerList    int

	// Pipeline configuration
	AnalysisWindow  time.Duration
	PipelineTimeout time.Duration
	AnalysisTimeout time.Duration

	// Schedule configuration (cron expressions with a seconds field)
	EnableScheduler      bool
	PipelineSchedule     string
	DailyDigestSchedule  string
	WeeklyDigestSchedule string

	// Azure Storage configuration
	StorageAccount   string
	StorageContainer string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// DefaultKeywords are the terms a post must mention to be collected
var DefaultKeywords = []string{
	"claude",
	"anthropic",
	"chatgpt",
	"openai",
	"gemini",
	"llama",
	"mistral",
	"ai assistant",
	"llm",
	"large language model",
}

// DefaultSubreddits are the communities polled by the Reddit collector
var DefaultSubreddits = []string{
	"LocalLLaMA",
	"ChatGPT",
	"artificial",
	"MachineLearning",
	"ClaudeAI",
	"singularity",
	"OpenAI",
	"Anthropic",
	"LanguageTechnology",
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		Debug:      getBoolEnv("DEBUG", false),
		TimeZone:   getEnv("TIMEZONE", "UTC"),
		CronSecret: getEnv("CRON_SECRET", ""),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),
		DatabaseMinConns: getIntEnv("DATABASE_MIN_CONNS", 1),
		AutoMigrate:      getBoolEnv("AUTO_MIGRATE", true),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "anthropic")),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMMaxTokens:    getIntEnv("LLM_MAX_TOKENS", 8192),

		Keywords:            getSliceEnv("KEYWORDS", DefaultKeywords),
		RedditSubreddits:    getSliceEnv("REDDIT_SUBREDDITS", DefaultSubreddits),
		RedditClientID:      getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret:  getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditPause:         getDurationEnv("REDDIT_PAUSE", time.Second),
		BlueskyPause:        getDurationEnv("BLUESKY_PAUSE", 500*time.Millisecond),
		BlueskyKeywordLimit: getIntEnv("BLUESKY_KEYWORD_LIMIT", 5),
		HNStoriesPerList:    getIntEnv("HN_STORIES_PER_LIST", 100),

		AnalysisWindow:  getDurationEnv("ANALYSIS_WINDOW", time.Hour),
		PipelineTimeout: getDurationEnv("PIPELINE_TIMEOUT", 30*time.Minute),
		AnalysisTimeout: getDurationEnv("ANALYSIS_TIMEOUT", 5*time.Minute),

		EnableScheduler:      getBoolEnv("ENABLE_SCHEDULER", true),
		PipelineSchedule:     getEnv("PIPELINE_SCHEDULE", "0 */30 * * * *"),
		DailyDigestSchedule:  getEnv("DAILY_DIGEST_SCHEDULE", "0 0 9 * * *"),
		WeeklyDigestSchedule: getEnv("WEEKLY_DIGEST_SCHEDULE", "0 0 9 * * 1"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "social-listener"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is 'anthropic'")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER is 'gemini'")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'anthropic' or 'gemini'")
	}

	if len(c.Keywords) == 0 {
		return fmt.Errorf("at least one keyword must be configured")
	}

	if c.DatabaseMinConns > c.DatabaseMaxConns {
		return fmt.Errorf("DATABASE_MIN_CONNS cannot exceed DATABASE_MAX_CONNS")
	}

	if c.AnalysisWindow <= 0 {
		return fmt.Errorf("ANALYSIS_WINDOW must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// NotificationsEnabled reports whether any notification channel is configured
func (c *Config) NotificationsEnabled() bool {
	return c.TeamsWebhookURL != "" || c.NotificationEmail != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			return items
		}
	}
	return defaultValue
}
