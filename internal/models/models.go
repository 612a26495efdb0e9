package models

import (
	"strings"
	"time"
)

// Platform identifiers used across collectors, storage and analysis prompts
const (
	PlatformReddit     = "reddit"
	PlatformHackerNews = "hackernews"
	PlatformBluesky    = "bluesky"
)

// Post represents a normalized post collected from a public platform
type Post struct {
	ID              string                 `json:"id"`
	PlatformID      string                 `json:"platform_id"` // "reddit", "hackernews", "bluesky"
	ExternalID      string                 `json:"external_id"` // unique per platform
	Author          string                 `json:"author"`
	AuthorID        string                 `json:"author_id"`
	Content         string                 `json:"content"`
	URL             string                 `json:"url"`
	PostedAt        time.Time              `json:"posted_at"`
	EngagementScore int                    `json:"engagement_score"` // upvotes, likes + reposts, etc.
	ReplyCount      int                    `json:"reply_count"`
	Metadata        map[string]interface{} `json:"metadata"`
	CollectedAt     time.Time              `json:"collected_at"`
}

// PostSummary is the drill-down view of a post cited by a theme or alert
type PostSummary struct {
	ID             string `json:"id"`
	URL            string `json:"url"`
	PlatformID     string `json:"platform_id"`
	PostedAt       string `json:"posted_at"`
	ContentSnippet string `json:"content_snippet"`
	Author         string `json:"author"`
}

// SaveResult reports the outcome of an idempotent post upsert
type SaveResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"` // duplicates or rows that failed
}

// AnalysisBatch is one set of posts submitted together to the analysis model
type AnalysisBatch struct {
	ID             string        `json:"id"`
	PostIDs        []string      `json:"post_ids"`
	TimeRangeStart time.Time     `json:"time_range_start"`
	TimeRangeEnd   time.Time     `json:"time_range_end"`
	RawResponse    string        `json:"raw_response"`
	ProcessingTime time.Duration `json:"processing_time"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Theme is a recurring topic extracted from one batch
type Theme struct {
	ID           string    `json:"id"`
	BatchID      string    `json:"batch_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Frequency    int       `json:"frequency"`
	SentimentAvg float64   `json:"sentiment_avg"`
	AudienceType string    `json:"audience_type"`
	IsEmerging   bool      `json:"is_emerging"`
	ExamplePosts []string  `json:"example_post_ids"`
	WhyItMatters string    `json:"why_it_matters"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// SentimentSnapshot is the per-batch sentiment roll-up
type SentimentSnapshot struct {
	ID               string    `json:"id"`
	BatchID          string    `json:"batch_id"`
	OverallSentiment float64   `json:"overall_sentiment"`
	PositiveCount    int       `json:"positive_count"`
	NeutralCount     int       `json:"neutral_count"`
	NegativeCount    int       `json:"negative_count"`
	Volume           int       `json:"volume"`
	Timestamp        time.Time `json:"timestamp"`
}

// CompetitorMention is one cited post in which a competitor was discussed
type CompetitorMention struct {
	ID           string    `json:"id"`
	BatchID      string    `json:"batch_id"`
	PostID       string    `json:"post_id"`
	Competitor   string    `json:"competitor"`
	Sentiment    float64   `json:"sentiment"`
	IsComparison bool      `json:"is_comparison"`
	MentionedAt  time.Time `json:"mentioned_at"`
}

// CommunityNotes holds the structured notes attached to a community
type CommunityNotes struct {
	KeyConcerns     []string `json:"key_concerns"`
	Opportunities   []string `json:"opportunities"`
	GatheringPlaces []string `json:"gathering_places"`
}

// Community is an audience segment identified in one batch
type Community struct {
	ID                   string         `json:"id"`
	BatchID              string         `json:"batch_id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	PrimaryPlatform      string         `json:"primary_platform"`
	AudienceType         string         `json:"audience_type"`
	EstimatedSize        string         `json:"estimated_size"` // "small", "medium", "large"
	SentimentTowardBrand float64        `json:"sentiment_toward_brand"`
	Notes                CommunityNotes `json:"notes"`
	LastActivityAt       time.Time      `json:"last_activity_at"`
}

// CommunityKey is the logical identity of a community across batches.
// Rows sharing a key are the same community; the most recently active row wins.
func CommunityKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Audience categories
const (
	AudienceEnterprise = "enterprise"
	AudienceDeveloper  = "developer"
	AudienceHobbyist   = "hobbyist"
	AudienceResearcher = "researcher"
	AudienceGeneral    = "general"
)

// NormalizeAudience maps free-form model output onto the audience enumeration
func NormalizeAudience(value string) string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case AudienceEnterprise, AudienceDeveloper, AudienceHobbyist, AudienceResearcher:
		return v
	default:
		return AudienceGeneral
	}
}

// Tracked competitors
const (
	CompetitorClaude  = "claude"
	CompetitorChatGPT = "chatgpt"
	CompetitorGemini  = "gemini"
	CompetitorLlama   = "llama"
	CompetitorMistral = "mistral"
	CompetitorOther   = "other"
)

// NormalizeCompetitor maps free-form model output onto the competitor enumeration
func NormalizeCompetitor(value string) string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case CompetitorClaude, CompetitorChatGPT, CompetitorGemini, CompetitorLlama, CompetitorMistral:
		return v
	default:
		return CompetitorOther
	}
}

// Community size estimates
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// NormalizeSize maps free-form model output onto the size enumeration
func NormalizeSize(value string) string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case SizeSmall, SizeLarge:
		return v
	default:
		return SizeMedium
	}
}

// DigestType is the cadence of a narrative digest
type DigestType string

const (
	DigestDaily  DigestType = "daily"
	DigestWeekly DigestType = "weekly"
)

// ParseDigestType validates a digest type string
func ParseDigestType(value string) (DigestType, bool) {
	switch DigestType(strings.ToLower(strings.TrimSpace(value))) {
	case DigestDaily:
		return DigestDaily, true
	case DigestWeekly:
		return DigestWeekly, true
	}
	return "", false
}

// Digest represents a periodic narrative summary
type Digest struct {
	ID          string     `json:"id"`
	Type        DigestType `json:"type"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	Content     string     `json:"content"`
	Summary     string     `json:"summary"`
	KeyInsights []string   `json:"key_insights"`
	GeneratedAt time.Time  `json:"generated_at"`
}
