package models

// Pipeline stages in execution order
const (
	StageCollecting          = "collecting"
	StageFetchingForAnalysis = "fetching-for-analysis"
	StageAnalyzing           = "analyzing"
	StagePersisting          = "persisting"
	StageAlerting            = "alerting"
	StageDone                = "done"
)

// PipelineResult summarizes one pipeline run
type PipelineResult struct {
	Collected  int      `json:"collected"`
	Analyzed   int      `json:"analyzed"`
	Alerts     int      `json:"alerts"`
	DurationMS int64    `json:"duration_ms"`
	Errors     []string `json:"errors"`
}

// Community trend classifications
const (
	TrendGrowing   = "growing"
	TrendShrinking = "shrinking"
	TrendStable    = "stable"
)

// Community volume classifications
const (
	VolumeLoud   = "loud"
	VolumeMedium = "medium"
	VolumeQuiet  = "quiet"
)

// SentimentPoint is one snapshot in the dashboard sentiment trend
type SentimentPoint struct {
	Hour          string  `json:"hour"`
	PlatformID    string  `json:"platform_id"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	TotalVolume   int     `json:"total_volume"`
	PositiveCount int     `json:"positive_count"`
	NeutralCount  int     `json:"neutral_count"`
	NegativeCount int     `json:"negative_count"`
}

// ThemeSummary is the dashboard view of a theme
type ThemeSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Frequency      int      `json:"frequency"`
	SentimentAvg   float64  `json:"sentiment_avg"`
	AudienceType   string   `json:"audience_type"`
	IsEmerging     bool     `json:"is_emerging"`
	ExamplePostIDs []string `json:"example_post_ids"`
	WhyItMatters   string   `json:"why_it_matters"`
	LastSeenAt     string   `json:"last_seen_at"`
}

// CompetitorStat is the per-competitor share-of-voice aggregate
type CompetitorStat struct {
	Competitor   string  `json:"competitor"`
	MentionCount int     `json:"mention_count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// AlertSummary is the dashboard view of an alert
type AlertSummary struct {
	ID                string   `json:"id"`
	Type              string   `json:"type"`
	Severity          string   `json:"severity"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	RecommendedAction string   `json:"recommended_action,omitempty"`
	RelatedPostIDs    []string `json:"related_post_ids"`
	IsAcknowledged    bool     `json:"is_acknowledged"`
	CreatedAt         string   `json:"created_at"`
}

// CommunitySummary is the deduplicated dashboard view of a community
type CommunitySummary struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	PrimaryPlatform      string         `json:"primary_platform"`
	AudienceType         string         `json:"audience_type"`
	EstimatedSize        string         `json:"estimated_size"`
	SentimentTowardBrand float64        `json:"sentiment_toward_brand"`
	Notes                CommunityNotes `json:"notes"`
	LastActivityAt       string         `json:"last_activity_at"`
	Trend                string         `json:"trend"`
	Volume               string         `json:"volume"`
	MentionCount         int            `json:"mention_count"`
}

// DashboardData is the read-optimized snapshot rendered by the dashboard
type DashboardData struct {
	SentimentTrend  []SentimentPoint   `json:"sentimentTrend"`
	Themes          []ThemeSummary     `json:"themes"`
	CompetitorStats []CompetitorStat   `json:"competitorStats"`
	Alerts          []AlertSummary     `json:"alerts"`
	PlatformCounts  map[string]int     `json:"platformCounts"`
	Communities     []CommunitySummary `json:"communities"`
	LastUpdated     string             `json:"lastUpdated"`
	LatestPostAt    string             `json:"latestPostAt,omitempty"`
}
