package models

import "time"

// AnalysisResult is the validated structure returned by the analysis model for one batch
type AnalysisResult struct {
	Summary               string             `json:"summary"`
	Themes                []ThemeResult      `json:"themes"`
	SentimentBreakdown    SentimentBreakdown `json:"sentiment_breakdown"`
	CompetitorAnalysis    []CompetitorResult `json:"competitor_analysis"`
	CommunitiesIdentified []CommunityResult  `json:"communities_identified"`
	Alerts                []AlertResult      `json:"alerts"`
	EnterpriseSignals     EnterpriseSignals  `json:"enterprise_signals"`
	RawResponse           string             `json:"-"`
	ProcessingTime        time.Duration      `json:"-"`
}

// ThemeResult is a theme as reported by the model
type ThemeResult struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Frequency      int      `json:"frequency"`
	Sentiment      float64  `json:"sentiment"`
	AudienceType   string   `json:"audience_type"`
	IsEmerging     bool     `json:"is_emerging"`
	ExamplePostIDs []string `json:"example_post_ids"`
	WhyItMatters   string   `json:"why_it_matters"`
}

// SentimentBreakdown is the batch-level sentiment reported by the model
type SentimentBreakdown struct {
	Overall       float64  `json:"overall"`
	PositiveCount int      `json:"positive_count"`
	NeutralCount  int      `json:"neutral_count"`
	NegativeCount int      `json:"negative_count"`
	KeyDrivers    []string `json:"key_drivers"`
}

// CompetitorResult is one competitor entry reported by the model
type CompetitorResult struct {
	Competitor      string   `json:"competitor"`
	MentionCount    int      `json:"mention_count"`
	Sentiment       float64  `json:"sentiment"`
	KeyNarratives   []string `json:"key_narratives"`
	ComparisonPosts []string `json:"comparison_posts"`
}

// CommunityResult is one audience segment reported by the model
type CommunityResult struct {
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	PrimaryPlatform       string   `json:"primary_platform"`
	AudienceType          string   `json:"audience_type"`
	SizeIndicator         string   `json:"size_indicator"`
	SentimentTowardClaude float64  `json:"sentiment_toward_claude"`
	KeyConcerns           []string `json:"key_concerns"`
	Opportunities         []string `json:"opportunities"`
	GatheringPlaces       []string `json:"gathering_places"`
}

// AlertResult is an alert proposed by the model
type AlertResult struct {
	Type              string   `json:"type"`
	Severity          string   `json:"severity"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	RecommendedAction string   `json:"recommended_action"`
	RelatedPostIDs    []string `json:"related_post_ids"`
}

// EnterpriseSignals summarizes enterprise buying signals in the batch
type EnterpriseSignals struct {
	Count              int      `json:"count"`
	Topics             []string `json:"topics"`
	PainPoints         []string `json:"pain_points"`
	EvaluationCriteria []string `json:"evaluation_criteria"`
}
