package analysis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pulseboard/social-listener/internal/models"
)

// maxContentRunes bounds each post's content in the analysis prompt
const maxContentRunes = 2000

const analysisSystemPrompt = `You are a social intelligence analyst specializing in AI/ML industry discourse. You analyze batches of social media posts and extract actionable insights for an AI company tracking its market position.

You are skilled at:
- Identifying emerging themes and trends in tech discussions
- Explaining why sentiment moves, not only which way
- Recognizing audience segments (enterprise decision-makers, developers, hobbyists, researchers)
- Spotting competitive dynamics and market positioning
- Separating signal from noise

Be precise, data-driven and actionable. Avoid generic observations.`

const analysisUserPrompt = `Analyze the following batch of social media posts about AI assistants and LLMs.

<posts>
%s
</posts>

Respond with a single JSON object using exactly this structure:

{
  "summary": "2-3 sentence executive summary of this batch",
  "themes": [
    {
      "name": "Short theme name",
      "description": "What this theme is about",
      "frequency": <number of posts touching this theme>,
      "sentiment": <-1 to 1>,
      "audience_type": "enterprise|developer|hobbyist|researcher|general",
      "is_emerging": <true if this seems new or growing>,
      "example_post_ids": ["id1", "id2"],
      "why_it_matters": "Business relevance"
    }
  ],
  "sentiment_breakdown": {
    "overall": <-1 to 1>,
    "positive_count": <number>,
    "neutral_count": <number>,
    "negative_count": <number>,
    "key_drivers": ["What drives positive sentiment", "What drives negative sentiment"]
  },
  "competitor_analysis": [
    {
      "competitor": "claude|chatgpt|gemini|llama|mistral|other",
      "mention_count": <number>,
      "sentiment": <-1 to 1>,
      "key_narratives": ["What people say about this competitor"],
      "comparison_posts": ["post ids where direct comparisons happen"]
    }
  ],
  "communities_identified": [
    {
      "name": "Community or segment name",
      "description": "Who they are",
      "primary_platform": "reddit|hackernews|bluesky",
      "audience_type": "enterprise|developer|hobbyist|researcher",
      "size_indicator": "small|medium|large",
      "sentiment_toward_claude": <-1 to 1>,
      "key_concerns": ["What they care about"],
      "opportunities": ["How to serve them better"],
      "gathering_places": ["Where they gather: subreddits such as r/LocalLLaMA, Bluesky hashtags, HN keywords"]
    }
  ],
  "alerts": [
    {
      "type": "sentiment_spike|emerging_theme|viral_post|competitor_news|pr_risk",
      "severity": "low|medium|high|critical",
      "title": "Alert title",
      "description": "What happened and why it matters",
      "recommended_action": "What to do about it",
      "related_post_ids": ["id1"]
    }
  ],
  "enterprise_signals": {
    "count": <posts that seem enterprise-relevant>,
    "topics": ["What enterprise folks are discussing"],
    "pain_points": ["Problems they are trying to solve"],
    "evaluation_criteria": ["What they weigh when choosing AI tools"]
  }
}

Cite post ids where relevant. If there is not enough data for a section, return an empty list instead of inventing content.`

const digestSystemPrompt = `You are a strategic communications analyst writing executive briefings on AI industry social sentiment. Write clearly and respect the reader's time while delivering genuine insight.

Be confident but not hyperbolic, data-informed but narrative-driven, and direct about both opportunities and risks.`

const digestUserPrompt = `Generate a %s digest report from the following social intelligence data covering %s to %s.

Total posts analyzed: %d

THEMES:
%s

SENTIMENT:
%s

COMPETITOR ANALYSIS:
%s

COMMUNITIES:
%s

ALERTS:
%s

ENTERPRISE SIGNALS:
%s

Write the report with these sections:
1. Executive Summary (3-4 sentences, the must-know)
2. Key Themes This %s (narrative, not bullet points)
3. Sentiment & Brand Health (what drives perception)
4. Competitive Landscape (how we stack up)
5. Enterprise Opportunities (actionable insights)
6. Risks & Watch Items (what could become a problem)
7. Recommended Actions (specific next steps)

Format in Markdown and cite data points. End with a JSON block:
` + "```json" + `
{
  "summary": "One paragraph TL;DR",
  "key_insights": ["Insight 1", "Insight 2", "Insight 3", "Insight 4", "Insight 5"]
}
` + "```"

// promptPost is the trimmed post shape embedded in the analysis prompt
type promptPost struct {
	ID         string                 `json:"id"`
	Platform   string                 `json:"platform"`
	Content    string                 `json:"content"`
	Author     string                 `json:"author"`
	Engagement int                    `json:"engagement"`
	PostedAt   string                 `json:"posted_at"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

func buildAnalysisPrompt(posts []models.Post) (string, error) {
	trimmed := make([]promptPost, 0, len(posts))
	for _, p := range posts {
		trimmed = append(trimmed, promptPost{
			ID:         p.ID,
			Platform:   p.PlatformID,
			Content:    truncateRunes(p.Content, maxContentRunes),
			Author:     p.Author,
			Engagement: p.EngagementScore,
			PostedAt:   p.PostedAt.UTC().Format(time.RFC3339),
			Metadata:   p.Metadata,
		})
	}

	data, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode posts: %w", err)
	}

	return fmt.Sprintf(analysisUserPrompt, data), nil
}

// DigestInput is the aggregated data a narrative digest is written from
type DigestInput struct {
	Themes      []models.ThemeSummary     `json:"themes"`
	Sentiment   models.SentimentBreakdown `json:"sentiment"`
	Competitors []models.CompetitorStat   `json:"competitors"`
	Communities []models.CommunitySummary `json:"communities"`
	Alerts      []models.AlertSummary     `json:"alerts"`
	Enterprise  models.EnterpriseSignals  `json:"enterprise"`
	PostCount   int                       `json:"post_count"`
	PeriodStart time.Time                 `json:"period_start"`
	PeriodEnd   time.Time                 `json:"period_end"`
}

func buildDigestPrompt(digestType models.DigestType, in DigestInput) (string, error) {
	sections := []interface{}{in.Themes, in.Sentiment, in.Competitors, in.Communities, in.Alerts, in.Enterprise}
	encoded := make([]interface{}, 0, len(sections))
	for _, section := range sections {
		data, err := json.MarshalIndent(section, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode digest input: %w", err)
		}
		encoded = append(encoded, string(data))
	}

	period := "Week"
	if digestType == models.DigestDaily {
		period = "Day"
	}

	args := []interface{}{
		string(digestType),
		in.PeriodStart.UTC().Format(time.RFC3339),
		in.PeriodEnd.UTC().Format(time.RFC3339),
		in.PostCount,
	}
	args = append(args, encoded...)
	args = append(args, period)

	return fmt.Sprintf(digestUserPrompt, args...), nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	// Fast path for strings that cannot exceed the limit
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
