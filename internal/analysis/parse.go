package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pulseboard/social-listener/internal/models"
)

// ErrMalformedPayload is returned when a model response does not match the analysis schema
var ErrMalformedPayload = errors.New("malformed analysis payload")

var (
	fencePattern         = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*\\s*(.*?)```")
	trailingJSONPattern  = regexp.MustCompile("(?s)^```json\\s*(.*?)```\\s*$")
	requiredAnalysisKeys = []string{
		"summary",
		"themes",
		"sentiment_breakdown",
		"competitor_analysis",
		"communities_identified",
		"alerts",
		"enterprise_signals",
	}
)

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}

// extractJSON returns the body of the first fenced code block, or otherwise the
// span between the first '{' and the last '}' of the input.
func extractJSON(raw string) string {
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	body := strings.TrimSpace(raw)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start >= 0 && end > start {
		return body[start : end+1]
	}
	return body
}

// ParseAnalysis decodes and validates a raw model response into an AnalysisResult.
// Enumerated fields are normalized. Any schema violation wraps ErrMalformedPayload;
// nothing is partially salvaged.
func ParseAnalysis(raw string) (*models.AnalysisResult, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, malformed("empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	for _, key := range requiredAnalysisKeys {
		value, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return nil, malformed("missing required field %q", key)
		}
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, malformed("decode: %v", err)
	}

	if err := normalize(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func normalize(r *models.AnalysisResult) error {
	if !inRange(r.SentimentBreakdown.Overall) {
		return malformed("overall sentiment %v out of range", r.SentimentBreakdown.Overall)
	}
	r.SentimentBreakdown.KeyDrivers = nonNil(r.SentimentBreakdown.KeyDrivers)

	for i := range r.Themes {
		t := &r.Themes[i]
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return malformed("theme %d has no name", i)
		}
		if !inRange(t.Sentiment) {
			return malformed("theme %q sentiment %v out of range", t.Name, t.Sentiment)
		}
		t.AudienceType = models.NormalizeAudience(t.AudienceType)
		t.ExamplePostIDs = nonNil(t.ExamplePostIDs)
	}

	for i := range r.CompetitorAnalysis {
		c := &r.CompetitorAnalysis[i]
		if !inRange(c.Sentiment) {
			return malformed("competitor %q sentiment %v out of range", c.Competitor, c.Sentiment)
		}
		c.Competitor = models.NormalizeCompetitor(c.Competitor)
		c.KeyNarratives = nonNil(c.KeyNarratives)
		c.ComparisonPosts = nonNil(c.ComparisonPosts)
	}

	for i := range r.CommunitiesIdentified {
		c := &r.CommunitiesIdentified[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return malformed("community %d has no name", i)
		}
		if !inRange(c.SentimentTowardClaude) {
			return malformed("community %q sentiment %v out of range", c.Name, c.SentimentTowardClaude)
		}
		c.AudienceType = models.NormalizeAudience(c.AudienceType)
		c.SizeIndicator = models.NormalizeSize(c.SizeIndicator)
		c.KeyConcerns = nonNil(c.KeyConcerns)
		c.Opportunities = nonNil(c.Opportunities)
		c.GatheringPlaces = nonNil(c.GatheringPlaces)
	}

	for i := range r.Alerts {
		a := &r.Alerts[i]
		a.Title = strings.TrimSpace(a.Title)
		if a.Title == "" {
			return malformed("alert %d has no title", i)
		}
		alertType, ok := models.ParseAlertType(a.Type)
		if !ok {
			return malformed("alert %q has unknown type %q", a.Title, a.Type)
		}
		severity, ok := models.ParseSeverity(a.Severity)
		if !ok {
			return malformed("alert %q has unknown severity %q", a.Title, a.Severity)
		}
		a.Type = string(alertType)
		a.Severity = string(severity)
		a.RelatedPostIDs = nonNil(a.RelatedPostIDs)
	}

	r.EnterpriseSignals.Topics = nonNil(r.EnterpriseSignals.Topics)
	r.EnterpriseSignals.PainPoints = nonNil(r.EnterpriseSignals.PainPoints)
	r.EnterpriseSignals.EvaluationCriteria = nonNil(r.EnterpriseSignals.EvaluationCriteria)

	return nil
}

func inRange(v float64) bool {
	return v >= -1 && v <= 1
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// Narrative is a generated digest: markdown content plus the metadata block the model appends
type Narrative struct {
	Content     string   `json:"content"`
	Summary     string   `json:"summary"`
	KeyInsights []string `json:"key_insights"`
}

// ParseNarrative splits a digest response into content and its trailing ```json metadata block.
// A missing or unparsable block leaves summary empty and insights empty; content is kept either way.
func ParseNarrative(raw string) Narrative {
	narrative := Narrative{
		Content:     strings.TrimSpace(raw),
		KeyInsights: []string{},
	}

	start := strings.LastIndex(raw, "```json")
	if start < 0 {
		return narrative
	}
	m := trailingJSONPattern.FindStringSubmatch(raw[start:])
	if m == nil {
		return narrative
	}

	narrative.Content = strings.TrimSpace(raw[:start])

	var meta struct {
		Summary     string   `json:"summary"`
		KeyInsights []string `json:"key_insights"`
	}
	if err := json.Unmarshal([]byte(m[1]), &meta); err != nil {
		return narrative
	}

	narrative.Summary = meta.Summary
	narrative.KeyInsights = nonNil(meta.KeyInsights)
	return narrative
}
