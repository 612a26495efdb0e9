package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Equal(t, 0, Severity("urgent").Rank())
}

func TestParseSeverity(t *testing.T) {
	s, ok := ParseSeverity(" HIGH ")
	assert.True(t, ok)
	assert.Equal(t, SeverityHigh, s)

	_, ok = ParseSeverity("urgent")
	assert.False(t, ok)
}

func TestParseAlertType(t *testing.T) {
	at, ok := ParseAlertType("pr_risk")
	assert.True(t, ok)
	assert.Equal(t, AlertPRRisk, at)

	_, ok = ParseAlertType("outage")
	assert.False(t, ok)
}

func TestCommunityKey(t *testing.T) {
	assert.Equal(t, "local llm tinkerers", CommunityKey("  Local   LLM\tTinkerers "))
	assert.Equal(t, CommunityKey("r/ClaudeAI"), CommunityKey("r/claudeai"))
}

func TestNormalizers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"known audience", NormalizeAudience, "Developer", AudienceDeveloper},
		{"unknown audience", NormalizeAudience, "students", AudienceGeneral},
		{"known competitor", NormalizeCompetitor, "ChatGPT", CompetitorChatGPT},
		{"unknown competitor", NormalizeCompetitor, "grok", CompetitorOther},
		{"known size", NormalizeSize, "large", SizeLarge},
		{"unknown size", NormalizeSize, "huge", SizeMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestParseDigestType(t *testing.T) {
	dt, ok := ParseDigestType("Weekly")
	assert.True(t, ok)
	assert.Equal(t, DigestWeekly, dt)

	_, ok = ParseDigestType("monthly")
	assert.False(t, ok)
}
