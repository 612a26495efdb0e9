package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeMailer struct {
	messages []*gomail.Message
	err      error
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	f.messages = append(f.messages, m...)
	return f.err
}

func testAlerts() []models.Alert {
	return []models.Alert{
		{Type: models.AlertPRRisk, Severity: models.SeverityCritical, Title: "Outage thread", Description: "Viral complaint", RecommendedAction: "Respond"},
		{Type: models.AlertEmergingTheme, Severity: models.SeverityHigh, Title: "Emerging Theme: pricing", RelatedPostIDs: []string{"p1"}},
	}
}

func TestUrgentAlerts(t *testing.T) {
	alerts := []models.Alert{
		{ID: "1", Severity: models.SeverityLow},
		{ID: "2", Severity: models.SeverityHigh},
		{ID: "3", Severity: models.SeverityMedium},
		{ID: "4", Severity: models.SeverityCritical},
	}

	urgent := UrgentAlerts(alerts)
	require.Len(t, urgent, 2)
	assert.Equal(t, "2", urgent[0].ID)
	assert.Equal(t, "4", urgent[1].ID)
	assert.NotNil(t, UrgentAlerts(nil))
}

func TestSendAlerts_Teams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(&config.Config{TeamsWebhookURL: server.URL})
	require.NoError(t, svc.SendAlerts(context.Background(), testAlerts()))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Equal(t, "A80000", received.ThemeColor)
	require.Len(t, received.Sections, 2)
	assert.Equal(t, "Outage thread", received.Sections[0].ActivityTitle)
	assert.Contains(t, received.Sections[0].Facts, TeamsFact{Name: "Recommended action", Value: "Respond"})
	assert.Contains(t, received.Sections[1].Facts, TeamsFact{Name: "Related posts", Value: "1"})
}

func TestSendAlerts_TeamsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewService(&config.Config{TeamsWebhookURL: server.URL})
	err := svc.SendAlerts(context.Background(), testAlerts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teams")
}

func TestSendAlerts_NothingToSend(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(&config.Config{NotificationEmail: "team@example.com"})
	svc.mailer = mailer

	require.NoError(t, svc.SendAlerts(context.Background(), nil))
	assert.Empty(t, mailer.messages)
}

func TestSendDigest_Email(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(&config.Config{NotificationEmail: "team@example.com", SMTPUsername: "bot@example.com"})
	svc.mailer = mailer

	digest := &models.Digest{
		Type:        models.DigestDaily,
		PeriodStart: time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Content:     "# Daily\n\nCalm day.",
		Summary:     "Calm",
		KeyInsights: []string{"Developers like artifacts"},
	}

	require.NoError(t, svc.SendDigest(context.Background(), digest))
	require.Len(t, mailer.messages, 1)
	assert.Equal(t, []string{"Social Listening Daily digest - Jun 1, 2024"}, mailer.messages[0].GetHeader("Subject"))
	assert.Equal(t, []string{"team@example.com"}, mailer.messages[0].GetHeader("To"))
}

func TestSendDigest_EmailFailure(t *testing.T) {
	svc := NewService(&config.Config{NotificationEmail: "team@example.com"})
	svc.mailer = &fakeMailer{err: errors.New("connection refused")}

	err := svc.SendDigest(context.Background(), &models.Digest{Type: models.DigestWeekly})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
}

func TestRenderHTML(t *testing.T) {
	html, err := renderHTML(alertsEmailTemplate, testAlerts())
	require.NoError(t, err)
	assert.Contains(t, html, "CRITICAL | pr_risk")
	assert.Contains(t, html, "Recommended action:</em> Respond")

	html, err = renderHTML(digestEmailTemplate, &models.Digest{Type: models.DigestWeekly, Content: "<b>x</b>"})
	require.NoError(t, err)
	assert.Contains(t, html, "Weekly digest")
	assert.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
}

func TestAlertsText(t *testing.T) {
	text := alertsText(testAlerts())
	assert.Contains(t, text, "1. [CRITICAL] Outage thread")
	assert.Contains(t, text, "Recommended action: Respond")
	assert.Contains(t, text, "2. [HIGH] Emerging Theme: pricing")
}

func TestBuildAlertsCard_ColorFollowsMostSevere(t *testing.T) {
	alerts := []models.Alert{
		{Title: "Spike", Severity: models.SeverityHigh},
		{Title: "Outage", Severity: models.SeverityCritical},
		{Title: "Meme", Severity: models.SeverityLow},
	}

	card := buildAlertsCard("Alerts", alerts)
	assert.Equal(t, "A80000", card.ThemeColor)
	assert.Equal(t, "D13438", buildAlertsCard("Alerts", alerts[:1]).ThemeColor)
	assert.Equal(t, models.Severity(""), mostSevere(nil))
}
