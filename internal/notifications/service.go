package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// mailSender is satisfied by *gomail.Dialer
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service pushes alerts and digests to Microsoft Teams and email
type Service struct {
	config *config.Config
	client *resty.Client
	mailer mailSender
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
		mailer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// SendAlerts pushes the given alerts to every configured channel
func (s *Service) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	title := fmt.Sprintf("Social Listening: %d alert(s) need attention", len(alerts))
	return s.dispatch(ctx, "alerts",
		func() *TeamsMessage { return buildAlertsCard(title, alerts) },
		func() (string, string, string, error) {
			html, err := renderHTML(alertsEmailTemplate, alerts)
			return title, alertsText(alerts), html, err
		})
}

// SendDigest pushes a generated digest to every configured channel
func (s *Service) SendDigest(ctx context.Context, digest *models.Digest) error {
	if digest == nil {
		return nil
	}

	title := fmt.Sprintf("Social Listening %s digest - %s", capitalize(string(digest.Type)), digest.PeriodEnd.Format("Jan 2, 2006"))
	return s.dispatch(ctx, "digest",
		func() *TeamsMessage { return buildDigestCard(title, digest) },
		func() (string, string, string, error) {
			html, err := renderHTML(digestEmailTemplate, digest)
			return title, digest.Content, html, err
		})
}

func (s *Service) dispatch(ctx context.Context, kind string, card func() *TeamsMessage, email func() (string, string, string, error)) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(ctx, card()); err != nil {
			logrus.Errorf("Failed to send Teams %s notification: %v", kind, err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Infof("Successfully sent %s to Teams", kind)
		}
	}

	if s.config.NotificationEmail != "" {
		subject, text, html, err := email()
		if err == nil {
			err = s.sendEmail(subject, text, html)
		}
		if err != nil {
			logrus.Errorf("Failed to send %s email: %v", kind, err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Infof("Successfully sent %s via email", kind)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(ctx context.Context, message *TeamsMessage) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)
	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(subject, text, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func severityColor(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "A80000"
	case models.SeverityHigh:
		return "D13438"
	case models.SeverityMedium:
		return "FFB900"
	default:
		return "605E5C"
	}
}

// mostSevere returns the highest severity among alerts
func mostSevere(alerts []models.Alert) models.Severity {
	var top models.Severity
	for _, a := range alerts {
		if a.Severity.Rank() > top.Rank() {
			top = a.Severity
		}
	}
	return top
}

func buildAlertsCard(title string, alerts []models.Alert) *TeamsMessage {
	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: severityColor(mostSevere(alerts)),
		Title:      title,
		Text:       fmt.Sprintf("%d new alert(s) from the latest analysis batch", len(alerts)),
	}

	for _, alert := range alerts {
		facts := []TeamsFact{
			{Name: "Severity", Value: string(alert.Severity)},
			{Name: "Type", Value: string(alert.Type)},
		}
		if alert.RecommendedAction != "" {
			facts = append(facts, TeamsFact{Name: "Recommended action", Value: alert.RecommendedAction})
		}
		if len(alert.RelatedPostIDs) > 0 {
			facts = append(facts, TeamsFact{Name: "Related posts", Value: fmt.Sprintf("%d", len(alert.RelatedPostIDs))})
		}

		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: alert.Title,
			ActivityText:  alert.Description,
			Facts:         facts,
			Markdown:      true,
		})
	}

	return message
}

func buildDigestCard(title string, digest *models.Digest) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   title,
		Text:    digest.Summary,
	}

	if len(digest.KeyInsights) > 0 {
		var insights []string
		for _, insight := range digest.KeyInsights {
			insights = append(insights, "- "+insight)
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Key insights",
			ActivityText:  strings.Join(insights, "\n\n"),
			Markdown:      true,
		})
	}

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Period",
		Facts: []TeamsFact{
			{Name: "From", Value: digest.PeriodStart.Format("2006-01-02 15:04 UTC")},
			{Name: "To", Value: digest.PeriodEnd.Format("2006-01-02 15:04 UTC")},
		},
	})

	return message
}

func alertsText(alerts []models.Alert) string {
	var text strings.Builder

	text.WriteString("ALERTS\n")
	text.WriteString("======\n")
	for i, alert := range alerts {
		text.WriteString(fmt.Sprintf("\n%d. [%s] %s\n", i+1, strings.ToUpper(string(alert.Severity)), alert.Title))
		text.WriteString(fmt.Sprintf("   Type: %s\n", alert.Type))
		if alert.Description != "" {
			text.WriteString(fmt.Sprintf("   %s\n", alert.Description))
		}
		if alert.RecommendedAction != "" {
			text.WriteString(fmt.Sprintf("   Recommended action: %s\n", alert.RecommendedAction))
		}
	}

	text.WriteString("\n---\nThis notification was generated automatically by the social listening pipeline.\n")
	return text.String()
}

const alertsEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .alert { border-left: 4px solid #605e5c; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .critical, .high { border-left-color: #d13438; }
        .medium { border-left-color: #ffb900; }
        .meta { color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
    <h1>Social listening alerts</h1>
    {{range .}}
    <div class="alert {{.Severity}}">
        <strong>{{.Title}}</strong>
        <div class="meta">{{.Severity | upper}} | {{.Type}}</div>
        <p>{{.Description}}</p>
        {{if .RecommendedAction}}<p><em>Recommended action:</em> {{.RecommendedAction}}</p>{{end}}
    </div>
    {{end}}
    <hr>
    <p><small>This notification was generated automatically by the social listening pipeline.</small></p>
</body>
</html>
`

const digestEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        pre { white-space: pre-wrap; font-family: inherit; }
    </style>
</head>
<body>
    <h1>{{.Type | title}} digest</h1>
    <p>{{.PeriodStart.Format "Jan 2, 2006 15:04"}} to {{.PeriodEnd.Format "Jan 2, 2006 15:04"}} UTC</p>
    {{if .Summary}}<div class="summary">{{.Summary}}</div>{{end}}
    {{if .KeyInsights}}
    <h2>Key insights</h2>
    <ul>{{range .KeyInsights}}<li>{{.}}</li>{{end}}</ul>
    {{end}}
    <pre>{{.Content}}</pre>
</body>
</html>
`

func renderHTML(tmpl string, data interface{}) (string, error) {
	t := template.New("email").Funcs(template.FuncMap{
		"title": func(v interface{}) string { return capitalize(fmt.Sprint(v)) },
		"upper": func(v interface{}) string { return strings.ToUpper(fmt.Sprint(v)) },
	})

	t, err := t.Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
