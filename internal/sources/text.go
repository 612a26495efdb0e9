package sources

import (
	"strings"

	"github.com/pulseboard/social-listener/internal/models"
	"golang.org/x/net/html"
)

const userAgent = "SocialIntelligence/1.0"

// matchesKeywords reports whether text contains any keyword, ignoring case
func matchesKeywords(text string, keywords []string) bool {
	content := strings.ToLower(text)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(content, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// deduplicatePosts keeps the first post seen for each external id
func deduplicatePosts(posts []models.Post) []models.Post {
	seen := make(map[string]bool)
	unique := make([]models.Post, 0, len(posts))

	for _, post := range posts {
		if !seen[post.ExternalID] {
			seen[post.ExternalID] = true
			unique = append(unique, post)
		}
	}

	return unique
}

// joinContent builds post content from a title and an optional body
func joinContent(title, body string) string {
	return strings.TrimSpace(title + "\n\n" + body)
}

// htmlToText converts the HTML fragments used by Hacker News into plain text
func htmlToText(content string) string {
	if content == "" {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "p", "br":
				b.WriteString("\n")
			case "code":
				b.WriteString("`")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "code" {
				b.WriteString("`")
			}
		}
	}
}
