package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

const blueskyAPIURL = "https://public.api.bsky.app"

// BlueskyOptions configures the Bluesky collector
type BlueskyOptions struct {
	Keywords     []string
	KeywordLimit int
	Pause        time.Duration
	Pauser       Pauser
}

// BlueskySource searches public Bluesky posts for the leading keywords
type BlueskySource struct {
	client       *resty.Client
	baseURL      string
	keywords     []string
	keywordLimit int
	pause        time.Duration
	pauser       Pauser
}

type blueskySearchResponse struct {
	Posts []blueskyPostView `json:"posts"`
}

// blueskyPostView is the app.bsky.feed.defs#postView shape returned by search
type blueskyPostView struct {
	URI    string `json:"uri"`
	CID    string `json:"cid"`
	Author struct {
		DID         string `json:"did"`
		Handle      string `json:"handle"`
		DisplayName string `json:"displayName"`
	} `json:"author"`
	Record      blueskyPostRecord `json:"record"`
	LikeCount   int               `json:"likeCount"`
	RepostCount int               `json:"repostCount"`
	ReplyCount  int               `json:"replyCount"`
}

// blueskyPostRecord is the parsed content of an app.bsky.feed.post record
type blueskyPostRecord struct {
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	Embed     *struct {
		Images []json.RawMessage `json:"images"`
	} `json:"embed,omitempty"`
}

// NewBlueskySource creates a new Bluesky source
func NewBlueskySource(opts BlueskyOptions) *BlueskySource {
	pauser := opts.Pauser
	if pauser == nil {
		pauser = SleepPauser{}
	}

	limit := opts.KeywordLimit
	if limit <= 0 || limit > len(opts.Keywords) {
		limit = len(opts.Keywords)
	}

	return &BlueskySource{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", userAgent),
		baseURL:      blueskyAPIURL,
		keywords:     opts.Keywords,
		keywordLimit: limit,
		pause:        opts.Pause,
		pauser:       pauser,
	}
}

func (b *BlueskySource) GetName() string {
	return models.PlatformBluesky
}

func (b *BlueskySource) IsEnabled() bool {
	return b.keywordLimit > 0
}

func (b *BlueskySource) FetchPosts(ctx context.Context) ([]models.Post, error) {
	var allPosts []models.Post

	for i, keyword := range b.keywords[:b.keywordLimit] {
		if i > 0 {
			if err := b.pauser.Pause(ctx, b.pause); err != nil {
				return deduplicatePosts(allPosts), err
			}
		}

		posts, err := b.searchKeyword(ctx, keyword)
		if err != nil {
			logrus.Errorf("Failed to search Bluesky for keyword '%s': %v", keyword, err)
			continue
		}
		allPosts = append(allPosts, posts...)
	}

	return deduplicatePosts(allPosts), nil
}

func (b *BlueskySource) searchKeyword(ctx context.Context, keyword string) ([]models.Post, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     keyword,
			"limit": "50",
		}).
		Get(b.baseURL + "/xrpc/app.bsky.feed.searchPosts")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("bluesky API returned status %d", resp.StatusCode())
	}

	var searchResp blueskySearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, err
	}

	var posts []models.Post
	collectedAt := time.Now().UTC()

	for _, view := range searchResp.Posts {
		if view.URI == "" || !matchesKeywords(view.Record.Text, b.keywords) {
			continue
		}

		author := view.Author.DisplayName
		if author == "" {
			author = view.Author.Handle
		}

		postedAt, err := time.Parse(time.RFC3339Nano, view.Record.CreatedAt)
		if err != nil {
			postedAt = collectedAt
		}

		metadata := map[string]interface{}{
			"handle":     view.Author.Handle,
			"has_images": view.Record.Embed != nil && len(view.Record.Embed.Images) > 0,
		}
		if view.Author.DisplayName != "" {
			metadata["display_name"] = view.Author.DisplayName
		}

		posts = append(posts, models.Post{
			PlatformID:      models.PlatformBluesky,
			ExternalID:      view.URI,
			Author:          author,
			AuthorID:        view.Author.DID,
			Content:         view.Record.Text,
			URL:             blueskyPostURL(view.Author.Handle, view.URI),
			PostedAt:        postedAt.UTC(),
			EngagementScore: view.LikeCount + view.RepostCount,
			ReplyCount:      view.ReplyCount,
			Metadata:        metadata,
			CollectedAt:     collectedAt,
		})
	}

	return posts, nil
}

// blueskyPostURL builds the web URL from an at:// uri whose last segment is the record key
func blueskyPostURL(handle, uri string) string {
	rkey := uri[strings.LastIndex(uri, "/")+1:]
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, rkey)
}
