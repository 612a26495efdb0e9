package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	redditPublicURL = "https://www.reddit.com"
	redditOAuthURL  = "https://oauth.reddit.com"
	redditTokenURL  = "https://www.reddit.com/api/v1/access_token"
)

// RedditOptions configures the Reddit collector
type RedditOptions struct {
	ClientID     string
	ClientSecret string
	Subreddits   []string
	Keywords     []string
	Pause        time.Duration
	Pauser       Pauser
}

// RedditSource polls the newest posts of a fixed set of subreddits.
// With client credentials it uses the OAuth API, otherwise the public JSON listing.
type RedditSource struct {
	clientID     string
	clientSecret string
	subreddits   []string
	keywords     []string
	pause        time.Duration
	pauser       Pauser
	client       *resty.Client

	publicURL string
	oauthURL  string
	tokenURL  string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListingResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Selftext       string  `json:"selftext"`
	Author         string  `json:"author"`
	AuthorFullname string  `json:"author_fullname"`
	Subreddit      string  `json:"subreddit"`
	Permalink      string  `json:"permalink"`
	Created        float64 `json:"created_utc"`
	Score          int     `json:"score"`
	NumComments    int     `json:"num_comments"`
	IsSelf         bool    `json:"is_self"`
	LinkFlairText  string  `json:"link_flair_text"`
}

// NewRedditSource creates a new Reddit source
func NewRedditSource(opts RedditOptions) *RedditSource {
	pauser := opts.Pauser
	if pauser == nil {
		pauser = SleepPauser{}
	}

	return &RedditSource{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		subreddits:   opts.Subreddits,
		keywords:     opts.Keywords,
		pause:        opts.Pause,
		pauser:       pauser,
		client:       resty.New().SetTimeout(30 * time.Second),
		publicURL:    redditPublicURL,
		oauthURL:     redditOAuthURL,
		tokenURL:     redditTokenURL,
	}
}

func (r *RedditSource) GetName() string {
	return models.PlatformReddit
}

// IsEnabled reports whether there is anything to poll. Credentials are optional.
func (r *RedditSource) IsEnabled() bool {
	return len(r.subreddits) > 0 && len(r.keywords) > 0
}

func (r *RedditSource) hasCredentials() bool {
	return r.clientID != "" && r.clientSecret != ""
}

func (r *RedditSource) FetchPosts(ctx context.Context) ([]models.Post, error) {
	if !r.IsEnabled() {
		logrus.Debug("Reddit source disabled - no subreddits or keywords configured")
		return nil, nil
	}

	baseURL := r.publicURL
	token := ""
	if r.hasCredentials() {
		var err error
		if token, err = r.authenticate(ctx); err != nil {
			logrus.Errorf("Reddit authentication failed, using public endpoint: %v", err)
			token = ""
		} else {
			baseURL = r.oauthURL
		}
	}

	var allPosts []models.Post

	for i, subreddit := range r.subreddits {
		if i > 0 {
			if err := r.pauser.Pause(ctx, r.pause); err != nil {
				return deduplicatePosts(allPosts), err
			}
		}

		posts, err := r.fetchSubreddit(ctx, baseURL, token, subreddit)
		if err != nil {
			logrus.Errorf("Failed to fetch r/%s: %v", subreddit, err)
			continue
		}
		allPosts = append(allPosts, posts...)
	}

	return deduplicatePosts(allPosts), nil
}

// authenticate returns a cached client-credentials token, refreshing it when expired
func (r *RedditSource) authenticate(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.accessToken != "" && time.Now().Before(r.tokenExpiry) {
		return r.accessToken, nil
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post(r.tokenURL)

	if err != nil {
		return "", err
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("reddit token endpoint returned status %d", resp.StatusCode())
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return "", err
	}

	if authResp.AccessToken == "" {
		return "", fmt.Errorf("reddit token endpoint returned no access token")
	}

	r.accessToken = authResp.AccessToken
	// Refresh a minute early
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn)*time.Second - time.Minute)
	return r.accessToken, nil
}

func (r *RedditSource) fetchSubreddit(ctx context.Context, baseURL, token, subreddit string) ([]models.Post, error) {
	req := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent).
		SetQueryParam("limit", "50")

	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}

	resp, err := req.Get(fmt.Sprintf("%s/r/%s/new.json", baseURL, url.PathEscape(subreddit)))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var listing redditListingResponse
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, err
	}

	var posts []models.Post
	collectedAt := time.Now().UTC()

	for _, child := range listing.Data.Children {
		post := child.Data

		if !matchesKeywords(post.Title+" "+post.Selftext, r.keywords) {
			continue
		}

		authorID := post.AuthorFullname
		if authorID == "" {
			authorID = post.Author
		}

		metadata := map[string]interface{}{
			"subreddit": post.Subreddit,
			"title":     post.Title,
			"is_self":   post.IsSelf,
		}
		if post.LinkFlairText != "" {
			metadata["flair"] = post.LinkFlairText
		}

		posts = append(posts, models.Post{
			PlatformID:      models.PlatformReddit,
			ExternalID:      post.ID,
			Author:          post.Author,
			AuthorID:        authorID,
			Content:         joinContent(post.Title, post.Selftext),
			URL:             fmt.Sprintf("https://reddit.com%s", post.Permalink),
			PostedAt:        time.Unix(int64(post.Created), 0).UTC(),
			EngagementScore: post.Score,
			ReplyCount:      post.NumComments,
			Metadata:        metadata,
			CollectedAt:     collectedAt,
		})
	}

	return posts, nil
}
