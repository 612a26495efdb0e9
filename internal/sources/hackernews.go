package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

const hackerNewsAPIURL = "https://hacker-news.firebaseio.com/v0"

var hackerNewsLists = []string{"topstories", "newstories", "beststories"}

// HackerNewsSource implements Hacker News API source
type HackerNewsSource struct {
	client         *resty.Client
	baseURL        string
	keywords       []string
	storiesPerList int
}

type hackerNewsItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Text        string `json:"text"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

// NewHackerNewsSource creates a new Hacker News source
func NewHackerNewsSource(keywords []string, storiesPerList int) *HackerNewsSource {
	if storiesPerList <= 0 {
		storiesPerList = 100
	}

	return &HackerNewsSource{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", userAgent),
		baseURL:        hackerNewsAPIURL,
		keywords:       keywords,
		storiesPerList: storiesPerList,
	}
}

func (h *HackerNewsSource) GetName() string {
	return models.PlatformHackerNews
}

func (h *HackerNewsSource) IsEnabled() bool {
	return len(h.keywords) > 0 // Hacker News API doesn't require authentication
}

func (h *HackerNewsSource) FetchPosts(ctx context.Context) ([]models.Post, error) {
	itemIDs, err := h.getStoryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get story ids: %w", err)
	}

	var allPosts []models.Post
	collectedAt := time.Now().UTC()

	for _, itemID := range itemIDs {
		select {
		case <-ctx.Done():
			return deduplicatePosts(allPosts), ctx.Err()
		default:
		}

		item, err := h.getItem(ctx, itemID)
		if err != nil {
			logrus.Debugf("Failed to get HN item %d: %v", itemID, err)
			continue
		}

		if item == nil || item.ID == 0 || item.Deleted || item.Dead {
			continue
		}

		text := htmlToText(item.Text)
		if !matchesKeywords(item.Title+" "+text, h.keywords) {
			continue
		}

		author := item.By
		if author == "" {
			author = "unknown"
		}

		metadata := map[string]interface{}{
			"title": item.Title,
			"type":  item.Type,
		}
		if item.URL != "" {
			metadata["link_url"] = item.URL
		}

		allPosts = append(allPosts, models.Post{
			PlatformID:      models.PlatformHackerNews,
			ExternalID:      strconv.Itoa(item.ID),
			Author:          author,
			AuthorID:        author,
			Content:         joinContent(item.Title, text),
			URL:             fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID),
			PostedAt:        time.Unix(item.Time, 0).UTC(),
			EngagementScore: item.Score,
			ReplyCount:      item.Descendants,
			Metadata:        metadata,
			CollectedAt:     collectedAt,
		})
	}

	return deduplicatePosts(allPosts), nil
}

// getStoryIDs merges the head of each story list, keeping first-seen order
func (h *HackerNewsSource) getStoryIDs(ctx context.Context) ([]int, error) {
	seen := make(map[int]bool)
	var ids []int
	failures := 0

	for _, list := range hackerNewsLists {
		listIDs, err := h.getList(ctx, list)
		if err != nil {
			logrus.Errorf("Failed to get HN %s: %v", list, err)
			failures++
			continue
		}

		if len(listIDs) > h.storiesPerList {
			listIDs = listIDs[:h.storiesPerList]
		}

		for _, id := range listIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	if failures == len(hackerNewsLists) {
		return nil, fmt.Errorf("all %d story lists failed", failures)
	}

	return ids, nil
}

func (h *HackerNewsSource) getList(ctx context.Context, list string) ([]int, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/%s.json", h.baseURL, list))

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("hacker news API returned status %d", resp.StatusCode())
	}

	var itemIDs []int
	if err := json.Unmarshal(resp.Body(), &itemIDs); err != nil {
		return nil, err
	}

	return itemIDs, nil
}

func (h *HackerNewsSource) getItem(ctx context.Context, itemID int) (*hackerNewsItem, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/item/%d.json", h.baseURL, itemID))

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("hacker news API returned status %d for item %d", resp.StatusCode(), itemID)
	}

	var item *hackerNewsItem
	if err := json.Unmarshal(resp.Body(), &item); err != nil {
		return nil, err
	}

	return item, nil
}
