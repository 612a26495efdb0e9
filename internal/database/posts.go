package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pulseboard/social-listener/internal/metrics"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

const snippetLength = 280

var postColumns = []string{
	"id", "platform_id", "external_id", "author", "author_id", "content", "url",
	"posted_at", "engagement_score", "reply_count", "metadata", "collected_at",
}

// Only engagement and metadata are backfilled on re-collection; identity,
// content and collected_at keep their first-write values.
const upsertPostSuffix = `ON CONFLICT (platform_id, external_id) DO UPDATE SET
	engagement_score = EXCLUDED.engagement_score,
	reply_count = EXCLUDED.reply_count,
	metadata = EXCLUDED.metadata
RETURNING id, (xmax = 0) AS inserted`

// SavePosts upserts each post keyed by (platform_id, external_id).
// Rows are independent: a failing row is logged and counted as skipped.
// Stored ids are written back into posts.
func (s *Store) SavePosts(ctx context.Context, posts []models.Post) (models.SaveResult, error) {
	var result models.SaveResult

	for i := range posts {
		inserted, err := s.upsertPost(ctx, &posts[i])
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logrus.WithFields(logrus.Fields{
				"platform":    posts[i].PlatformID,
				"external_id": posts[i].ExternalID,
			}).Errorf("Failed to save post: %v", err)
			result.Skipped++
			continue
		}

		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	metrics.PostsSavedTotal.WithLabelValues("inserted").Add(float64(result.Inserted))
	metrics.PostsSavedTotal.WithLabelValues("skipped").Add(float64(result.Skipped))
	return result, nil
}

func (s *Store) upsertPost(ctx context.Context, post *models.Post) (bool, error) {
	if post.PlatformID == "" || post.ExternalID == "" {
		return false, fmt.Errorf("%w: platform_id and external_id are required", ErrInvalidInput)
	}

	metadata := post.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return false, fmt.Errorf("encode metadata: %w", err)
	}

	collectedAt := post.CollectedAt
	if collectedAt.IsZero() {
		collectedAt = s.now()
	}
	postedAt := post.PostedAt
	if postedAt.IsZero() {
		postedAt = collectedAt
	}

	query, args, err := s.sb.Insert("posts").
		Columns(postColumns...).
		Values(uuid.New(), post.PlatformID, post.ExternalID, post.Author, post.AuthorID, post.Content,
			post.URL, postedAt, post.EngagementScore, post.ReplyCount, metadataJSON, collectedAt).
		Suffix(upsertPostSuffix).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build post upsert: %w", err)
	}

	var (
		id       uuid.UUID
		inserted bool
	)
	if err := s.db.QueryRow(ctx, query, args...).Scan(&id, &inserted); err != nil {
		return false, mapError(err, "post", post.PlatformID+"/"+post.ExternalID)
	}

	post.ID = id.String()
	return inserted, nil
}

// RecentPosts returns posts collected within window, newest first
func (s *Store) RecentPosts(ctx context.Context, window time.Duration) ([]models.Post, error) {
	query, args, err := s.sb.Select(postColumns...).
		From("posts").
		Where(squirrel.GtOrEq{"collected_at": s.now().Add(-window)}).
		OrderBy("collected_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent posts query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func scanPost(row pgx.Row) (models.Post, error) {
	var (
		post     models.Post
		id       uuid.UUID
		metadata []byte
	)

	err := row.Scan(&id, &post.PlatformID, &post.ExternalID, &post.Author, &post.AuthorID, &post.Content,
		&post.URL, &post.PostedAt, &post.EngagementScore, &post.ReplyCount, &metadata, &post.CollectedAt)
	if err != nil {
		return post, err
	}

	post.ID = id.String()
	post.Metadata = map[string]interface{}{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &post.Metadata); err != nil {
			return post, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return post, nil
}

// GetPostsByIDs returns summaries for the given post ids. Ids that are not
// valid UUIDs are ignored; an empty id list returns without querying.
func (s *Store) GetPostsByIDs(ctx context.Context, ids []string) ([]models.PostSummary, error) {
	summaries := make([]models.PostSummary, 0)

	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			parsed = append(parsed, u)
		}
	}
	if len(parsed) == 0 {
		return summaries, nil
	}

	query, args, err := s.sb.Select("id", "url", "platform_id", "posted_at", "content", "author").
		From("posts").
		Where(squirrel.Eq{"id": parsed}).
		OrderBy("posted_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build posts by ids query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			summary  models.PostSummary
			id       uuid.UUID
			postedAt time.Time
			content  string
		)
		if err := rows.Scan(&id, &summary.URL, &summary.PlatformID, &postedAt, &content, &summary.Author); err != nil {
			return nil, fmt.Errorf("scan post summary: %w", err)
		}
		summary.ID = id.String()
		summary.PostedAt = postedAt.UTC().Format(time.RFC3339)
		summary.ContentSnippet = snippet(content, snippetLength)
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// PlatformCounts returns the number of posts collected since the given time, per platform
func (s *Store) PlatformCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	query, args, err := s.sb.Select("platform_id", "COUNT(*)").
		From("posts").
		Where(squirrel.GtOrEq{"collected_at": since}).
		GroupBy("platform_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build platform counts query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query platform counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			platform string
			count    int64
		)
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("scan platform count: %w", err)
		}
		counts[platform] = int(count)
	}

	return counts, rows.Err()
}

// LatestPostAt returns the newest posted_at in the store, or the zero time when empty
func (s *Store) LatestPostAt(ctx context.Context) (time.Time, error) {
	query, args, err := s.sb.Select("MAX(posted_at)").From("posts").ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build latest post query: %w", err)
	}

	var latest *time.Time
	if err := s.db.QueryRow(ctx, query, args...).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("query latest post: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}

	return latest.UTC(), nil
}

func snippet(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "…"
}
