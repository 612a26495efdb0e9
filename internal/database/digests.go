package database

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pulseboard/social-listener/internal/models"
)

// SaveDigest inserts a digest and returns its id
func (s *Store) SaveDigest(ctx context.Context, digest *models.Digest) (string, error) {
	if digest == nil {
		return "", fmt.Errorf("%w: digest is required", ErrInvalidInput)
	}
	if _, ok := models.ParseDigestType(string(digest.Type)); !ok {
		return "", fmt.Errorf("%w: digest type %q", ErrInvalidInput, digest.Type)
	}

	id := uuid.New()
	if digest.GeneratedAt.IsZero() {
		digest.GeneratedAt = s.now()
	}
	insights := digest.KeyInsights
	if insights == nil {
		insights = []string{}
	}

	query, args, err := s.sb.Insert("digests").
		Columns("id", "digest_type", "period_start", "period_end", "content", "summary", "key_insights", "generated_at").
		Values(id, string(digest.Type), digest.PeriodStart, digest.PeriodEnd, digest.Content,
			digest.Summary, insights, digest.GeneratedAt).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build digest insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return "", mapError(err, "digest", id.String())
	}

	digest.ID = id.String()
	return digest.ID, nil
}

// LatestDigest returns the most recently generated digest of a type, or ErrNotFound
func (s *Store) LatestDigest(ctx context.Context, digestType models.DigestType) (*models.Digest, error) {
	query, args, err := s.sb.Select("id", "digest_type", "period_start", "period_end", "content",
		"summary", "key_insights", "generated_at").
		From("digests").
		Where(squirrel.Eq{"digest_type": string(digestType)}).
		OrderBy("generated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest digest query: %w", err)
	}

	var (
		digest models.Digest
		id     uuid.UUID
		kind   string
	)
	err = s.db.QueryRow(ctx, query, args...).Scan(&id, &kind, &digest.PeriodStart, &digest.PeriodEnd,
		&digest.Content, &digest.Summary, &digest.KeyInsights, &digest.GeneratedAt)
	if err != nil {
		return nil, mapError(err, "digest", string(digestType))
	}

	digest.ID = id.String()
	digest.Type = models.DigestType(kind)
	if digest.KeyInsights == nil {
		digest.KeyInsights = []string{}
	}

	return &digest, nil
}
