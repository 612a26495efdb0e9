package database

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
)

// Store is the relational store for posts, analysis artifacts, alerts and digests.
// It is constructed explicitly and shared by the pipeline components.
type Store struct {
	db  Querier
	sb  squirrel.StatementBuilderType
	now func() time.Time
}

// NewStore creates a store over a pool or any other Querier
func NewStore(db Querier) *Store {
	return &Store{
		db:  db,
		sb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
