package sources

import (
	"context"
	"time"

	"github.com/pulseboard/social-listener/internal/models"
)

// Source interface defines the contract for all data sources.
// FetchPosts returns keyword-matching posts deduplicated by external id.
// A failing sub-request is logged and skipped; an empty result is not an error.
type Source interface {
	GetName() string
	FetchPosts(ctx context.Context) ([]models.Post, error)
	IsEnabled() bool
}

// Pauser waits between rate-sensitive upstream requests
type Pauser interface {
	Pause(ctx context.Context, d time.Duration) error
}

// SleepPauser blocks for the requested duration or until ctx is done
type SleepPauser struct{}

func (SleepPauser) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
