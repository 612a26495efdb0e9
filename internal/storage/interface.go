package storage

import (
	"context"
	"fmt"

	"github.com/pulseboard/social-listener/internal/models"
)

// StorageInterface defines the contract for the blob archive
type StorageInterface interface {
	Store(ctx context.Context, name string, data []byte) error
	Retrieve(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// AnalysisPath is where the raw model output of a batch is archived
func AnalysisPath(batchID string) string {
	return fmt.Sprintf("analysis/%s.json", batchID)
}

// DigestPath is where a generated digest is archived
func DigestPath(digestType models.DigestType, digestID string) string {
	return fmt.Sprintf("digests/%s/%s.md", digestType, digestID)
}
