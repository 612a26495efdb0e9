package storage

import (
	"context"
	"testing"

	"github.com/pulseboard/social-listener/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchivePaths(t *testing.T) {
	assert.Equal(t, "analysis/4b3c.json", AnalysisPath("4b3c"))
	assert.Equal(t, "digests/weekly/9f.md", DigestPath(models.DigestWeekly, "9f"))
}

func TestNewAzureStorage_Validation(t *testing.T) {
	_, err := NewAzureStorage(context.Background(), "", "container")
	assert.Error(t, err)

	_, err = NewAzureStorage(context.Background(), "account", "")
	assert.Error(t, err)
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Store(ctx, AnalysisPath("b1"), []byte(`{"summary":"ok"}`)))
	require.NoError(t, s.Store(ctx, DigestPath(models.DigestDaily, "d1"), []byte("# Daily")))
	require.NoError(t, s.Store(ctx, DigestPath(models.DigestWeekly, "d2"), []byte("# Weekly")))

	data, err := s.Retrieve(ctx, "analysis/b1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, string(data))

	names, err := s.List(ctx, "digests/")
	require.NoError(t, err)
	assert.Equal(t, []string{"digests/daily/d1.md", "digests/weekly/d2.md"}, names)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLocalStorage_NotFound(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Retrieve(context.Background(), "analysis/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RejectsEscapingNames(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../outside.json", "/etc/passwd", "", "."} {
		assert.Error(t, s.Store(context.Background(), name, []byte("x")), name)
	}
}
