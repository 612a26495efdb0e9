package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	want := []string{"pipeline", "digest", "alerts list", "alerts ack", "sources check", "migrate", "archive list", "archive get"}
	for _, path := range want {
		cmd, _, err := rootCmd.Find(strings.Fields(path))
		require.NoError(t, err, path)
		assert.Equal(t, strings.Fields(path)[len(strings.Fields(path))-1], strings.Fields(cmd.Use)[0], path)
	}
}

func TestRunDigest_InvalidType(t *testing.T) {
	digestType = "monthly"
	t.Cleanup(func() { digestType = "daily" })

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	err := runDigest(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monthly")
}

func TestArchiveCommands_LocalDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "digests", "daily"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "digests", "daily", "d1.md"), []byte("# Daily"), 0o644))

	archiveDir = dir
	t.Cleanup(func() { archiveDir = "" })

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)

	require.NoError(t, runArchiveList(cmd, []string{"digests/"}))
	assert.Equal(t, "digests/daily/d1.md\n", out.String())

	out.Reset()
	require.NoError(t, runArchiveGet(cmd, []string{"digests/daily/d1.md"}))
	assert.Equal(t, "# Daily", out.String())
}

func TestSample(t *testing.T) {
	assert.Equal(t, "short", sample("short"))
	long := strings.Repeat("é", 100)
	assert.Equal(t, strings.Repeat("é", 80)+"...", sample(long))
}
