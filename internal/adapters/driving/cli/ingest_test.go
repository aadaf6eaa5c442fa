package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [path]...", ingestCmd.Use)
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_StoresFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "the first file body")
	writeTestFile(t, dir, "b.md", "the second file body")

	out, err := executeCommand("ingest", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "2 stored, 0 skipped, 0 failed")
}

func TestIngestCmd_SecondRunSkips(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "idempotency check body")

	_, err := executeCommand("ingest", dir)
	require.NoError(t, err)

	out, err := executeCommand("ingest", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "0 stored, 1 skipped, 0 failed")
}

func TestIngestCmd_SingleFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	path := writeTestFile(t, t.TempDir(), "only.txt", "a single file")

	out, err := executeCommand("ingest", path)

	require.NoError(t, err)
	assert.Contains(t, out, "1 stored")
}

func TestIngestCmd_EmptyDirectory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("ingest", t.TempDir())

	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to ingest")
}

func TestIngestCmd_MissingPathFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestIngestOptions_UsesConfiguredDefaults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	appSettings.Ingest.Workers = 7
	appSettings.Ingest.EmbedTimeoutSecs = 9

	opts := ingestOptions()
	assert.Equal(t, 7, opts.Workers)
	assert.Equal(t, 9*time.Second, opts.EmbedTimeout)
}

func TestIngestOptions_FlagsBeatSettings(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	appSettings.Ingest.Workers = 7
	appSettings.Ingest.EmbedTimeoutSecs = 9
	ingestWorkers = 3
	ingestTimeout = 2 * time.Second
	defer func() {
		ingestWorkers = 0
		ingestTimeout = 0
	}()

	opts := ingestOptions()
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, 2*time.Second, opts.EmbedTimeout)
}
