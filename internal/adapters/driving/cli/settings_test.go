package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, 3)
	for _, sub := range settingsCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "get", "set"}, names)
}

func TestSettingsListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "embedding.provider")
	assert.Contains(t, out, "search.rrf_k")
	assert.Contains(t, out, "ingest.workers")
}

func TestSettingsGetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "get", "search.rrf_k")

	require.NoError(t, err)
	assert.Contains(t, out, "60")
}

func TestSettingsGetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "get", "search.unknown")

	assert.Error(t, err)
}

func TestSettingsSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "set", "search.rrf_k", "30")
	require.NoError(t, err)

	out, err := executeCommand("settings", "get", "search.rrf_k")
	require.NoError(t, err)
	assert.Contains(t, out, "30")
}

func TestSettingsSetCmd_EmbeddingKeyChecksConfig(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// openai without an API key is incomplete, so the reachability
	// check is skipped and the value still saves.
	out, err := executeCommand("settings", "set", "embedding.provider", "openai")

	require.NoError(t, err)
	assert.Contains(t, out, "Set embedding.provider")

	out, err = executeCommand("settings", "get", "embedding.provider")
	require.NoError(t, err)
	assert.Contains(t, out, "openai")
}

func TestSettingsSetCmd_RejectsBadValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "set", "ingest.workers", "many")

	assert.Error(t, err)
}
