package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIngestState_Terminal tests which states end an artifact's pipeline
func TestIngestState_Terminal(t *testing.T) {
	tests := []struct {
		name     string
		state    IngestState
		expected bool
	}{
		{"pending is not terminal", IngestStatePending, false},
		{"hashing is not terminal", IngestStateHashing, false},
		{"embedding is not terminal", IngestStateEmbedding, false},
		{"skipped_duplicate is terminal", IngestStateSkippedDuplicate, true},
		{"persisted is terminal", IngestStatePersisted, true},
		{"failed is terminal", IngestStateFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.Terminal())
		})
	}
}

// TestIngestReport_Total tests outcome accounting
func TestIngestReport_Total(t *testing.T) {
	report := &IngestReport{Succeeded: 7, Skipped: 2, Failed: 1}

	assert.Equal(t, 10, report.Total())
}

// TestIngestProgress_Percent tests percentage calculation including empty batches
func TestIngestProgress_Percent(t *testing.T) {
	assert.Equal(t, 50, IngestProgress{Completed: 5, Total: 10}.Percent())
	assert.Equal(t, 100, IngestProgress{Completed: 3, Total: 3}.Percent())
	assert.Equal(t, 0, IngestProgress{Completed: 0, Total: 10}.Percent())
	assert.Equal(t, 100, IngestProgress{Total: 0}.Percent())
}

// TestNewManifest tests the empty manifest shape
func TestNewManifest(t *testing.T) {
	m := NewManifest()

	assert.Equal(t, ManifestVersion, m.Version)
	assert.NotNil(t, m.Entries)
	assert.Empty(t, m.Entries)
}
