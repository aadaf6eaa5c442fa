package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{
			name:     "ollama is valid",
			provider: AIProviderOllama,
			expected: true,
		},
		{
			name:     "openai is valid",
			provider: AIProviderOpenAI,
			expected: true,
		},
		{
			name:     "empty string is invalid",
			provider: AIProvider(""),
			expected: false,
		},
		{
			name:     "unknown provider is invalid",
			provider: AIProvider("cohere"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

// TestAIProvider_RequiresAPIKey tests key requirements per provider
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
}

// TestEmbeddingSettings_IsConfigured tests configuration completeness checks
func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{
			name:     "ollama needs no key",
			settings: EmbeddingSettings{Provider: AIProviderOllama, Model: "mxbai-embed-large"},
			expected: true,
		},
		{
			name:     "openai with key is configured",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"},
			expected: true,
		},
		{
			name:     "openai without key is not configured",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI},
			expected: false,
		},
		{
			name:     "invalid provider is not configured",
			settings: EmbeddingSettings{Provider: AIProvider("cohere")},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestDefaultAppSettings tests the out-of-the-box configuration
func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	assert.Equal(t, AIProviderOllama, settings.Embedding.Provider)
	assert.True(t, settings.Embedding.IsConfigured())
	assert.Equal(t, 60, settings.Search.RRFK)
	assert.Equal(t, 10, settings.Search.DefaultLimit)
	assert.Equal(t, 5, settings.Ingest.Workers)
	assert.Equal(t, 512, settings.Ingest.MaxTokens)
	assert.Equal(t, 50, settings.Ingest.OverlapTokens)
}

// TestEmbeddingDimensions tests known model dimension lookups
func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()

	assert.Equal(t, 1024, dims["mxbai-embed-large"])
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
}
