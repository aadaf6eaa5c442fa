// Package embedding provides factory functions for creating embedding
// provider adapters.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/satchel/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/satchel/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// NewProvider creates the appropriate embedding provider based on settings.
// Returns nil if the provider is not configured.
func NewProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return newOllamaProvider(settings), nil

	case domain.AIProviderOpenAI:
		return newOpenAIProvider(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// NewValidatedProvider creates an embedding provider and validates
// connectivity. Returns the provider if successful, or an error with
// guidance. A nil provider with a nil error means embeddings are not
// configured and callers should run in lexical-only mode.
func NewValidatedProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	provider, err := NewProvider(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'satchel settings set' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if provider == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		provider.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'satchel settings set' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return provider, nil
}

// ValidateConfig validates an embedding configuration by creating a
// provider and pinging it. This is intended for use when settings
// change, to validate credentials before saving.
func ValidateConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	provider, err := NewProvider(settings)
	if err != nil {
		return err
	}
	if provider == nil {
		return nil
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return provider.Ping(ctx)
}

// newOllamaProvider creates an Ollama embedding provider.
func newOllamaProvider(settings *domain.EmbeddingSettings) driven.EmbeddingProvider {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollama.DefaultDimensions
	}

	return ollama.NewProvider(ollama.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// newOpenAIProvider creates an OpenAI embedding provider.
func newOpenAIProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openai.NewProvider(openai.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
