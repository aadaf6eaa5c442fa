package domain

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// DefaultEmbeddingModels returns the default model per provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "mxbai-embed-large",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"mxbai-embed-large": 1024,
		"nomic-embed-text":  768,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (mainly for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// SearchSettings holds retrieval configuration.
type SearchSettings struct {
	// RRFK is the reciprocal rank fusion smoothing constant.
	// Larger values flatten the influence of rank position.
	RRFK int

	// DefaultLimit is the result count used when a caller does not
	// ask for one.
	DefaultLimit int
}

// IngestSettings holds ingestion pipeline configuration.
type IngestSettings struct {
	// Workers is the bounded worker pool size.
	Workers int

	// EmbedTimeoutSecs bounds each embedding call; a timed-out call
	// fails only its own artifact.
	EmbedTimeoutSecs int

	// MaxTokens is the segment token budget.
	MaxTokens int

	// OverlapTokens is the context shared between adjacent segments.
	OverlapTokens int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Search holds retrieval settings.
	Search SearchSettings

	// Ingest holds ingestion pipeline settings.
	Ingest IngestSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider defaults to local Ollama so the tool works
// without any cloud credentials.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "mxbai-embed-large",
		},
		Search: SearchSettings{
			RRFK:         60,
			DefaultLimit: 10,
		},
		Ingest: IngestSettings{
			Workers:          5,
			EmbedTimeoutSecs: 60,
			MaxTokens:        512,
			OverlapTokens:    50,
		},
	}
}
