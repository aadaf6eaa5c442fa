package driven

import "context"

// EmbeddingProvider generates vector embeddings from text.
// This is an optional service - when nil, semantic search is disabled.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (mxbai-embed-large, nomic-embed-text)
//   - Local models via inference servers
type EmbeddingProvider interface {
	// EmbedOne generates a vector embedding for the given text.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// EmbedMany generates embeddings for multiple texts. Output is
	// order-preserving and length-preserving: out[i] embeds texts[i].
	// Inputs longer than MaxBatchSize are chunked internally and the
	// results concatenated in input order.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 1024, 1536).
	// Fixed per provider+model; the store rejects writes of any other
	// width once a first vector is stored.
	Dimensions() int

	// MaxBatchSize returns the largest input slice sent upstream in
	// one request.
	MaxBatchSize() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to fail fast with an actionable
	// message instead of erroring mid-batch.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
