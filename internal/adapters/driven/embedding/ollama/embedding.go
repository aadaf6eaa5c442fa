// Package ollama provides an embedding provider adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.EmbeddingProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL      = "http://localhost:11434"
	DefaultModel        = "mxbai-embed-large"
	DefaultTimeout      = 60 * time.Second
	DefaultDimensions   = 1024 // mxbai-embed-large default
	DefaultMaxBatchSize = 32
	DefaultRequestRate  = 5 // requests per second
)

// maxErrorBody bounds how much of an upstream error response is kept
// for diagnostics.
const maxErrorBody = 512

// Model dimensions for common Ollama embedding models.
var modelDimensions = map[string]int{
	"mxbai-embed-large": 1024,
	"nomic-embed-text":  768,
	"all-minilm":        384,
}

// Config holds configuration for the Ollama embedding provider.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: mxbai-embed-large).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int

	// MaxBatchSize caps the inputs sent in one request (default: 32).
	MaxBatchSize int

	// RequestsPerSecond throttles upstream calls (default: 5).
	RequestsPerSecond float64
}

// Provider generates embeddings using Ollama's batch embed API.
type Provider struct {
	client       *http.Client
	limiter      *rate.Limiter
	baseURL      string
	model        string
	dimensions   int
	maxBatchSize int
}

// embedRequest is the Ollama /api/embed request format.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the Ollama /api/embed response format.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewProvider creates a new Ollama embedding provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		if dims, ok := modelDimensions[cfg.Model]; ok {
			cfg.Dimensions = dims
		} else {
			cfg.Dimensions = DefaultDimensions
		}
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestRate
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL:      cfg.BaseURL,
		model:        cfg.Model,
		dimensions:   cfg.Dimensions,
		maxBatchSize: cfg.MaxBatchSize,
	}
}

// EmbedOne generates a vector embedding for the given text.
func (p *Provider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("ollama: no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedMany generates embeddings for multiple texts, chunking the
// input into batches of at most MaxBatchSize and concatenating the
// results in input order.
func (p *Provider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.maxBatchSize {
		end := min(start+p.maxBatchSize, len(texts))
		batch, err := p.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		all = append(all, batch...)
	}
	return all, nil
}

// embedBatch issues one /api/embed call for up to MaxBatchSize texts.
func (p *Provider) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody := embedRequest{
		Model: p.model,
		Input: texts,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/api/embed",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, &domain.ExternalServiceError{
			Service:    "ollama",
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("returned %d embeddings for %d inputs", len(embedResp.Embeddings), len(texts)),
		}
	}

	// Convert float64 to float32
	embeddings := make([][]float32, len(embedResp.Embeddings))
	for i, raw := range embedResp.Embeddings {
		embedding := make([]float32, len(raw))
		for j, v := range raw {
			embedding[j] = float32(v)
		}
		embeddings[i] = embedding
	}

	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// MaxBatchSize returns the largest input slice sent in one request.
func (p *Provider) MaxBatchSize() int {
	return p.maxBatchSize
}

// ModelName returns the name of the embedding model being used.
func (p *Provider) ModelName() string {
	return p.model
}

// Ping validates the service is reachable by checking the /api/tags
// endpoint. This is a lightweight check that validates connectivity
// without running inference.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: create ping request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return upstreamError(resp)
	}
	return nil
}

// Close releases resources.
func (p *Provider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// transportError classifies a failed round trip. Context errors keep
// their chain so callers can distinguish timeouts from a service that
// is not running.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("ollama request: %w", err)
	}
	return &domain.ExternalServiceError{
		Service:     "ollama",
		Unreachable: true,
		Err:         err,
	}
}

// upstreamError captures a non-2xx response with a truncated body.
func upstreamError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = nil
	}
	return &domain.ExternalServiceError{
		Service:    "ollama",
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
