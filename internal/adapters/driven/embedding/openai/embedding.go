// Package openai provides an embedding provider adapter using the
// OpenAI embeddings API.
package openai

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
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "text-embedding-3-small"
	DefaultTimeout      = 60 * time.Second
	DefaultDimensions   = 1536 // text-embedding-3-small default
	DefaultMaxBatchSize = 100
	DefaultRequestRate  = 2 // requests per second
)

// maxErrorBody bounds how much of an upstream error response is kept
// for diagnostics.
const maxErrorBody = 512

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding provider.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Override for OpenAI-compatible services.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int

	// MaxBatchSize caps the inputs sent in one request (default: 100).
	MaxBatchSize int

	// RequestsPerSecond throttles upstream calls (default: 2).
	RequestsPerSecond float64
}

// Provider generates embeddings using the OpenAI API.
type Provider struct {
	client       *http.Client
	limiter      *rate.Limiter
	apiKey       string
	baseURL      string
	model        string
	dimensions   int
	maxBatchSize int
}

// embeddingRequest is the OpenAI embeddings request format.
type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// embeddingResponse is the OpenAI embeddings response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewProvider creates a new OpenAI embedding provider.
// Returns an error wrapping domain.ErrNotConfigured if the API key is
// missing.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key missing, set embedding.api_key: %w", domain.ErrNotConfigured)
	}
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
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		model:        cfg.Model,
		dimensions:   cfg.Dimensions,
		maxBatchSize: cfg.MaxBatchSize,
	}, nil
}

// EmbedOne generates a vector embedding for the given text.
func (p *Provider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
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

// embedBatch issues one embeddings call for up to MaxBatchSize texts.
// The API may return items out of order, so results are placed by the
// index field before returning.
func (p *Provider) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody := embeddingRequest{
		Model: p.model,
		Input: texts,
	}

	// Only set dimensions for models that support it
	if p.model == "text-embedding-3-small" || p.model == "text-embedding-3-large" {
		reqBody.Dimensions = p.dimensions
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var embedResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(embedResp.Data) != len(texts) {
		return nil, &domain.ExternalServiceError{
			Service:    "openai",
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("returned %d embeddings for %d inputs", len(embedResp.Data), len(texts)),
		}
	}

	// Sort embeddings by index to maintain input order
	embeddings := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, &domain.ExternalServiceError{
				Service:    "openai",
				StatusCode: resp.StatusCode,
				Body:       fmt.Sprintf("embedding index %d out of range", data.Index),
			}
		}
		embeddings[data.Index] = data.Embedding
	}
	for i, embedding := range embeddings {
		if embedding == nil {
			return nil, &domain.ExternalServiceError{
				Service:    "openai",
				StatusCode: resp.StatusCode,
				Body:       fmt.Sprintf("missing embedding for input %d", i),
			}
		}
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

// Ping validates the API key by listing models.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

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
// is not reachable.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai request: %w", err)
	}
	return &domain.ExternalServiceError{
		Service:     "openai",
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
		Service:    "openai",
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
