package services

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keySearchRRFK       = "search.rrf_k"
	keySearchLimit      = "search.default_limit"
	keyIngestWorkers    = "ingest.workers"
	keyIngestTimeout    = "ingest.embed_timeout_secs"
	keyIngestMaxTokens  = "ingest.max_tokens"
	keyIngestOverlap    = "ingest.overlap_tokens"
)

// settingsKeys lists every known key in display order.
var settingsKeys = []string{
	keyEmbedProvider,
	keyEmbedModel,
	keyEmbedBaseURL,
	keyEmbedAPIKey,
	keySearchRRFK,
	keySearchLimit,
	keyIngestWorkers,
	keyIngestTimeout,
	keyIngestMaxTokens,
	keyIngestOverlap,
}

// SettingsService manages application settings on top of the config
// store, translating between typed AppSettings and dotted keys.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, falling back to the
// defaults for unset keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, fmt.Errorf("config store is not configured: %w", domain.ErrNotConfigured)
	}
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty means the adapter default
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Search: domain.SearchSettings{
			RRFK:         s.getInt(keySearchRRFK, defaults.Search.RRFK),
			DefaultLimit: s.getInt(keySearchLimit, defaults.Search.DefaultLimit),
		},
		Ingest: domain.IngestSettings{
			Workers:          s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
			EmbedTimeoutSecs: s.getInt(keyIngestTimeout, defaults.Ingest.EmbedTimeoutSecs),
			MaxTokens:        s.getInt(keyIngestMaxTokens, defaults.Ingest.MaxTokens),
			OverlapTokens:    s.getInt(keyIngestOverlap, defaults.Ingest.OverlapTokens),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return fmt.Errorf("config store is not configured: %w", domain.ErrNotConfigured)
	}
	if settings == nil {
		return fmt.Errorf("settings are required: %w", domain.ErrInvalidArgument)
	}

	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keySearchRRFK, settings.Search.RRFK); err != nil {
		return fmt.Errorf("save search rrf_k: %w", err)
	}
	if err := s.configStore.Set(keySearchLimit, settings.Search.DefaultLimit); err != nil {
		return fmt.Errorf("save search default_limit: %w", err)
	}

	if err := s.configStore.Set(keyIngestWorkers, settings.Ingest.Workers); err != nil {
		return fmt.Errorf("save ingest workers: %w", err)
	}
	if err := s.configStore.Set(keyIngestTimeout, settings.Ingest.EmbedTimeoutSecs); err != nil {
		return fmt.Errorf("save ingest embed_timeout_secs: %w", err)
	}
	if err := s.configStore.Set(keyIngestMaxTokens, settings.Ingest.MaxTokens); err != nil {
		return fmt.Errorf("save ingest max_tokens: %w", err)
	}
	if err := s.configStore.Set(keyIngestOverlap, settings.Ingest.OverlapTokens); err != nil {
		return fmt.Errorf("save ingest overlap_tokens: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if s.configStore == nil {
		return fmt.Errorf("config store is not configured: %w", domain.ErrNotConfigured)
	}
	if !provider.IsValid() {
		return fmt.Errorf("unknown embedding provider %q: %w", provider, domain.ErrInvalidArgument)
	}
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.configStore.GetString(keyEmbedAPIKey) == "" {
		return fmt.Errorf("provider %s requires %s: %w", provider, keyEmbedAPIKey, domain.ErrNotConfigured)
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, baseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Keys returns every known settings key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsKeys))
	copy(keys, settingsKeys)
	return keys
}

// GetKey returns the display value for one settings key. API keys are
// masked rather than printed.
func (s *SettingsService) GetKey(key string) (string, error) {
	if s.configStore == nil {
		return "", fmt.Errorf("config store is not configured: %w", domain.ErrNotConfigured)
	}
	if !knownKey(key) {
		return "", fmt.Errorf("unknown settings key %q: %w", key, domain.ErrNotFound)
	}

	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case keyEmbedProvider:
		return settings.Embedding.Provider.String(), nil
	case keyEmbedModel:
		return settings.Embedding.Model, nil
	case keyEmbedBaseURL:
		return settings.Embedding.BaseURL, nil
	case keyEmbedAPIKey:
		if settings.Embedding.APIKey == "" {
			return "", nil
		}
		return "********", nil
	case keySearchRRFK:
		return strconv.Itoa(settings.Search.RRFK), nil
	case keySearchLimit:
		return strconv.Itoa(settings.Search.DefaultLimit), nil
	case keyIngestWorkers:
		return strconv.Itoa(settings.Ingest.Workers), nil
	case keyIngestTimeout:
		return strconv.Itoa(settings.Ingest.EmbedTimeoutSecs), nil
	case keyIngestMaxTokens:
		return strconv.Itoa(settings.Ingest.MaxTokens), nil
	case keyIngestOverlap:
		return strconv.Itoa(settings.Ingest.OverlapTokens), nil
	default:
		return "", fmt.Errorf("unknown settings key %q: %w", key, domain.ErrNotFound)
	}
}

// SetKey parses and stores a raw value for one settings key.
func (s *SettingsService) SetKey(key, value string) error {
	if s.configStore == nil {
		return fmt.Errorf("config store is not configured: %w", domain.ErrNotConfigured)
	}
	if !knownKey(key) {
		return fmt.Errorf("unknown settings key %q: %w", key, domain.ErrNotFound)
	}

	switch key {
	case keyEmbedProvider:
		provider := domain.AIProvider(value)
		if !provider.IsValid() {
			return fmt.Errorf("unknown embedding provider %q: %w", value, domain.ErrInvalidArgument)
		}
		return s.configStore.Set(key, value)

	case keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey:
		return s.configStore.Set(key, value)

	case keySearchRRFK, keySearchLimit, keyIngestWorkers, keyIngestTimeout, keyIngestMaxTokens, keyIngestOverlap:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s needs an integer, got %q: %w", key, value, domain.ErrInvalidArgument)
		}
		if n <= 0 {
			return fmt.Errorf("%s must be positive: %w", key, domain.ErrInvalidArgument)
		}
		return s.configStore.Set(key, n)

	default:
		return fmt.Errorf("unknown settings key %q: %w", key, domain.ErrNotFound)
	}
}

// getProvider reads a provider key, falling back when unset or invalid.
func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	raw := s.configStore.GetString(key)
	if raw == "" {
		return fallback
	}
	provider := domain.AIProvider(raw)
	if !provider.IsValid() {
		return fallback
	}
	return provider
}

// getString reads a string key with a fallback for unset values.
func (s *SettingsService) getString(key, fallback string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return fallback
}

// getInt reads an int key with a fallback for unset values.
func (s *SettingsService) getInt(key string, fallback int) int {
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return fallback
}

// knownKey reports whether key is a recognised settings key.
func knownKey(key string) bool {
	for _, k := range settingsKeys {
		if k == key {
			return true
		}
	}
	return false
}
