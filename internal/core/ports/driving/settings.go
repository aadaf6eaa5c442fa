package driving

import "github.com/custodia-labs/satchel/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Keys returns every known settings key in display order.
	Keys() []string

	// GetKey returns the display value for one settings key.
	GetKey(key string) (string, error)

	// SetKey parses and stores a raw value for one settings key.
	SetKey(key, value string) error
}
