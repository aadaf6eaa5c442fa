package driven

// ConfigStore persists application configuration under dotted keys
// ("embedding.provider"). Implementations own the storage format and
// the type coercion it implies; callers wanting typed settings go
// through the SettingsService instead.
type ConfigStore interface {
	// Get retrieves a raw value, reporting whether the key exists.
	Get(key string) (any, bool)

	// GetString returns the string under key, or "" when absent or
	// mistyped.
	GetString(key string) string

	// GetInt returns the integer under key, or 0 when absent or
	// mistyped.
	GetInt(key string) int

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Load re-reads configuration from storage.
	Load() error

	// Path identifies the backing file for display.
	Path() string
}
