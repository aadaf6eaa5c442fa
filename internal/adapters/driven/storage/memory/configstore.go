package memory

import (
	"sync"

	"github.com/custodia-labs/satchel/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory driven.ConfigStore for tests. Values
// keep the Go types they were Set with; there is no TOML round trip,
// so the typed getters also accept the wider numeric types a file
// store would produce.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// Get retrieves a configuration value by dotted key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString returns the string under key, or "".
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt returns the integer under key, or 0.
func (s *ConfigStore) GetInt(key string) int {
	switch val, _ := s.Get(key); v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// GetBool returns the bool under key, or false.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// GetStringSlice returns the string slice under key, or nil.
func (s *ConfigStore) GetStringSlice(key string) []string {
	switch val, _ := s.Get(key); v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op; nothing to persist.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op; the store starts empty.
func (s *ConfigStore) Load() error { return nil }

// Path identifies the store in log output.
func (s *ConfigStore) Path() string { return ":memory:" }
