// Package file persists the ingestion manifest as a JSON file.
//
// Every mutation does a load-merge-save cycle against the file, so
// entries recorded by another process between two calls are never
// clobbered wholesale. The save replaces the file atomically; a crash
// mid-write leaves the previous manifest intact.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
)

const manifestFileName = "manifest.json"

// Ensure Store implements the interface.
var _ driven.ManifestStore = (*Store)(nil)

// Store is a file-based implementation of driven.ManifestStore.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a manifest store rooted at dataDir.
// If dataDir is empty, defaults to ~/.satchel.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".satchel")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{path: filepath.Join(dataDir, manifestFileName)}, nil
}

// Has reports whether the content hash is already recorded.
func (s *Store) Has(hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return false, err
	}
	_, ok := m.Entries[hash]
	return ok, nil
}

// Get retrieves the entry for a content hash, or ErrNotFound.
func (s *Store) Get(hash string) (*domain.ManifestEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return nil, err
	}
	entry, ok := m.Entries[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Record stores an entry for a content hash, persisting immediately.
func (s *Store) Record(hash string, entry domain.ManifestEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	m.Entries[hash] = entry
	return s.save(m)
}

// Remove deletes the entry for a content hash, persisting immediately.
// Removing an absent hash is a no-op.
func (s *Store) Remove(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := m.Entries[hash]; !ok {
		return nil
	}
	delete(m.Entries, hash)
	return s.save(m)
}

// Entries returns a copy of the hash to entry mapping.
func (s *Store) Entries() (map[string]domain.ManifestEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return nil, err
	}
	entries := make(map[string]domain.ManifestEntry, len(m.Entries))
	for k, v := range m.Entries {
		entries[k] = v
	}
	return entries, nil
}

// Path returns the manifest file path.
func (s *Store) Path() string {
	return s.path
}

// load reads the manifest from disk (caller must hold lock).
// A missing file or an unrecognised schema version yields a fresh
// manifest rather than an error.
func (s *Store) load() (*domain.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewManifest(), nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version != domain.ManifestVersion {
		return domain.NewManifest(), nil
	}
	if m.Entries == nil {
		m.Entries = make(map[string]domain.ManifestEntry)
	}
	return &m, nil
}

// save writes the manifest via a temp file and rename so readers never
// observe a partially written file (caller must hold lock).
func (s *Store) save(m *domain.Manifest) error {
	m.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}
