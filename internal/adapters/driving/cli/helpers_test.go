package cli

import (
	"bytes"
	"context"
	"sync"

	"github.com/custodia-labs/satchel/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
	"github.com/custodia-labs/satchel/internal/core/services"
	"github.com/custodia-labs/satchel/internal/segmenter"
)

// fakeManifest implements driven.ManifestStore in memory.
type fakeManifest struct {
	mu      sync.Mutex
	entries map[string]domain.ManifestEntry
}

func newFakeManifest() *fakeManifest {
	return &fakeManifest{entries: make(map[string]domain.ManifestEntry)}
}

func (m *fakeManifest) Has(hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[hash]
	return ok, nil
}

func (m *fakeManifest) Get(hash string) (*domain.ManifestEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (m *fakeManifest) Record(hash string, entry domain.ManifestEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[hash] = entry
	return nil
}

func (m *fakeManifest) Remove(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, hash)
	return nil
}

func (m *fakeManifest) Entries() (map[string]domain.ManifestEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.ManifestEntry, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

// fakeProvider embeds everything to the same vector.
type fakeProvider struct{}

func (p *fakeProvider) EmbedOne(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (p *fakeProvider) EmbedMany(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (p *fakeProvider) Dimensions() int              { return 3 }
func (p *fakeProvider) MaxBatchSize() int            { return 64 }
func (p *fakeProvider) ModelName() string            { return "fake-embed" }
func (p *fakeProvider) Ping(_ context.Context) error { return nil }
func (p *fakeProvider) Close() error                 { return nil }

var (
	_ driven.ManifestStore     = (*fakeManifest)(nil)
	_ driven.EmbeddingProvider = (*fakeProvider)(nil)
)

// setupTestServices wires the commands to in-memory fakes. The
// returned cleanup restores the unwired state.
func setupTestServices() func() {
	docStore := memory.NewDocumentStore()
	manifest := newFakeManifest()
	configStore := memory.NewConfigStore()
	provider = &fakeProvider{}
	defaults := domain.DefaultAppSettings()
	appSettings = &defaults

	searchService = services.NewSearchService(docStore, docStore, docStore, provider, services.SearchConfig{})
	documentService = services.NewDocumentService(docStore, manifest)
	ingestService = services.NewIngestOrchestrator(docStore, manifest, provider, segmenter.New())
	settingsService = services.NewSettingsService(configStore)

	return func() {
		provider = nil
		appSettings = nil
		searchService = nil
		documentService = nil
		ingestService = nil
		settingsService = nil
	}
}

// executeCommand runs the root command with args, capturing output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
