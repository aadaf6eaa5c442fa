package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/satchel/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
	"github.com/custodia-labs/satchel/internal/segmenter"
)

// --- Mock implementations for ingestion testing ---
// Note: These are prefixed with "ingest" to avoid conflicts with
// search_test.go mocks.

// ingestMockDocStore wraps the in-memory store with error injection.
type ingestMockDocStore struct {
	*memory.DocumentStore
	mu                sync.Mutex
	createSegmentsErr error
}

func newIngestMockDocStore() *ingestMockDocStore {
	return &ingestMockDocStore{DocumentStore: memory.NewDocumentStore()}
}

func (s *ingestMockDocStore) CreateSegments(ctx context.Context, segments []domain.Segment) ([]domain.Segment, error) {
	s.mu.Lock()
	err := s.createSegmentsErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.DocumentStore.CreateSegments(ctx, segments)
}

// ingestMockManifest implements driven.ManifestStore in memory.
type ingestMockManifest struct {
	mu        sync.Mutex
	entries   map[string]domain.ManifestEntry
	recordErr error
}

func newIngestMockManifest() *ingestMockManifest {
	return &ingestMockManifest{entries: make(map[string]domain.ManifestEntry)}
}

func (m *ingestMockManifest) Has(hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[hash]
	return ok, nil
}

func (m *ingestMockManifest) Get(hash string) (*domain.ManifestEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (m *ingestMockManifest) Record(hash string, entry domain.ManifestEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.entries[hash] = entry
	return nil
}

func (m *ingestMockManifest) Remove(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, hash)
	return nil
}

func (m *ingestMockManifest) Entries() (map[string]domain.ManifestEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.ManifestEntry, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

func (m *ingestMockManifest) setRecordErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErr = err
}

// ingestMockProvider implements driven.EmbeddingProvider with call
// tracking and failure injection.
type ingestMockProvider struct {
	mu            sync.Mutex
	calls         int
	active        int
	maxActive     int
	failSubstring string        // EmbedMany fails when any text contains this
	embedDelay    time.Duration // simulated backend latency, cancellable
	started       chan struct{} // closed on the first EmbedMany call when set
	release       chan struct{} // EmbedMany blocks until closed when set
}

func (p *ingestMockProvider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	p.calls++
	p.active++
	if p.active > p.maxActive {
		p.maxActive = p.active
	}
	started := p.started
	p.started = nil
	release := p.release
	fail := p.failSubstring
	delay := p.embedDelay
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	for _, text := range texts {
		if fail != "" && strings.Contains(text, fail) {
			return nil, errors.New("embedding backend rejected input")
		}
	}

	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (p *ingestMockProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (p *ingestMockProvider) Dimensions() int              { return 3 }
func (p *ingestMockProvider) MaxBatchSize() int            { return 64 }
func (p *ingestMockProvider) ModelName() string            { return "mock-embed" }
func (p *ingestMockProvider) Ping(_ context.Context) error { return nil }
func (p *ingestMockProvider) Close() error                 { return nil }

func (p *ingestMockProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var _ driven.EmbeddingProvider = (*ingestMockProvider)(nil)
var _ driven.ManifestStore = (*ingestMockManifest)(nil)

func newIngestHarness() (*IngestOrchestrator, *ingestMockDocStore, *ingestMockManifest, *ingestMockProvider) {
	store := newIngestMockDocStore()
	manifest := newIngestMockManifest()
	provider := &ingestMockProvider{}
	orch := NewIngestOrchestrator(store, manifest, provider, segmenter.New())
	return orch, store, manifest, provider
}

func testArtifact(sourceFile, body string) domain.Artifact {
	return domain.Artifact{
		SourceFile: sourceFile,
		Title:      sourceFile,
		Body:       body,
		SourceKind: domain.SourceKindNote,
		Tags:       []string{"test"},
	}
}

// --- Tests ---

func TestNewIngestOrchestrator(t *testing.T) {
	orch, _, _, _ := newIngestHarness()

	require.NotNil(t, orch)
	assert.NotNil(t, orch.docStore)
	assert.NotNil(t, orch.manifest)
	assert.NotNil(t, orch.provider)
	assert.NotNil(t, orch.segmenter)
	assert.NotNil(t, orch.inflight)
}

func TestNewIngestOrchestrator_DefaultSegmenter(t *testing.T) {
	orch := NewIngestOrchestrator(newIngestMockDocStore(), newIngestMockManifest(), &ingestMockProvider{}, nil)

	assert.NotNil(t, orch.segmenter)
}

func TestIngestOrchestrator_IngestBatch_EmptyInput(t *testing.T) {
	orch, _, _, _ := newIngestHarness()

	report, err := orch.IngestBatch(context.Background(), nil, driving.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Total())
	assert.Empty(t, report.Results)
}

func TestIngestOrchestrator_IngestBatch_MissingDependencies(t *testing.T) {
	artifacts := []domain.Artifact{testArtifact("a.txt", "body")}

	orch := NewIngestOrchestrator(nil, newIngestMockManifest(), &ingestMockProvider{}, nil)
	_, err := orch.IngestBatch(context.Background(), artifacts, driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	orch = NewIngestOrchestrator(newIngestMockDocStore(), nil, &ingestMockProvider{}, nil)
	_, err = orch.IngestBatch(context.Background(), artifacts, driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestIngestOrchestrator_NoProvider_StoresWithoutVectors(t *testing.T) {
	store := newIngestMockDocStore()
	manifest := newIngestMockManifest()
	orch := NewIngestOrchestrator(store, manifest, nil, segmenter.New())

	result, err := orch.IngestOne(context.Background(), testArtifact("a.txt", "plain keyword content"), driving.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatePersisted, result.State)
	assert.Equal(t, 1, result.SegmentCount)

	segments, err := store.GetSegments(context.Background(), result.DocumentID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Nil(t, segments[0].Embedding)

	has, err := manifest.Has(contentHash("plain keyword content"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestIngestOrchestrator_IngestOne_Success(t *testing.T) {
	orch, store, manifest, _ := newIngestHarness()
	ctx := context.Background()

	result, err := orch.IngestOne(ctx, testArtifact("note.txt", "satchel keeps notes close at hand"), driving.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatePersisted, result.State)
	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, 1, result.SegmentCount)
	assert.Empty(t, result.Err)

	// Verify the document was stored with its hash and embedding.
	doc, err := store.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "note.txt", doc.Title)
	assert.Len(t, doc.ContentHash, 64)
	assert.Equal(t, domain.SourceKindNote, doc.SourceKind)
	assert.Equal(t, []string{"test"}, doc.Tags)

	segments, err := store.GetSegments(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Len(t, segments[0].Embedding, 3)

	// Verify the manifest entry points at the document.
	entry, err := manifest.Get(doc.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, result.DocumentID, entry.DocumentID)
	assert.Equal(t, "note.txt", entry.SourceFile)
	assert.Equal(t, 1, entry.SegmentCount)
	assert.False(t, entry.UploadedAt.IsZero())
}

func TestIngestOrchestrator_IngestOne_SkipsDuplicate(t *testing.T) {
	orch, store, _, provider := newIngestHarness()
	ctx := context.Background()
	artifact := testArtifact("note.txt", "same content twice")

	first, err := orch.IngestOne(ctx, artifact, driving.IngestOptions{})
	require.NoError(t, err)
	require.Equal(t, domain.IngestStatePersisted, first.State)

	second, err := orch.IngestOne(ctx, artifact, driving.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.IngestStateSkippedDuplicate, second.State)
	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, first.SegmentCount, second.SegmentCount)

	// No re-embedding and no second document.
	assert.Equal(t, 1, provider.callCount())
	_, total, err := store.ListDocuments(ctx, driven.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestIngestOrchestrator_IngestBatch_DuplicateWithinBatch(t *testing.T) {
	orch, store, _, _ := newIngestHarness()
	ctx := context.Background()

	// Two artifacts with identical content arrive in one batch.
	artifacts := []domain.Artifact{
		testArtifact("a.txt", "identical content"),
		testArtifact("b.txt", "identical content"),
	}

	report, err := orch.IngestBatch(ctx, artifacts, driving.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	_, total, err := store.ListDocuments(ctx, driven.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestIngestOrchestrator_Force_ReplacesDocument(t *testing.T) {
	orch, store, manifest, _ := newIngestHarness()
	ctx := context.Background()

	first, err := orch.IngestOne(ctx, testArtifact("old-title.txt", "stable content"), driving.IngestOptions{})
	require.NoError(t, err)
	require.Equal(t, domain.IngestStatePersisted, first.State)

	result, err := orch.IngestOne(ctx, testArtifact("new-title.txt", "stable content"), driving.IngestOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatePersisted, result.State)
	assert.NotEqual(t, first.DocumentID, result.DocumentID)

	// The previous document is gone and the manifest follows the new one.
	_, err = store.GetDocument(ctx, first.DocumentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := store.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "new-title.txt", doc.Title)

	entry, err := manifest.Get(doc.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, result.DocumentID, entry.DocumentID)

	_, total, err := store.ListDocuments(ctx, driven.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestIngestOrchestrator_Force_PurgesUnrecordedCopy(t *testing.T) {
	orch, store, _, _ := newIngestHarness()
	ctx := context.Background()

	// A document exists in the store without any manifest entry.
	body := "content without a ledger entry"
	orphan, err := store.CreateDocument(ctx, &domain.Document{
		Title:       "orphan",
		Body:        body,
		ContentHash: contentHash(body),
		SourceKind:  domain.SourceKindNote,
	})
	require.NoError(t, err)

	result, err := orch.IngestOne(ctx, testArtifact("fresh.txt", body), driving.IngestOptions{Force: true})

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatePersisted, result.State)

	_, err = store.GetDocument(ctx, orphan.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, total, err := store.ListDocuments(ctx, driven.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestIngestOrchestrator_RestoresLostManifestEntry(t *testing.T) {
	orch, store, manifest, provider := newIngestHarness()
	ctx := context.Background()

	// The store already holds the content but the manifest lost it.
	body := "previously ingested content"
	existing, err := store.CreateDocument(ctx, &domain.Document{
		Title:       "existing",
		Body:        body,
		ContentHash: contentHash(body),
		SourceKind:  domain.SourceKindNote,
	})
	require.NoError(t, err)
	_, err = store.CreateSegments(ctx, []domain.Segment{
		{DocumentID: existing.ID, Index: 0, Text: body, TokenCount: 4},
	})
	require.NoError(t, err)

	result, err := orch.IngestOne(ctx, testArtifact("again.txt", body), driving.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStateSkippedDuplicate, result.State)
	assert.Equal(t, existing.ID, result.DocumentID)
	assert.Equal(t, 1, result.SegmentCount)
	assert.Equal(t, 0, provider.callCount())

	// The manifest entry was restored from the store.
	entry, err := manifest.Get(contentHash(body))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, entry.DocumentID)
	assert.Equal(t, 1, entry.SegmentCount)
}

func TestIngestOrchestrator_BatchContinuesPastFailures(t *testing.T) {
	orch, store, _, provider := newIngestHarness()
	provider.failSubstring = "poison"
	ctx := context.Background()

	artifacts := make([]domain.Artifact, 0, 10)
	for i := 0; i < 10; i++ {
		body := strings.Repeat("x", i+1) + " unique content"
		if i == 4 {
			body = "poison pill"
		}
		artifacts = append(artifacts, testArtifact(body[:1]+".txt", body))
	}

	report, err := orch.IngestBatch(ctx, artifacts, driving.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, 9, report.Succeeded)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Results, 10)

	var failed *domain.ArtifactResult
	for i := range report.Results {
		if report.Results[i].State == domain.IngestStateFailed {
			failed = &report.Results[i]
		}
	}
	require.NotNil(t, failed)
	assert.Contains(t, failed.Err, "embed")

	_, total, err := store.ListDocuments(ctx, driven.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 9, total)
}

func TestIngestOrchestrator_FailureReleasesClaim(t *testing.T) {
	orch, _, manifest, provider := newIngestHarness()
	provider.failSubstring = "poison"
	ctx := context.Background()
	artifact := testArtifact("retry.txt", "poison at first")

	first, err := orch.IngestOne(ctx, artifact, driving.IngestOptions{})
	require.NoError(t, err)
	require.Equal(t, domain.IngestStateFailed, first.State)

	has, err := manifest.Has(contentHash(artifact.Body))
	require.NoError(t, err)
	assert.False(t, has)

	// The same content succeeds once the backend recovers.
	provider.mu.Lock()
	provider.failSubstring = ""
	provider.mu.Unlock()

	second, err := orch.IngestOne(ctx, artifact, driving.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatePersisted, second.State)
}

func TestIngestOrchestrator_EmbedTimeout(t *testing.T) {
	orch, store, _, provider := newIngestHarness()
	provider.embedDelay = time.Second
	ctx := context.Background()

	result, err := orch.IngestOne(ctx, testArtifact("slow.txt", "slow backend"), driving.IngestOptions{
		EmbedTimeout: 20 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStateFailed, result.State)
	assert.Contains(t, result.Err, "embed")

	_, total, err := store.ListDocuments(ctx, driven.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestIngestOrchestrator_EmptyBodyPersistsWithoutSegments(t *testing.T) {
	orch, store, _, provider := newIngestHarness()
	ctx := context.Background()

	result, err := orch.IngestOne(ctx, testArtifact("empty.txt", "   \n\n  "), driving.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatePersisted, result.State)
	assert.Equal(t, 0, result.SegmentCount)
	assert.Equal(t, 0, provider.callCount())

	segments, err := store.GetSegments(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestIngestOrchestrator_SegmentWriteFailureCleansUp(t *testing.T) {
	orch, store, manifest, _ := newIngestHarness()
	store.createSegmentsErr = errors.New("disk full")
	ctx := context.Background()
	artifact := testArtifact("doomed.txt", "content that will not persist")

	result, err := orch.IngestOne(ctx, artifact, driving.IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStateFailed, result.State)
	assert.Contains(t, result.Err, "create segments")

	// Neither a document shell nor a manifest entry remains.
	_, total, err := store.ListDocuments(ctx, driven.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	has, err := manifest.Has(contentHash(artifact.Body))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestIngestOrchestrator_ManifestWriteFailureIsRecoverable(t *testing.T) {
	orch, store, manifest, _ := newIngestHarness()
	manifest.setRecordErr(errors.New("read-only filesystem"))
	ctx := context.Background()
	artifact := testArtifact("ledger.txt", "persisted but unrecorded")

	first, err := orch.IngestOne(ctx, artifact, driving.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.IngestStateFailed, first.State)
	assert.Contains(t, first.Err, "record manifest")

	// The document itself was written before the manifest failed.
	_, total, err := store.ListDocuments(ctx, driven.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	// A later run finds the document by hash and restores the entry.
	manifest.setRecordErr(nil)
	second, err := orch.IngestOne(ctx, artifact, driving.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.IngestStateSkippedDuplicate, second.State)

	has, err := manifest.Has(contentHash(artifact.Body))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestIngestOrchestrator_ProgressEvents(t *testing.T) {
	orch, _, _, _ := newIngestHarness()
	ctx := context.Background()

	var mu sync.Mutex
	var states []domain.IngestState
	var last domain.IngestProgress
	progress := func(p domain.IngestProgress) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, p.State)
		last = p
	}

	_, err := orch.IngestOne(ctx, testArtifact("watched.txt", "progress is advisory"), driving.IngestOptions{Progress: progress})

	require.NoError(t, err)
	assert.Equal(t, []domain.IngestState{
		domain.IngestStateHashing,
		domain.IngestStateEmbedding,
		domain.IngestStatePersisted,
	}, states)
	assert.Equal(t, 1, last.Completed)
	assert.Equal(t, 1, last.Total)
	assert.Equal(t, 100, last.Percent())
}

func TestIngestOrchestrator_ProgressEvents_Duplicate(t *testing.T) {
	orch, _, _, _ := newIngestHarness()
	ctx := context.Background()
	artifact := testArtifact("twice.txt", "seen before")

	_, err := orch.IngestOne(ctx, artifact, driving.IngestOptions{})
	require.NoError(t, err)

	var mu sync.Mutex
	var states []domain.IngestState
	progress := func(p domain.IngestProgress) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, p.State)
	}

	_, err = orch.IngestOne(ctx, artifact, driving.IngestOptions{Progress: progress})

	require.NoError(t, err)
	assert.Equal(t, []domain.IngestState{
		domain.IngestStateHashing,
		domain.IngestStateSkippedDuplicate,
	}, states)
}

func TestIngestOrchestrator_WorkerBound(t *testing.T) {
	orch, _, _, provider := newIngestHarness()
	provider.embedDelay = 10 * time.Millisecond
	ctx := context.Background()

	artifacts := make([]domain.Artifact, 0, 10)
	for i := 0; i < 10; i++ {
		body := strings.Repeat("y", i+1) + " distinct"
		artifacts = append(artifacts, testArtifact(body[:1]+".txt", body))
	}

	report, err := orch.IngestBatch(ctx, artifacts, driving.IngestOptions{Workers: 3})

	require.NoError(t, err)
	assert.Equal(t, 10, report.Succeeded)

	provider.mu.Lock()
	maxActive := provider.maxActive
	provider.mu.Unlock()
	assert.LessOrEqual(t, maxActive, 3)
}

func TestIngestOrchestrator_CancelStopsDequeuing(t *testing.T) {
	orch, _, _, provider := newIngestHarness()
	started := make(chan struct{})
	release := make(chan struct{})
	provider.started = started
	provider.release = release

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	artifacts := []domain.Artifact{
		testArtifact("first.txt", "in flight when cancelled"),
		testArtifact("second.txt", "never dequeued"),
		testArtifact("third.txt", "never dequeued either"),
	}

	type batchOutcome struct {
		report *domain.IngestReport
		err    error
	}
	done := make(chan batchOutcome, 1)
	go func() {
		report, err := orch.IngestBatch(ctx, artifacts, driving.IngestOptions{Workers: 1})
		done <- batchOutcome{report, err}
	}()

	// Cancel while the single worker is inside the embedding call, then
	// let it finish.
	<-started
	cancel()
	close(release)

	outcome := <-done
	require.NoError(t, outcome.err)

	// The in-flight artifact completed; the queued ones never started.
	require.Len(t, outcome.report.Results, 1)
	assert.Equal(t, "first.txt", outcome.report.Results[0].SourceFile)
	assert.Equal(t, domain.IngestStatePersisted, outcome.report.Results[0].State)
}

func TestIngestOrchestrator_IngestOne_CancelledBeforeStart(t *testing.T) {
	orch, _, _, _ := newIngestHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := orch.IngestOne(ctx, testArtifact("late.txt", "cancelled"), driving.IngestOptions{})

	// Either the artifact slipped through before the cancel was seen or
	// the call reports the cancellation; both are acceptable.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	} else {
		assert.Equal(t, domain.IngestStatePersisted, result.State)
	}
}

func TestContentHash(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		contentHash(""))
	assert.Equal(t, contentHash("same"), contentHash("same"))
	assert.NotEqual(t, contentHash("one"), contentHash("two"))
	assert.Len(t, contentHash("anything"), 64)
}
