package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
	"github.com/custodia-labs/satchel/internal/logger"
	"github.com/custodia-labs/satchel/internal/segmenter"
)

// Ensure IngestOrchestrator implements the driving port.
var _ driving.IngestOrchestrator = (*IngestOrchestrator)(nil)

const (
	// DefaultIngestWorkers bounds pipeline concurrency when the caller
	// does not choose a worker count.
	DefaultIngestWorkers = 5

	// DefaultEmbedTimeout bounds a single embedding call.
	DefaultEmbedTimeout = 60 * time.Second
)

// IngestOrchestrator runs artifacts through the ingestion pipeline:
// hash, dedup against the manifest, segment, embed, persist. Artifacts
// are processed by a bounded worker pool and deduplicated by content
// hash, both against previously ingested content and against other
// artifacts in the same batch. Without an embedding provider segments
// are stored vector-less, which keeps lexical search working.
type IngestOrchestrator struct {
	docStore  driven.DocumentStore
	manifest  driven.ManifestStore
	provider  driven.EmbeddingProvider
	segmenter *segmenter.Segmenter

	// inflight holds content hashes currently being processed, so two
	// workers handed identical content persist it exactly once.
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewIngestOrchestrator creates an ingestion orchestrator.
func NewIngestOrchestrator(
	docStore driven.DocumentStore,
	manifest driven.ManifestStore,
	provider driven.EmbeddingProvider,
	seg *segmenter.Segmenter,
) *IngestOrchestrator {
	if seg == nil {
		seg = segmenter.New()
	}
	return &IngestOrchestrator{
		docStore:  docStore,
		manifest:  manifest,
		provider:  provider,
		segmenter: seg,
		inflight:  make(map[string]struct{}),
	}
}

// IngestBatch processes artifacts with bounded concurrency. The batch
// always completes: a failing artifact is recorded in the report and
// the rest continue. The returned error covers invalid input only.
func (o *IngestOrchestrator) IngestBatch(ctx context.Context, artifacts []domain.Artifact, opts driving.IngestOptions) (*domain.IngestReport, error) {
	if o.docStore == nil || o.manifest == nil {
		return nil, fmt.Errorf("document store and manifest are required: %w", domain.ErrInvalidArgument)
	}
	if o.provider == nil {
		logger.Warn("No embedding provider, storing segments without vectors")
	}

	report := &domain.IngestReport{}
	if len(artifacts) == 0 {
		return report, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultIngestWorkers
	}
	if workers > len(artifacts) {
		workers = len(artifacts)
	}
	embedTimeout := opts.EmbedTimeout
	if embedTimeout <= 0 {
		embedTimeout = DefaultEmbedTimeout
	}

	logger.Section("Ingestion")
	logger.Info("Ingesting %d artifacts with %d workers", len(artifacts), workers)

	total := len(artifacts)
	var completed atomic.Int64
	notify := func(sourceFile string, state domain.IngestState) {
		if opts.Progress == nil {
			return
		}
		opts.Progress(domain.IngestProgress{
			SourceFile: sourceFile,
			State:      state,
			Completed:  int(completed.Load()),
			Total:      total,
		})
	}

	jobs := make(chan domain.Artifact)
	results := make(chan domain.ArtifactResult)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for artifact := range jobs {
				result := o.processArtifact(ctx, artifact, opts.Force, embedTimeout, notify)
				completed.Add(1)
				notify(result.SourceFile, result.State)
				results <- result
			}
		}()
	}

	// Feed jobs until done or cancelled. Cancellation stops dequeuing;
	// artifacts already picked up run to completion.
	go func() {
		defer close(jobs)
		for _, artifact := range artifacts {
			select {
			case <-ctx.Done():
				logger.Warn("Ingestion cancelled, %d of %d artifacts not started", total-int(completed.Load()), total)
				return
			case jobs <- artifact:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		switch result.State {
		case domain.IngestStatePersisted:
			report.Succeeded++
		case domain.IngestStateSkippedDuplicate:
			report.Skipped++
		default:
			report.Failed++
		}
		report.Results = append(report.Results, result)
	}

	logger.Info("Ingestion complete: %d persisted, %d skipped, %d failed", report.Succeeded, report.Skipped, report.Failed)
	return report, nil
}

// IngestOne processes a single artifact through the same pipeline.
func (o *IngestOrchestrator) IngestOne(ctx context.Context, artifact domain.Artifact, opts driving.IngestOptions) (*domain.ArtifactResult, error) {
	report, err := o.IngestBatch(ctx, []domain.Artifact{artifact}, opts)
	if err != nil {
		return nil, err
	}
	if len(report.Results) == 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ingest %s: %w", artifact.SourceFile, ctxErr)
		}
		return nil, fmt.Errorf("ingest %s: no result produced", artifact.SourceFile)
	}
	return &report.Results[0], nil
}

// processArtifact runs one artifact to a terminal state. It never
// returns an error; failures are recorded on the result.
func (o *IngestOrchestrator) processArtifact(ctx context.Context, artifact domain.Artifact, force bool, embedTimeout time.Duration, notify func(string, domain.IngestState)) domain.ArtifactResult {
	result := domain.ArtifactResult{SourceFile: artifact.SourceFile}
	fail := func(err error) domain.ArtifactResult {
		result.State = domain.IngestStateFailed
		result.Err = err.Error()
		logger.Warn("Ingest failed for %s: %v", artifact.SourceFile, err)
		return result
	}

	// An artifact picked up before cancellation runs to completion.
	// Per-call timeouts below still apply.
	ctx = context.WithoutCancel(ctx)

	// 1. Hash the content.
	notify(artifact.SourceFile, domain.IngestStateHashing)
	hash := contentHash(artifact.Body)

	// 2. Claim the hash for this batch. The loser of a race between
	// identical artifacts skips; the winner's manifest entry covers it.
	release, claimed := o.claim(hash)
	if !claimed {
		logger.Debug("Duplicate in batch, skipping %s", artifact.SourceFile)
		result.State = domain.IngestStateSkippedDuplicate
		return result
	}
	defer release()

	// 3. Dedup against prior ingests, or clear them out under force.
	if !force {
		if skip, docID, segCount := o.alreadyIngested(ctx, hash, artifact); skip {
			logger.Debug("Already ingested, skipping %s", artifact.SourceFile)
			result.State = domain.IngestStateSkippedDuplicate
			result.DocumentID = docID
			result.SegmentCount = segCount
			return result
		}
	} else {
		if err := o.purgePrevious(ctx, hash); err != nil {
			return fail(err)
		}
	}

	// 4. Segment and embed. Without a provider the segments stay
	// vector-less and only lexical search will reach them.
	notify(artifact.SourceFile, domain.IngestStateEmbedding)
	segments, err := o.segmenter.Segment(artifact.Body)
	if err != nil {
		return fail(fmt.Errorf("segment: %w", err))
	}
	if len(segments) > 0 && o.provider != nil {
		texts := make([]string, len(segments))
		for i, seg := range segments {
			texts[i] = seg.Text
		}
		embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
		embeddings, err := o.provider.EmbedMany(embedCtx, texts)
		cancel()
		if err != nil {
			return fail(fmt.Errorf("embed %d segments: %w", len(segments), err))
		}
		if len(embeddings) != len(segments) {
			return fail(fmt.Errorf("embed %d segments: got %d embeddings", len(segments), len(embeddings)))
		}
		for i := range segments {
			segments[i].Embedding = embeddings[i]
		}
	}

	// 5. Persist document and segments.
	doc := &domain.Document{
		Title:       artifact.Title,
		Body:        artifact.Body,
		ContentHash: hash,
		SourceKind:  artifact.SourceKind,
		Tags:        artifact.Tags,
		Metadata:    artifact.Metadata,
	}
	created, err := o.docStore.CreateDocument(ctx, doc)
	if err != nil {
		return fail(fmt.Errorf("create document: %w", err))
	}
	for i := range segments {
		segments[i].DocumentID = created.ID
	}
	if _, err := o.docStore.CreateSegments(ctx, segments); err != nil {
		// Remove the document so a later run does not mistake the
		// segment-less shell for a completed ingest.
		if delErr := o.docStore.DeleteDocument(ctx, created.ID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			logger.Warn("Could not clean up document %s after segment failure: %v", created.ID, delErr)
		}
		return fail(fmt.Errorf("create segments: %w", err))
	}

	// 6. Record the manifest entry last, so its presence always means
	// the content is fully persisted.
	entry := domain.ManifestEntry{
		DocumentID:   created.ID,
		SourceFile:   artifact.SourceFile,
		SegmentCount: len(segments),
		UploadedAt:   time.Now().UTC(),
	}
	if err := o.manifest.Record(hash, entry); err != nil {
		return fail(fmt.Errorf("record manifest entry: %w", err))
	}

	logger.Debug("Persisted %s as document %s with %d segments", artifact.SourceFile, created.ID, len(segments))
	result.State = domain.IngestStatePersisted
	result.DocumentID = created.ID
	result.SegmentCount = len(segments)
	return result
}

// alreadyIngested reports whether the content hash was ingested before.
// A manifest miss falls back to the document store; a hit there means
// the manifest was lost or trimmed, so the entry is restored.
func (o *IngestOrchestrator) alreadyIngested(ctx context.Context, hash string, artifact domain.Artifact) (bool, string, int) {
	has, err := o.manifest.Has(hash)
	if err == nil && has {
		if entry, getErr := o.manifest.Get(hash); getErr == nil {
			return true, entry.DocumentID, entry.SegmentCount
		}
		return true, "", 0
	}
	if err != nil {
		logger.Warn("Manifest lookup failed for %s: %v", artifact.SourceFile, err)
	}

	doc, err := o.docStore.FindDocumentByHash(ctx, hash)
	if err != nil {
		return false, "", 0
	}

	segCount := 0
	if segments, segErr := o.docStore.GetSegments(ctx, doc.ID); segErr == nil {
		segCount = len(segments)
	}
	entry := domain.ManifestEntry{
		DocumentID:   doc.ID,
		SourceFile:   artifact.SourceFile,
		SegmentCount: segCount,
		UploadedAt:   time.Now().UTC(),
	}
	if recErr := o.manifest.Record(hash, entry); recErr != nil {
		logger.Warn("Could not restore manifest entry for %s: %v", artifact.SourceFile, recErr)
	} else {
		logger.Info("Restored manifest entry for %s from existing document %s", artifact.SourceFile, doc.ID)
	}
	return true, doc.ID, segCount
}

// purgePrevious removes the document and manifest entry for a hash
// ahead of a forced re-ingest. Already-absent pieces are fine.
func (o *IngestOrchestrator) purgePrevious(ctx context.Context, hash string) error {
	entry, err := o.manifest.Get(hash)
	if errors.Is(err, domain.ErrNotFound) {
		// No manifest entry; the store may still hold an unrecorded copy.
		doc, findErr := o.docStore.FindDocumentByHash(ctx, hash)
		if findErr != nil {
			return nil
		}
		if delErr := o.docStore.DeleteDocument(ctx, doc.ID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			return fmt.Errorf("delete previous document: %w", delErr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read manifest entry: %w", err)
	}

	if entry.DocumentID != "" {
		if delErr := o.docStore.DeleteDocument(ctx, entry.DocumentID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			return fmt.Errorf("delete previous document: %w", delErr)
		}
	}
	if err := o.manifest.Remove(hash); err != nil {
		return fmt.Errorf("remove manifest entry: %w", err)
	}
	return nil
}

// claim marks a content hash as in flight. The second return is false
// when another worker already holds it. On success the returned func
// releases the claim.
func (o *IngestOrchestrator) claim(hash string) (func(), bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, held := o.inflight[hash]; held {
		return nil, false
	}
	o.inflight[hash] = struct{}{}
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.inflight, hash)
	}, true
}

// contentHash returns the SHA-256 hex digest of the body.
func contentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
