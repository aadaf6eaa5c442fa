package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/satchel/internal/core/domain"
)

// ProgressFunc receives advisory pipeline progress. It is invoked
// synchronously from worker goroutines, so it must be fast and
// concurrency-safe. Nil is always acceptable.
type ProgressFunc func(domain.IngestProgress)

// IngestOptions tunes a batch run. Zero values mean defaults.
type IngestOptions struct {
	// Force re-ingests content whose hash is already recorded,
	// replacing the previous document and manifest entry.
	Force bool

	// Workers bounds the concurrent pipeline count. Default 5.
	Workers int

	// EmbedTimeout bounds each embedding call. A timed-out call fails
	// only its own artifact. Default 60s.
	EmbedTimeout time.Duration

	// Progress receives advisory state transitions. May be nil.
	Progress ProgressFunc
}

// IngestOrchestrator turns converter artifacts into persisted
// documents with embedded segments.
type IngestOrchestrator interface {
	// IngestBatch processes artifacts with bounded concurrency and
	// content-hash dedup. The batch always completes: per-artifact
	// failures are recorded in the report, never returned as the
	// batch error. Cancelling ctx stops dequeuing; in-flight
	// artifacts run to completion.
	IngestBatch(ctx context.Context, artifacts []domain.Artifact, opts IngestOptions) (*domain.IngestReport, error)

	// IngestOne processes a single artifact. Convenience wrapper
	// around IngestBatch for direct capture and watch mode.
	IngestOne(ctx context.Context, artifact domain.Artifact, opts IngestOptions) (*domain.ArtifactResult, error)
}
