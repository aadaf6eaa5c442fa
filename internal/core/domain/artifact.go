package domain

// Artifact is a source reduced to plain text by an external converter.
// The ingestion pipeline never parses binary formats itself.
type Artifact struct {
	// SourceFile is the path the artifact came from, relative to the
	// ingestion root where possible.
	SourceFile string

	// Title is the human-readable title, usually derived from the
	// file name or first heading.
	Title string

	// Body is the extracted plain text.
	Body string

	// SourceKind classifies the artifact's origin.
	SourceKind SourceKind

	// Tags are labels to attach to the resulting document.
	Tags []string

	// Metadata contains converter-specific key-value pairs.
	Metadata map[string]any
}

// IngestState tracks an artifact through the ingestion pipeline.
type IngestState string

// Ingestion states, in pipeline order.
const (
	// IngestStatePending means the artifact is queued.
	IngestStatePending IngestState = "pending"

	// IngestStateHashing means the content hash is being computed.
	IngestStateHashing IngestState = "hashing"

	// IngestStateSkippedDuplicate means unchanged content was already
	// ingested. A normal idempotent outcome, not an error.
	IngestStateSkippedDuplicate IngestState = "skipped_duplicate"

	// IngestStateEmbedding means segmentation and embedding are running.
	IngestStateEmbedding IngestState = "embedding"

	// IngestStatePersisted means document, segments, and manifest entry
	// were all written.
	IngestStatePersisted IngestState = "persisted"

	// IngestStateFailed means a step errored; the failure is recorded
	// on the artifact and the batch continues.
	IngestStateFailed IngestState = "failed"
)

// String returns the string representation.
func (s IngestState) String() string {
	return string(s)
}

// Terminal returns true for states that end an artifact's pipeline.
func (s IngestState) Terminal() bool {
	switch s {
	case IngestStateSkippedDuplicate, IngestStatePersisted, IngestStateFailed:
		return true
	default:
		return false
	}
}

// ArtifactResult is the terminal outcome for one artifact.
type ArtifactResult struct {
	// SourceFile identifies the artifact.
	SourceFile string

	// State is the terminal state reached.
	State IngestState

	// DocumentID is the stored document, set when persisted or when a
	// duplicate was found.
	DocumentID string

	// SegmentCount is the number of segments written.
	SegmentCount int

	// Err is the failure reason when State is failed.
	Err string
}

// IngestReport summarises a completed batch. A batch always completes;
// per-artifact failures never abort it.
type IngestReport struct {
	// Succeeded counts artifacts that reached persisted.
	Succeeded int

	// Skipped counts duplicate artifacts.
	Skipped int

	// Failed counts artifacts whose pipeline errored.
	Failed int

	// Results holds the per-artifact outcomes in completion order.
	Results []ArtifactResult
}

// Total returns the number of artifacts accounted for.
func (r *IngestReport) Total() int {
	return r.Succeeded + r.Skipped + r.Failed
}

// IngestProgress is an advisory progress event. Dropping or ignoring
// these events never affects correctness.
type IngestProgress struct {
	// SourceFile is the artifact currently being processed.
	SourceFile string

	// State is the artifact's current pipeline state.
	State IngestState

	// Completed is the number of artifacts finished so far.
	Completed int

	// Total is the batch size.
	Total int
}

// Percent returns completion as 0-100.
func (p IngestProgress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Completed * 100 / p.Total
}
