// Package segmenter splits normalised text into overlapping,
// paragraph-aligned segments sized for embedding.
package segmenter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/satchel/internal/core/domain"
)

// DefaultMaxTokens is the default token budget per segment.
const DefaultMaxTokens = 512

// DefaultOverlapTokens is the default context carried between
// adjacent segments.
const DefaultOverlapTokens = 50

// DefaultParagraphSeparator marks preferred split points.
const DefaultParagraphSeparator = "\n\n"

// charsPerToken approximates tokens from character counts. Good
// enough to keep segments inside embedding model windows without
// shipping a tokenizer.
const charsPerToken = 4

// Segmenter splits text on paragraph boundaries under a token budget.
// Segment text is always an exact slice of the normalised input, so
// offsets, text, and coverage agree by construction.
type Segmenter struct {
	maxTokens     int
	overlapTokens int
	separator     string
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithMaxTokens sets the token budget per segment. Values <= 0 are
// stored and rejected by Segment, so misuse fails loudly instead of
// being silently corrected.
func WithMaxTokens(n int) Option {
	return func(s *Segmenter) {
		s.maxTokens = n
	}
}

// WithOverlapTokens sets the context shared between adjacent segments.
func WithOverlapTokens(n int) Option {
	return func(s *Segmenter) {
		s.overlapTokens = n
	}
}

// WithParagraphSeparator sets the preferred split marker.
func WithParagraphSeparator(sep string) Option {
	return func(s *Segmenter) {
		if sep != "" {
			s.separator = sep
		}
	}
}

// New creates a segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		maxTokens:     DefaultMaxTokens,
		overlapTokens: DefaultOverlapTokens,
		separator:     DefaultParagraphSeparator,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Segment splits text into ordered segments. Empty or whitespace-only
// input yields zero segments. A single paragraph over the budget is
// emitted whole rather than hard-split.
func (s *Segmenter) Segment(text string) ([]domain.Segment, error) {
	if s.maxTokens <= 0 {
		return nil, fmt.Errorf("max tokens %d: %w", s.maxTokens, domain.ErrInvalidArgument)
	}

	maxChars := s.maxTokens * charsPerToken
	overlapChars := s.overlapTokens * charsPerToken
	if s.overlapTokens < 0 || overlapChars >= maxChars {
		// Overlap must stay under the budget
		overlapChars = maxChars / 4
	}

	normalized := Normalize(text)
	if normalized == "" {
		return nil, nil
	}

	if len(normalized) <= maxChars {
		return []domain.Segment{makeSegment(normalized, 0, 0, len(normalized))}, nil
	}

	spans := paragraphSpans(normalized, s.separator)
	if len(spans) == 0 {
		return nil, nil
	}

	var segments []domain.Segment
	segStart := spans[0].start
	segEnd := spans[0].end

	for _, sp := range spans[1:] {
		if sp.end-segStart > maxChars {
			segments = append(segments, makeSegment(normalized, len(segments), segStart, segEnd))
			segStart = overlapStart(normalized, segStart, segEnd, overlapChars)
		}
		segEnd = sp.end
	}
	segments = append(segments, makeSegment(normalized, len(segments), segStart, segEnd))

	return segments, nil
}

// Normalize converts line endings to \n and trims surrounding
// whitespace. Segment offsets index into this form of the text.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// EstimateTokens approximates the token count of text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

func makeSegment(normalized string, index, start, end int) domain.Segment {
	text := normalized[start:end]
	return domain.Segment{
		Index:       index,
		StartOffset: start,
		EndOffset:   end,
		Text:        text,
		TokenCount:  EstimateTokens(text),
		Metadata:    make(map[string]any),
	}
}

// overlapStart seeds the next segment with the tail of the one just
// closed, never reaching back past its start and never starting on
// whitespace. With zero overlap it lands on the next paragraph.
func overlapStart(normalized string, segStart, segEnd, overlapChars int) int {
	start := segEnd - overlapChars
	if start < segStart {
		start = segStart
	}
	// overlapChars counts bytes, so the seed can land inside a
	// multi-byte rune; move forward to the next rune boundary.
	for start < len(normalized) && !utf8.RuneStart(normalized[start]) {
		start++
	}
	for start < len(normalized) && isSpace(normalized[start]) {
		start++
	}
	return start
}

type span struct {
	start int
	end   int
}

// paragraphSpans locates non-empty paragraphs in the normalised text,
// trimmed to non-whitespace boundaries.
func paragraphSpans(text, sep string) []span {
	var spans []span
	pos := 0
	for {
		idx := strings.Index(text[pos:], sep)
		end := len(text)
		if idx >= 0 {
			end = pos + idx
		}

		start := pos
		for start < end && isSpace(text[start]) {
			start++
		}
		for end > start && isSpace(text[end-1]) {
			end--
		}
		if end > start {
			spans = append(spans, span{start: start, end: end})
		}

		if idx < 0 {
			return spans
		}
		pos = pos + idx + len(sep)
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
