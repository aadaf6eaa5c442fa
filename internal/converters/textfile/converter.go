package textfile

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/logger"
)

// maxFileSize caps a single file read. Anything larger is almost
// certainly not a note worth embedding whole.
const maxFileSize = 10 << 20 // 10 MiB

// Converter reduces UTF-8 text files to ingestion artifacts.
type Converter struct {
	// tags are attached to every produced artifact.
	tags []string
}

// Option configures a Converter.
type Option func(*Converter)

// WithTags attaches tags to every converted artifact.
func WithTags(tags []string) Option {
	return func(c *Converter) {
		c.tags = tags
	}
}

// New creates a text file converter.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertFile reads one file and produces an artifact. Files that are
// not valid UTF-8 text are rejected with ErrInvalidArgument.
func (c *Converter) ConvertFile(path string) (*domain.Artifact, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required: %w", domain.ErrInvalidArgument)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file: %w", path, domain.ErrInvalidArgument)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%s exceeds the %d byte size limit: %w", path, int64(maxFileSize), domain.ErrInvalidArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !isText(data) {
		return nil, fmt.Errorf("%s is not UTF-8 text: %w", path, domain.ErrInvalidArgument)
	}

	return &domain.Artifact{
		SourceFile: path,
		Title:      titleFromPath(path),
		Body:       string(data),
		SourceKind: domain.SourceKindFile,
		Tags:       c.tags,
		Metadata: map[string]any{
			"extension":  strings.ToLower(filepath.Ext(path)),
			"size_bytes": info.Size(),
			"modified":   info.ModTime().UTC(),
		},
	}, nil
}

// ConvertPath produces artifacts for a file or directory. Directories
// are walked one level deep unless recursive is set; unreadable and
// non-text entries are skipped with a log line, never an error, so one
// odd file cannot abort a directory conversion.
func (c *Converter) ConvertPath(path string, recursive bool) ([]domain.Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		artifact, err := c.ConvertFile(path)
		if err != nil {
			return nil, err
		}
		return []domain.Artifact{*artifact}, nil
	}

	var artifacts []domain.Artifact
	walkErr := filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", entry, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if entry == path {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		artifact, convErr := c.ConvertFile(entry)
		if convErr != nil {
			logger.Debug("Skipping %s: %v", entry, convErr)
			return nil
		}
		artifacts = append(artifacts, *artifact)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", path, walkErr)
	}

	return artifacts, nil
}

// titleFromPath derives a human-readable title from the file name.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" {
		return base
	}
	return title
}

// isText reports whether data looks like UTF-8 text. A NUL byte or
// invalid encoding marks the content as binary.
func isText(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	return utf8.Valid(data)
}
