// Package sink hands finished export artifacts to a "save as file"
// capability. The pipeline produces payload blobs and suggested filenames;
// everything past that point (paths, overwrites) lives here.
package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/neoledger/neo-export-backend/internal/export"
)

// Sink persists export artifacts.
type Sink interface {
	Save(artifact export.Artifact) (string, error)
}

// FileSink writes artifacts into a directory, creating it if needed.
type FileSink struct {
	dir string
}

// NewFileSink creates a sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Save writes the artifact under the sink directory using its suggested
// filename and returns the full path.
func (s *FileSink) Save(artifact export.Artifact) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.dir, artifact.Filename)
	if err := os.WriteFile(path, artifact.Payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", artifact.Filename, err)
	}

	return path, nil
}

// Discard drops artifacts; used for dry runs.
type Discard struct{}

// Save returns the suggested filename without writing anything.
func (Discard) Save(artifact export.Artifact) (string, error) {
	return artifact.Filename, nil
}
