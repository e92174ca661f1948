package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NERVsystems/osmingest/pkg/listing"
)

// FileSink writes one pretty-printed JSON array per category into Dir
type FileSink struct {
	Dir string
}

// NewFileSink creates a sink rooted at dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Name implements Sink
func (s *FileSink) Name() string { return "file" }

// Path returns the output file of a category
func (s *FileSink) Path(category listing.Category) string {
	return filepath.Join(s.Dir, category.FileName())
}

// Write implements Sink. The file is written next to its destination and
// renamed into place, so readers never observe a partial array.
func (s *FileSink) Write(ctx context.Context, category listing.Category, records []listing.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if records == nil {
		records = []listing.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", category, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.Dir, "."+string(category)+"-*.json~")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o644)
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", category, err)
	}

	if err := os.Rename(tmpName, s.Path(category)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", category, err)
	}
	return nil
}
