// Package fs provides file-based persistence for extracted comments.
package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/krysczajkowski/ytcomments"
)

// Ensure Sink implements ytcomments.Sink at compile time.
var _ ytcomments.Sink = (*Sink)(nil)

// Sink appends comments to a newline-delimited JSON file, one record
// per line. Batches are flushed to disk as they arrive, so a crash
// mid-extraction loses at most the batch being written.
type Sink struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// NewSink opens path for appending, creating parent directories as
// needed.
func NewSink(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Sink{file: file, w: bufio.NewWriter(file)}, nil
}

// WriteComments appends a batch, one JSON object per line, and flushes.
func (s *Sink) WriteComments(ctx context.Context, comments []*ytcomments.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.w)
	for _, comment := range comments {
		if err := comment.Validate(); err != nil {
			return err
		}
		if err := enc.Encode(comment); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

// Close flushes buffered records and closes the file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
