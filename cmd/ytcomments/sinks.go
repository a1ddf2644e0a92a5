package main

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/krysczajkowski/ytcomments"
	"github.com/krysczajkowski/ytcomments/fs"
	"github.com/krysczajkowski/ytcomments/sqlite"
)

// buildSink assembles the configured outputs. With no output flags the
// comments stream to stdout as NDJSON. The returned closer releases
// every opened output and is safe to call after a partial failure.
func buildSink(cli *CLI, runID string, stdout io.Writer) (ytcomments.Sink, func(), error) {
	var sinks []ytcomments.Sink
	var closers []func()
	closeAll := func() {
		for _, close := range closers {
			close()
		}
	}

	if cli.Out != "" {
		fileSink, err := fs.NewSink(cli.Out)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fileSink)
		closers = append(closers, func() { fileSink.Close() })
	}

	if cli.DB != "" {
		db := sqlite.NewDB(cli.DB)
		if err := db.Open(); err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, sqlite.NewSink(db, sqlite.WithRunID(runID)))
		closers = append(closers, func() { db.Close() })
	}

	if len(sinks) == 0 {
		sinks = append(sinks, &streamSink{w: stdout})
	}

	if len(sinks) == 1 {
		return sinks[0], closeAll, nil
	}
	return multiSink(sinks), closeAll, nil
}

// streamSink writes NDJSON to a shared writer, typically stdout.
type streamSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *streamSink) WriteComments(_ context.Context, comments []*ytcomments.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.w)
	for _, comment := range comments {
		if err := enc.Encode(comment); err != nil {
			return err
		}
	}
	return nil
}

// multiSink fans every batch out to all configured sinks.
type multiSink []ytcomments.Sink

func (m multiSink) WriteComments(ctx context.Context, comments []*ytcomments.Comment) error {
	for _, sink := range m {
		if err := sink.WriteComments(ctx, comments); err != nil {
			return err
		}
	}
	return nil
}
