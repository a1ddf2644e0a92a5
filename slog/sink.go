package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/krysczajkowski/ytcomments"
)

// Ensure LoggingSink implements ytcomments.Sink.
var _ ytcomments.Sink = (*LoggingSink)(nil)

// LoggingSink wraps a Sink with per-batch write logging.
type LoggingSink struct {
	next   ytcomments.Sink
	logger *slog.Logger
}

// NewLoggingSink creates a new LoggingSink.
func NewLoggingSink(next ytcomments.Sink, logger *slog.Logger) *LoggingSink {
	return &LoggingSink{next: next, logger: logger}
}

// WriteComments delegates to the wrapped sink and logs the batch.
func (s *LoggingSink) WriteComments(ctx context.Context, comments []*ytcomments.Comment) error {
	begin := time.Now()
	err := s.next.WriteComments(ctx, comments)

	attrs := []any{
		"comments", len(comments),
		"duration", time.Since(begin),
	}
	if len(comments) > 0 {
		attrs = append(attrs, "video_id", comments[0].VideoID)
	}

	if err != nil {
		attrs = append(attrs, "error", err)
		s.logger.Error("write comments", attrs...)
		return err
	}
	s.logger.Debug("write comments", attrs...)
	return nil
}
