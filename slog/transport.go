// Package slog provides logging decorators for the application's
// service interfaces, built on the standard structured logger.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/krysczajkowski/ytcomments"
)

// Ensure LoggingTransport implements ytcomments.Transport.
var _ ytcomments.Transport = (*LoggingTransport)(nil)

// LoggingTransport wraps a Transport with request/response logging.
type LoggingTransport struct {
	next   ytcomments.Transport
	logger *slog.Logger
}

// NewLoggingTransport creates a new LoggingTransport.
func NewLoggingTransport(next ytcomments.Transport, logger *slog.Logger) *LoggingTransport {
	return &LoggingTransport{next: next, logger: logger}
}

// Fetch delegates to the wrapped transport and logs the outcome.
func (t *LoggingTransport) Fetch(ctx context.Context, req *ytcomments.Request) (*ytcomments.Response, error) {
	begin := time.Now()
	resp, err := t.next.Fetch(ctx, req)

	attrs := []any{
		"method", req.Method,
		"url", req.URL,
		"duration", time.Since(begin),
	}
	if req.Egress != "" {
		attrs = append(attrs, "egress", req.Egress)
	}

	switch {
	case err != nil:
		attrs = append(attrs, "error", err)
		t.logger.Error("fetch", attrs...)
	case resp.StatusCode != 200:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Warn("fetch", attrs...)
	default:
		attrs = append(attrs, "status", resp.StatusCode, "bytes", len(resp.Body))
		t.logger.Debug("fetch", attrs...)
	}

	return resp, err
}

// Close delegates to the wrapped transport.
func (t *LoggingTransport) Close() error {
	return t.next.Close()
}
