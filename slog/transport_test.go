package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/krysczajkowski/ytcomments"
	"github.com/krysczajkowski/ytcomments/mock"
	ytcslog "github.com/krysczajkowski/ytcomments/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingTransport_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs successful fetches with duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Transport{
			FetchFn: func(_ context.Context, _ *ytcomments.Request) (*ytcomments.Response, error) {
				return &ytcomments.Response{StatusCode: 200, Body: []byte("ok")}, nil
			},
		}

		transport := ytcslog.NewLoggingTransport(inner, debugLogger(&buf))
		resp, err := transport.Fetch(context.Background(), &ytcomments.Request{
			Method: "GET",
			URL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "method=GET")
		assert.Contains(t, output, "status=200")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs non-200 statuses as warnings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Transport{
			FetchFn: func(_ context.Context, _ *ytcomments.Request) (*ytcomments.Response, error) {
				return &ytcomments.Response{StatusCode: 429}, nil
			},
		}

		transport := ytcslog.NewLoggingTransport(inner, debugLogger(&buf))
		_, err := transport.Fetch(context.Background(), &ytcomments.Request{Method: "POST", URL: "https://example.com"})
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "status=429")
	})

	t.Run("logs transport errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Transport{
			FetchFn: func(_ context.Context, _ *ytcomments.Request) (*ytcomments.Response, error) {
				return nil, ytcomments.Errorf(ytcomments.EUNAVAILABLE, "connection refused")
			},
		}

		transport := ytcslog.NewLoggingTransport(inner, debugLogger(&buf))
		_, err := transport.Fetch(context.Background(), &ytcomments.Request{Method: "GET", URL: "https://example.com"})
		require.Error(t, err)

		output := buf.String()
		assert.Contains(t, output, "level=ERROR")
		assert.Contains(t, output, "connection refused")
	})

	t.Run("includes the egress handle when set", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Transport{
			FetchFn: func(_ context.Context, _ *ytcomments.Request) (*ytcomments.Response, error) {
				return &ytcomments.Response{StatusCode: 200}, nil
			},
		}

		transport := ytcslog.NewLoggingTransport(inner, debugLogger(&buf))
		_, err := transport.Fetch(context.Background(), &ytcomments.Request{
			Method: "GET",
			URL:    "https://example.com",
			Egress: "socks5://10.0.0.1:1080",
		})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "egress=socks5://10.0.0.1:1080")
	})

	t.Run("delegates Close to the wrapped transport", func(t *testing.T) {
		t.Parallel()

		closed := false
		inner := &mock.Transport{
			CloseFn: func() error {
				closed = true
				return nil
			},
		}

		transport := ytcslog.NewLoggingTransport(inner, debugLogger(&bytes.Buffer{}))
		require.NoError(t, transport.Close())
		assert.True(t, closed)
	})
}
