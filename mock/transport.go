package mock

import (
	"context"

	"github.com/krysczajkowski/ytcomments"
)

var _ ytcomments.Transport = (*Transport)(nil)

// Transport is a mock implementation of ytcomments.Transport.
type Transport struct {
	FetchFn func(ctx context.Context, req *ytcomments.Request) (*ytcomments.Response, error)
	CloseFn func() error
}

func (t *Transport) Fetch(ctx context.Context, req *ytcomments.Request) (*ytcomments.Response, error) {
	return t.FetchFn(ctx, req)
}

func (t *Transport) Close() error {
	if t.CloseFn == nil {
		return nil
	}
	return t.CloseFn()
}
