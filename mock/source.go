package mock

import (
	"context"

	"github.com/krysczajkowski/ytcomments"
)

var _ ytcomments.Source = (*Source)(nil)

// Source is a mock implementation of ytcomments.Source.
type Source struct {
	BootstrapFn   func(ctx context.Context, ref *ytcomments.VideoRef, egress string) (*ytcomments.PageBootstrap, error)
	CommentPageFn func(ctx context.Context, req *ytcomments.PageRequest) (*ytcomments.CommentPage, error)
}

func (s *Source) Bootstrap(ctx context.Context, ref *ytcomments.VideoRef, egress string) (*ytcomments.PageBootstrap, error) {
	return s.BootstrapFn(ctx, ref, egress)
}

func (s *Source) CommentPage(ctx context.Context, req *ytcomments.PageRequest) (*ytcomments.CommentPage, error) {
	return s.CommentPageFn(ctx, req)
}
