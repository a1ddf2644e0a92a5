package mock

import (
	"context"

	"github.com/krysczajkowski/ytcomments"
)

var _ ytcomments.Sink = (*Sink)(nil)

// Sink is a mock implementation of ytcomments.Sink.
type Sink struct {
	WriteCommentsFn func(ctx context.Context, comments []*ytcomments.Comment) error
}

func (s *Sink) WriteComments(ctx context.Context, comments []*ytcomments.Comment) error {
	if s.WriteCommentsFn == nil {
		return nil
	}
	return s.WriteCommentsFn(ctx, comments)
}
