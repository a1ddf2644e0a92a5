package ytcomments

import "context"

// PageBootstrap is what a single watch-page fetch yields: the immutable
// video metadata plus the entry point into comment pagination.
type PageBootstrap struct {
	Metadata *VideoMetadata

	// Continuation is the first top-level page token. Empty with
	// CommentsDisabled false means the video has comments enabled but
	// none posted (or no comments panel); both are successful
	// zero-comment terminal cases.
	Continuation string

	// CommentsDisabled is true when the page declares comments turned
	// off. Not an error.
	CommentsDisabled bool
}

// CommentPage is one parsed page of the comments feed.
type CommentPage struct {
	Comments []*Comment

	// Continuation is the next page token at the same level (top-level
	// pages and reply pages propagate it identically). Empty means
	// end of stream.
	Continuation string

	// ReplyTokens maps a parent comment id to the first token of its
	// reply feed, for parents that declared replies on this page.
	ReplyTokens map[string]string
}

// PageRequest asks a Source for one page of the comments feed.
type PageRequest struct {
	// Continuation is the server-issued cursor for the page. Tokens are
	// only obtainable from the immediately preceding response, which is
	// why extraction is strictly sequential.
	Continuation string

	// Metadata is stamped onto every parsed comment.
	Metadata *VideoMetadata

	// ParentCID tags the page as a reply page for that parent; parsed
	// records get KindReply. Empty means a top-level page.
	ParentCID string

	// Egress optionally pins the fetch to an egress handle.
	Egress string
}

// Source fetches and decodes the upstream wire formats into canonical
// records. The pagination engine depends on this interface only.
type Source interface {
	// Bootstrap fetches the video landing page once and extracts
	// metadata, the disabled flag and the first continuation token.
	Bootstrap(ctx context.Context, ref *VideoRef, egress string) (*PageBootstrap, error)

	// CommentPage fetches and parses one page of the paginated
	// comments API.
	CommentPage(ctx context.Context, req *PageRequest) (*CommentPage, error)
}
