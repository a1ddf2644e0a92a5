package ytcomments

import "context"

// Kind distinguishes top-level comments from replies.
type Kind string

// Kind constants for Comment.Kind.
const (
	KindComment Kind = "comment"
	KindReply   Kind = "reply"
)

// VideoMetadata describes the video a set of comments belongs to.
// It is created once by the watch-page bootstrap and stamped onto every
// comment of the extraction; it is never mutated afterwards.
type VideoMetadata struct {
	VideoID            string `json:"videoId"`
	OriginalURL        string `json:"originalUrl"`
	CanonicalURL       string `json:"canonicalUrl"`
	Title              string `json:"title"`
	TotalCommentsCount *int64 `json:"totalCommentsCount"`
}

// Comment is the canonical comment record emitted by the extraction,
// regardless of which wire encoding it was parsed from.
type Comment struct {
	CID                string `json:"cid"`
	Text               string `json:"text"`
	Author             string `json:"author"`
	VideoID            string `json:"videoId"`
	PageURL            string `json:"pageUrl"`
	Title              string `json:"title"`
	TotalCommentsCount *int64 `json:"totalCommentsCount"`
	VoteCount          int64  `json:"voteCount"`
	ReplyCount         int64  `json:"replyCount"`
	IsAuthorOwner      bool   `json:"isAuthorOwner"`
	HasCreatorHeart    bool   `json:"hasCreatorHeart"`
	Kind               Kind   `json:"kind"`
	ParentCID          string `json:"parentCid,omitempty"`
	RelativeDate       string `json:"relativeDate"`
}

// Validate returns an error if the comment contains invalid fields.
// Empty text is allowed; a missing author is not.
func (c *Comment) Validate() error {
	if c.CID == "" {
		return Errorf(EINVALID, "comment id required")
	}
	if c.Author == "" {
		return Errorf(EINVALID, "comment author required")
	}
	if c.Kind != KindComment && c.Kind != KindReply {
		return Errorf(EINVALID, "unknown comment kind %q", c.Kind)
	}
	if c.Kind == KindReply && c.ParentCID == "" {
		return Errorf(EINVALID, "reply requires a parent comment id")
	}
	return nil
}

// Sink receives batches of canonical comments as they are extracted.
// Implementations are append-only: a batch already written is never
// revisited or removed.
type Sink interface {
	// WriteComments appends a batch of comments.
	WriteComments(ctx context.Context, comments []*Comment) error
}

// ExtractionResult is the terminal outcome of extracting one video.
// Comments accumulated before any failure are always preserved.
type ExtractionResult struct {
	// RunID identifies the extraction run the result belongs to.
	RunID string `json:"runId"`

	Metadata *VideoMetadata `json:"metadata"`
	Comments []*Comment     `json:"comments"`

	// Completed is true iff pagination ran out of pages naturally:
	// no continuation token remained, no eligible replies remained,
	// and the requested cap was not reached.
	Completed bool `json:"completed"`

	// TimedOut reports whether a time budget fired. FirstBatchTimedOut
	// narrows it to the first-batch deadline; the two are distinct
	// failure modes even though both end the extraction the same way.
	TimedOut           bool `json:"timedOut"`
	FirstBatchTimedOut bool `json:"firstBatchTimedOut"`

	// Err and ErrClass describe the failure that stopped the extraction,
	// if any. A mid-pagination failure still returns the comments
	// collected so far.
	Err      error        `json:"-"`
	ErrClass FailureClass `json:"errorCategory,omitempty"`
}

// Status summarizes the result as "completed", "partial" or "failed".
// An extraction is failed only when it produced nothing at all and an
// error occurred before any comment was parsed.
func (r *ExtractionResult) Status() string {
	switch {
	case r.Completed:
		return "completed"
	case len(r.Comments) == 0 && r.Err != nil:
		return "failed"
	default:
		return "partial"
	}
}
