package extract

import (
	"time"

	"github.com/krysczajkowski/ytcomments"
)

// paginationState is the mutable per-video state threaded through one
// extraction. It has exactly one owner (the Extractor call that created
// it) and is discarded when the extraction ends; nothing is shared across
// videos, which is what makes per-video parallelization safe.
type paginationState struct {
	continuation string

	// replyTokens holds the pending reply cursor per parent id;
	// replyOrder preserves the order parents were first emitted in.
	replyTokens map[string]string
	replyOrder  []string

	comments []*ytcomments.Comment
	byID     map[string]*ytcomments.Comment

	consecutiveEmptyPages int
	firstBatchReceived    bool

	startedAt          time.Time
	timedOut           bool
	firstBatchTimedOut bool
}

func newPaginationState(start time.Time) *paginationState {
	return &paginationState{
		replyTokens: make(map[string]string),
		byID:        make(map[string]*ytcomments.Comment),
		startedAt:   start,
	}
}
