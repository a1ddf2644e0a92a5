// Package extract provides the pagination engine that drives comment
// extraction for a video: bootstrap, top-level paging, reply paging, and
// the time/count budgets that bound the whole walk. Extraction for one
// video is strictly sequential because each continuation token is only
// obtainable from the immediately preceding response.
package extract

import (
	"context"
	"time"

	"github.com/krysczajkowski/ytcomments"
	"golang.org/x/time/rate"
)

// Limits bounds the cost of one extraction.
type Limits struct {
	// MaxComments caps the number of records retained (top-level plus
	// replies). Zero means unlimited.
	MaxComments int

	// ExtractionTimeout is the total wall-clock budget per video.
	ExtractionTimeout time.Duration

	// FirstBatchTimeout bounds the wait for the first non-empty page.
	// Tracked separately from ExtractionTimeout because a slow first
	// response and a slow later page are different failure modes.
	FirstBatchTimeout time.Duration

	// RequestTimeout bounds each individual fetch attempt.
	RequestTimeout time.Duration

	// MaxEmptyPages aborts the top-level loop after this many
	// consecutive zero-yield pages; it signals end-of-stream or an
	// upstream format break rather than spinning. Zero means the
	// default of 3.
	MaxEmptyPages int
}

// DefaultLimits returns the limits used when a field is left zero.
func DefaultLimits() Limits {
	return Limits{
		ExtractionTimeout: 5 * time.Minute,
		FirstBatchTimeout: 60 * time.Second,
		RequestTimeout:    30 * time.Second,
		MaxEmptyPages:     3,
	}
}

// Extractor drives comment extraction against a Source.
type Extractor struct {
	Source ytcomments.Source

	// Sink, if set, receives every appended batch as soon as its page
	// is parsed, so a later failure cannot lose earlier pages.
	Sink ytcomments.Sink

	Retry  ytcomments.RetryPolicy
	Limits Limits

	// Pacer, if set, spaces page fetches out.
	Pacer *rate.Limiter

	// Egress pins every fetch of this extraction to one egress handle.
	Egress string

	// Jitter and Now are injectable for tests; nil uses the defaults.
	Jitter func() float64
	Now    func() time.Time
}

// Extract walks the comments of one video to completion or a bounded
// partial stop. It never returns an empty-handed failure once any comment
// has been collected: accumulated comments are always in the result.
func (e *Extractor) Extract(ctx context.Context, ref *ytcomments.VideoRef) *ytcomments.ExtractionResult {
	limits := e.limits()
	st := newPaginationState(e.now())

	// Metadata is populated where obtainable even when the bootstrap
	// itself fails.
	result := &ytcomments.ExtractionResult{
		Metadata: &ytcomments.VideoMetadata{
			VideoID:      ref.VideoID,
			OriginalURL:  ref.OriginalURL,
			CanonicalURL: ref.CanonicalURL,
		},
	}

	bootstrap, failure := fetchWithRetry(ctx, e.Retry, e.Jitter, func(ctx context.Context) (*ytcomments.PageBootstrap, error) {
		rctx, cancel := e.requestContext(ctx, limits)
		defer cancel()
		return e.Source.Bootstrap(rctx, ref, e.Egress)
	})
	if failure != nil {
		// The only zero-output failure path: nothing was ever parsed.
		result.Err = failure.Err
		result.ErrClass = failure.Class
		return result
	}
	result.Metadata = bootstrap.Metadata

	// Disabled comments, and an absent token with comments enabled,
	// are both successful zero-comment terminal cases.
	if bootstrap.CommentsDisabled || bootstrap.Continuation == "" {
		result.Completed = true
		return result
	}
	st.continuation = bootstrap.Continuation

	e.pageTopLevel(ctx, st, result, limits)
	if result.Err == nil && !st.timedOut && !capReached(st, limits) {
		e.pageReplies(ctx, st, result, limits)
	}

	result.Comments = st.comments
	result.TimedOut = st.timedOut
	result.FirstBatchTimedOut = st.firstBatchTimedOut
	result.Completed = result.Err == nil &&
		!st.timedOut &&
		st.continuation == "" &&
		len(st.replyTokens) == 0 &&
		!capReached(st, limits)
	return result
}

// pageTopLevel runs the top-level loop: fetch, parse, append, follow the
// next token. A fetch failure stops the phase but keeps everything
// accumulated so far.
func (e *Extractor) pageTopLevel(ctx context.Context, st *paginationState, result *ytcomments.ExtractionResult, limits Limits) {
	for st.continuation != "" && !capReached(st, limits) {
		if e.checkTimeouts(st, limits) {
			return
		}

		page, failure := e.fetchPage(ctx, &ytcomments.PageRequest{
			Continuation: st.continuation,
			Metadata:     result.Metadata,
			Egress:       e.Egress,
		}, limits)
		if failure != nil {
			result.Err = failure.Err
			result.ErrClass = failure.Class
			return
		}

		appended := e.appendComments(st, page.Comments, limits)
		e.mergeReplyTokens(st, page)
		st.continuation = page.Continuation

		if len(appended) == 0 {
			st.consecutiveEmptyPages++
			if st.consecutiveEmptyPages >= limits.MaxEmptyPages {
				return
			}
			continue
		}

		st.consecutiveEmptyPages = 0
		st.firstBatchReceived = true
		if !e.flush(ctx, appended, result) {
			return
		}
	}
}

// pageReplies walks the reply feed of every parent that declared replies
// and surfaced a token, under the same cap and timeout rules.
func (e *Extractor) pageReplies(ctx context.Context, st *paginationState, result *ytcomments.ExtractionResult, limits Limits) {
	for _, parent := range st.replyOrder {
		token, ok := st.replyTokens[parent]
		if !ok {
			continue
		}

		emptyPages := 0
		for token != "" && !capReached(st, limits) {
			if e.checkTimeouts(st, limits) {
				return
			}

			page, failure := e.fetchPage(ctx, &ytcomments.PageRequest{
				Continuation: token,
				Metadata:     result.Metadata,
				ParentCID:    parent,
				Egress:       e.Egress,
			}, limits)
			if failure != nil {
				result.Err = failure.Err
				result.ErrClass = failure.Class
				return
			}

			appended := e.appendComments(st, page.Comments, limits)

			// The "more replies" pointer propagates exactly like the
			// top-level token.
			token = page.Continuation
			st.replyTokens[parent] = token
			if token == "" {
				delete(st.replyTokens, parent)
			}

			if len(appended) == 0 {
				emptyPages++
				if emptyPages >= limits.MaxEmptyPages {
					delete(st.replyTokens, parent)
					break
				}
				continue
			}
			emptyPages = 0

			if !e.flush(ctx, appended, result) {
				return
			}
		}

		if st.timedOut || capReached(st, limits) {
			return
		}
	}
}

// fetchPage wraps one page fetch in the retry policy and the per-request
// timeout.
func (e *Extractor) fetchPage(ctx context.Context, req *ytcomments.PageRequest, limits Limits) (*ytcomments.CommentPage, *Failure) {
	if e.Pacer != nil {
		if err := e.Pacer.Wait(ctx); err != nil {
			return nil, &Failure{Err: err, Class: ytcomments.ClassifyError(err), Attempts: 0}
		}
	}

	return fetchWithRetry(ctx, e.Retry, e.Jitter, func(ctx context.Context) (*ytcomments.CommentPage, error) {
		rctx, cancel := e.requestContext(ctx, limits)
		defer cancel()
		return e.Source.CommentPage(rctx, req)
	})
}

// appendComments retains parsed records up to the cap, deduplicating by
// cid across the whole extraction and dropping any reply whose parent was
// never emitted.
func (e *Extractor) appendComments(st *paginationState, comments []*ytcomments.Comment, limits Limits) []*ytcomments.Comment {
	var appended []*ytcomments.Comment
	for _, comment := range comments {
		if capReached(st, limits) {
			break
		}
		if _, ok := st.byID[comment.CID]; ok {
			continue
		}
		if comment.ParentCID != "" {
			if _, ok := st.byID[comment.ParentCID]; !ok {
				continue
			}
		}

		st.byID[comment.CID] = comment
		st.comments = append(st.comments, comment)
		appended = append(appended, comment)
	}
	return appended
}

// mergeReplyTokens records the reply entry points discovered on a page,
// for parents that declared a nonzero reply count.
func (e *Extractor) mergeReplyTokens(st *paginationState, page *ytcomments.CommentPage) {
	for parent, token := range page.ReplyTokens {
		comment, ok := st.byID[parent]
		if !ok || comment.ReplyCount == 0 {
			continue
		}
		if _, exists := st.replyTokens[parent]; !exists {
			st.replyOrder = append(st.replyOrder, parent)
		}
		st.replyTokens[parent] = token
	}
}

// flush pushes a batch to the sink. A sink failure stops the extraction
// (reported false) but never discards what was already accumulated.
func (e *Extractor) flush(ctx context.Context, batch []*ytcomments.Comment, result *ytcomments.ExtractionResult) bool {
	if e.Sink == nil {
		return true
	}
	if err := e.Sink.WriteComments(ctx, batch); err != nil {
		result.Err = err
		result.ErrClass = ytcomments.ClassifyError(err)
		return false
	}
	return true
}

// checkTimeouts is evaluated at the top of every loop iteration in both
// phases. Cancellation is coarse: an in-flight request runs to its own
// transport timeout, it is not interrupted mid-flight.
func (e *Extractor) checkTimeouts(st *paginationState, limits Limits) bool {
	elapsed := e.now().Sub(st.startedAt)
	if elapsed >= limits.ExtractionTimeout {
		st.timedOut = true
		return true
	}
	if !st.firstBatchReceived && elapsed >= limits.FirstBatchTimeout {
		st.timedOut = true
		st.firstBatchTimedOut = true
		return true
	}
	return false
}

func capReached(st *paginationState, limits Limits) bool {
	return limits.MaxComments > 0 && len(st.comments) >= limits.MaxComments
}

func (e *Extractor) requestContext(ctx context.Context, limits Limits) (context.Context, context.CancelFunc) {
	if limits.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, limits.RequestTimeout)
}

// limits returns the configured limits with zero fields defaulted.
func (e *Extractor) limits() Limits {
	limits := e.Limits
	defaults := DefaultLimits()
	if limits.ExtractionTimeout <= 0 {
		limits.ExtractionTimeout = defaults.ExtractionTimeout
	}
	if limits.FirstBatchTimeout <= 0 {
		limits.FirstBatchTimeout = defaults.FirstBatchTimeout
	}
	if limits.RequestTimeout <= 0 {
		limits.RequestTimeout = defaults.RequestTimeout
	}
	if limits.MaxEmptyPages <= 0 {
		limits.MaxEmptyPages = defaults.MaxEmptyPages
	}
	return limits
}

func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
