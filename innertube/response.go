package innertube

import (
	"github.com/krysczajkowski/ytcomments"
)

// ParsePage decodes one raw comments-API response into canonical records.
// parentCID is empty for top-level pages; for reply pages it tags every
// parsed record as a reply of that parent.
//
// The API can emit the same logical comment in two encodings at once:
// legacy thread renderers under a reload or append action, and a flat
// entity batch elsewhere in the same document. Legacy records are parsed
// first; entity records are strictly additive and never overwrite an id
// already seen. An unrecognized top-level shape yields an empty page, not
// an error.
func ParsePage(doc map[string]any, meta *ytcomments.VideoMetadata, parentCID string) *ytcomments.CommentPage {
	page := &ytcomments.CommentPage{
		ReplyTokens: make(map[string]string),
	}

	seen := make(map[string]bool)
	for _, item := range continuationItems(doc) {
		parseItem(page, item, meta, parentCID, seen)
	}

	parseEntityBatch(page, doc, meta, parentCID, seen)

	return page
}

// continuationItems collects the renderer items from the legacy-thread
// collection, which sits under a "reload" wrapper on the initial load and
// an "append" wrapper on subsequent pages.
func continuationItems(doc map[string]any) []any {
	var items []any
	for _, endpoint := range sliceAt(doc, "onResponseReceivedEndpoints") {
		items = append(items, sliceAt(endpoint, "reloadContinuationItemsCommand", "continuationItems")...)
		items = append(items, sliceAt(endpoint, "appendContinuationItemsAction", "continuationItems")...)
	}
	return items
}

// parseItem handles one renderer item: a comment thread, a bare comment
// (reply pages), or the next-page continuation marker. Unrecognized items
// are skipped; they are never fatal to the page.
func parseItem(page *ytcomments.CommentPage, item any, meta *ytcomments.VideoMetadata, parentCID string, seen map[string]bool) {
	if thread := mapAt(item, "commentThreadRenderer"); thread != nil {
		comment := commentFromRenderer(mapAt(thread, "comment", "commentRenderer"), meta, parentCID)
		if comment == nil {
			return
		}
		appendComment(page, comment, seen)

		// A thread may carry a pointer into its reply feed.
		if token := stringAt(findKey(thread["replies"], "continuationCommand"), "token"); token != "" {
			page.ReplyTokens[comment.CID] = token
		}
		return
	}

	if renderer := mapAt(item, "commentRenderer"); renderer != nil {
		if comment := commentFromRenderer(renderer, meta, parentCID); comment != nil {
			appendComment(page, comment, seen)
		}
		return
	}

	if marker := mapAt(item, "continuationItemRenderer"); marker != nil {
		if token := nextToken(marker); token != "" {
			page.Continuation = token
		}
	}
}

// nextToken reads the next-page token from a continuation marker. Reply
// feeds hide it behind a "show more" button; top-level feeds expose it
// directly on the endpoint.
func nextToken(marker map[string]any) string {
	if token := stringAt(marker, "continuationEndpoint", "continuationCommand", "token"); token != "" {
		return token
	}
	return stringAt(marker, "button", "buttonRenderer", "command", "continuationCommand", "token")
}

// commentFromRenderer maps a legacy commentRenderer to a canonical record.
// Records without a resolvable author are dropped (nil), never fatal.
func commentFromRenderer(renderer map[string]any, meta *ytcomments.VideoMetadata, parentCID string) *ytcomments.Comment {
	if renderer == nil {
		return nil
	}

	comment := newComment(meta, parentCID)
	comment.CID = stringAt(renderer, "commentId")
	comment.Text = text(renderer["contentText"])
	comment.Author = text(renderer["authorText"])
	comment.RelativeDate = text(renderer["publishedTimeText"])
	comment.IsAuthorOwner = boolAt(renderer, "authorIsChannelOwner")
	comment.HasCreatorHeart = findKey(renderer["actionButtons"], "creatorHeart") != nil

	if votes, ok := ytcomments.ParseApproxCount(text(renderer["voteCount"])); ok {
		comment.VoteCount = votes
	}
	if replies, ok := numberAt(renderer, "replyCount"); ok {
		comment.ReplyCount = int64(replies)
	}

	if comment.Validate() != nil {
		return nil
	}
	return comment
}

// parseEntityBatch maps the flat entity-record batch, skipping any id the
// legacy encoding already produced.
func parseEntityBatch(page *ytcomments.CommentPage, doc map[string]any, meta *ytcomments.VideoMetadata, parentCID string, seen map[string]bool) {
	for _, mutation := range sliceAt(doc, "frameworkUpdates", "entityBatchUpdate", "mutations") {
		payload := mapAt(mutation, "payload", "commentEntityPayload")
		if payload == nil {
			continue
		}
		comment := commentFromEntity(payload, meta, parentCID)
		if comment == nil || seen[comment.CID] {
			continue
		}
		appendComment(page, comment, seen)
	}
}

// commentFromEntity maps a commentEntityPayload to a canonical record.
// The vote count only exists as a sentence-style accessibility label here.
func commentFromEntity(payload map[string]any, meta *ytcomments.VideoMetadata, parentCID string) *ytcomments.Comment {
	comment := newComment(meta, parentCID)
	comment.CID = stringAt(payload, "properties", "commentId")
	comment.Text = stringAt(payload, "properties", "content", "content")
	comment.RelativeDate = stringAt(payload, "properties", "publishedTime")
	comment.Author = stringAt(payload, "author", "displayName")
	comment.IsAuthorOwner = boolAt(payload, "author", "isCreator")

	toolbar := mapAt(payload, "toolbar")
	if toolbar != nil {
		if votes, ok := ytcomments.ExtractApproxCount(stringAt(toolbar, "likeButtonA11y")); ok {
			comment.VoteCount = votes
		} else if votes, ok := ytcomments.ParseApproxCount(stringAt(toolbar, "likeCountNotliked")); ok {
			comment.VoteCount = votes
		}
		if replies, ok := ytcomments.ParseApproxCount(stringAt(toolbar, "replyCount")); ok {
			comment.ReplyCount = replies
		}
		comment.HasCreatorHeart = stringAt(toolbar, "heartActiveTooltip") != ""
	}

	if comment.Validate() != nil {
		return nil
	}
	return comment
}

func newComment(meta *ytcomments.VideoMetadata, parentCID string) *ytcomments.Comment {
	kind := ytcomments.KindComment
	if parentCID != "" {
		kind = ytcomments.KindReply
	}
	return &ytcomments.Comment{
		VideoID:            meta.VideoID,
		PageURL:            meta.CanonicalURL,
		Title:              meta.Title,
		TotalCommentsCount: meta.TotalCommentsCount,
		Kind:               kind,
		ParentCID:          parentCID,
	}
}

func appendComment(page *ytcomments.CommentPage, comment *ytcomments.Comment, seen map[string]bool) {
	if seen[comment.CID] {
		return
	}
	seen[comment.CID] = true
	page.Comments = append(page.Comments, comment)
}
