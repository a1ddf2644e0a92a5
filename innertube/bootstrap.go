package innertube

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/krysczajkowski/ytcomments"
)

// initialDataPatterns are the known embedding syntaxes for the inline
// initial-state document, tried in order. The markup moved between
// page-layout versions; exactly one script on the page carries the
// document under one of these prefixes.
var initialDataPatterns = []string{
	`var ytInitialData = `,
	`window["ytInitialData"] = `,
	`window.ytInitialData = `,
	`ytInitialData = `,
}

// commentsPanelID identifies the engagement panel that hosts the comments
// section in newer page layouts.
const commentsPanelID = "engagement-panel-comments-section"

// ParseWatchPage locates the embedded initial-state document in a watch
// page and extracts the video metadata, the comments-disabled flag and the
// first top-level continuation token.
//
// Returns ENOTFOUND when no embedding pattern yields a parseable document.
// A missing token with comments not disabled is not an error: it means
// comments are enabled but none exist (or the panel is absent).
func ParseWatchPage(html string, ref *ytcomments.VideoRef) (*ytcomments.PageBootstrap, error) {
	doc, err := locateInitialData(html)
	if err != nil {
		return nil, err
	}

	count := extractCommentCount(doc)
	bootstrap := &ytcomments.PageBootstrap{
		Metadata: &ytcomments.VideoMetadata{
			VideoID:            ref.VideoID,
			OriginalURL:        ref.OriginalURL,
			CanonicalURL:       ref.CanonicalURL,
			Title:              extractTitle(doc),
			TotalCommentsCount: count,
		},
		Continuation:     extractContinuation(doc),
		CommentsDisabled: commentsDisabled(doc),
	}
	return bootstrap, nil
}

// locateInitialData scans the page's script elements for the initial-state
// document, trying each embedding pattern in order. First successful JSON
// parse wins.
func locateInitialData(html string) (map[string]any, error) {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ytcomments.Errorf(ytcomments.EINVALID, "unparseable watch page: %s", err)
	}

	var scripts []string
	page.Find("script").Each(func(_ int, s *goquery.Selection) {
		scripts = append(scripts, s.Text())
	})

	for _, pattern := range initialDataPatterns {
		for _, script := range scripts {
			idx := strings.Index(script, pattern)
			if idx == -1 {
				continue
			}

			// The document runs to the end of the JSON value; a decoder
			// stops there and ignores the trailing ";".
			var doc map[string]any
			dec := json.NewDecoder(strings.NewReader(script[idx+len(pattern):]))
			if err := dec.Decode(&doc); err != nil {
				continue
			}
			return doc, nil
		}
	}

	return nil, ytcomments.Errorf(ytcomments.ENOTFOUND, "initial state document not found in watch page")
}

// titleExtractors are the known title locations, in fallback order.
var titleExtractors = []func(doc map[string]any) string{
	titleFromPrimaryInfo,
	titleFromVideoDetails,
	titleFromDescriptionHeader,
}

// extractTitle tries each known title location; first non-empty wins.
func extractTitle(doc map[string]any) string {
	for _, extract := range titleExtractors {
		if title := extract(doc); title != "" {
			return title
		}
	}
	return ""
}

func titleFromPrimaryInfo(doc map[string]any) string {
	primary := findKey(doc, "videoPrimaryInfoRenderer")
	return text(mapAt(primary, "title"))
}

func titleFromVideoDetails(doc map[string]any) string {
	details := findKey(doc, "videoDetails")
	return text(mapAt(details, "playerOverlayVideoDetailsRenderer", "title"))
}

func titleFromDescriptionHeader(doc map[string]any) string {
	header := findKey(doc, "videoDescriptionHeaderRenderer")
	return text(mapAt(header, "title"))
}

// extractCommentCount reads the rounded comment count from the comments
// entry point, wherever the current layout put it. Nil when absent.
func extractCommentCount(doc map[string]any) *int64 {
	countNode := findKey(doc, "commentCount")
	if countNode == nil {
		return nil
	}
	n, ok := ytcomments.ParseApproxCount(text(countNode))
	if !ok {
		return nil
	}
	return &n
}

// extractContinuation finds the first top-level continuation token.
// The engagement panel location is probed first: newer layouts relocate
// the token there and may leave a stale one in the legacy two-column slot.
func extractContinuation(doc map[string]any) string {
	if token := continuationFromPanels(doc); token != "" {
		return token
	}
	return continuationFromResults(doc)
}

func continuationFromPanels(doc map[string]any) string {
	for _, panel := range sliceAt(doc, "engagementPanels") {
		section := mapAt(panel, "engagementPanelSectionListRenderer")
		if section == nil {
			continue
		}
		id := stringAt(section, "panelIdentifier")
		if id == "" {
			id = stringAt(section, "targetId")
		}
		if id != commentsPanelID {
			continue
		}
		return stringAt(findKey(section, "continuationCommand"), "token")
	}
	return ""
}

func continuationFromResults(doc map[string]any) string {
	contents := sliceAt(doc, "contents", "twoColumnWatchNextResults", "results", "results", "contents")
	if section := commentItemSection(contents); section != nil {
		return stringAt(findKey(section, "continuationCommand"), "token")
	}
	return ""
}

// commentItemSection returns the item section that hosts comments in the
// legacy two-column layout.
func commentItemSection(contents []any) map[string]any {
	for _, item := range contents {
		section := mapAt(item, "itemSectionRenderer")
		if section == nil {
			continue
		}
		if stringAt(section, "sectionIdentifier") == "comment-item-section" {
			return section
		}
	}
	return nil
}

// commentsDisabled reports whether the page declares comments turned off.
func commentsDisabled(doc map[string]any) bool {
	contents := sliceAt(doc, "contents", "twoColumnWatchNextResults", "results", "results", "contents")
	if section := commentItemSection(contents); section != nil {
		if disabledMessage(findKey(section, "messageRenderer")) {
			return true
		}
	}
	// Some layouts surface the notice outside the comment item section.
	return disabledMessage(findKey(doc, "messageRenderer"))
}

func disabledMessage(node any) bool {
	if node == nil {
		return false
	}
	msg := text(mapAt(node, "text"))
	return strings.Contains(strings.ToLower(msg), "comments are turned off")
}
