package innertube_test

import (
	"fmt"
	"testing"

	"github.com/krysczajkowski/ytcomments"
	"github.com/krysczajkowski/ytcomments/innertube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRef() *ytcomments.VideoRef {
	return &ytcomments.VideoRef{
		VideoID:      "dQw4w9WgXcQ",
		OriginalURL:  "https://youtu.be/dQw4w9WgXcQ",
		CanonicalURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
}

// watchPage wraps an initial-state JSON document in a minimal watch page
// using the given embedding prefix.
func watchPage(prefix, doc string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head><title>x</title></head><body>
<script>var other = {"unrelated": true};</script>
<script>%s%s;</script>
</body></html>`, prefix, doc)
}

const fullInitialData = `{
	"contents": {"twoColumnWatchNextResults": {"results": {"results": {"contents": [
		{"videoPrimaryInfoRenderer": {"title": {"runs": [{"text": "Never Gonna "}, {"text": "Give You Up"}]}}},
		{"itemSectionRenderer": {"sectionIdentifier": "comment-item-section", "contents": [
			{"commentsEntryPointHeaderRenderer": {"commentCount": {"simpleText": "1.4K"}}},
			{"continuationItemRenderer": {"continuationEndpoint": {"continuationCommand": {"token": "LEGACY_TOKEN"}}}}
		]}}
	]}}}},
	"engagementPanels": [
		{"engagementPanelSectionListRenderer": {
			"panelIdentifier": "engagement-panel-comments-section",
			"content": {"sectionListRenderer": {"contents": [
				{"itemSectionRenderer": {"contents": [
					{"continuationItemRenderer": {"continuationEndpoint": {"continuationCommand": {"token": "PANEL_TOKEN"}}}}
				]}}
			]}}
		}}
	]
}`

func TestParseWatchPage(t *testing.T) {
	t.Parallel()

	t.Run("parses every known embedding pattern", func(t *testing.T) {
		t.Parallel()

		prefixes := []string{
			`var ytInitialData = `,
			`window["ytInitialData"] = `,
			`window.ytInitialData = `,
		}

		for _, prefix := range prefixes {
			bootstrap, err := innertube.ParseWatchPage(watchPage(prefix, fullInitialData), testRef())
			require.NoError(t, err, prefix)
			assert.Equal(t, "PANEL_TOKEN", bootstrap.Continuation, prefix)
		}
	})

	t.Run("extracts metadata", func(t *testing.T) {
		t.Parallel()

		bootstrap, err := innertube.ParseWatchPage(watchPage(`var ytInitialData = `, fullInitialData), testRef())
		require.NoError(t, err)

		meta := bootstrap.Metadata
		assert.Equal(t, "dQw4w9WgXcQ", meta.VideoID)
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", meta.OriginalURL)
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", meta.CanonicalURL)
		assert.Equal(t, "Never Gonna Give You Up", meta.Title)
		require.NotNil(t, meta.TotalCommentsCount)
		assert.Equal(t, int64(1400), *meta.TotalCommentsCount)
		assert.False(t, bootstrap.CommentsDisabled)
	})

	t.Run("engagement panel token wins over stale legacy slot", func(t *testing.T) {
		t.Parallel()

		bootstrap, err := innertube.ParseWatchPage(watchPage(`var ytInitialData = `, fullInitialData), testRef())
		require.NoError(t, err)
		assert.Equal(t, "PANEL_TOKEN", bootstrap.Continuation)
	})

	t.Run("falls back to legacy two-column token", func(t *testing.T) {
		t.Parallel()

		doc := `{
			"contents": {"twoColumnWatchNextResults": {"results": {"results": {"contents": [
				{"itemSectionRenderer": {"sectionIdentifier": "comment-item-section", "contents": [
					{"continuationItemRenderer": {"continuationEndpoint": {"continuationCommand": {"token": "LEGACY_TOKEN"}}}}
				]}}
			]}}}}
		}`

		bootstrap, err := innertube.ParseWatchPage(watchPage(`var ytInitialData = `, doc), testRef())
		require.NoError(t, err)
		assert.Equal(t, "LEGACY_TOKEN", bootstrap.Continuation)
	})

	t.Run("title falls back to overlay video details", func(t *testing.T) {
		t.Parallel()

		doc := `{
			"playerOverlays": {"playerOverlayRenderer": {"videoDetails": {
				"playerOverlayVideoDetailsRenderer": {"title": {"simpleText": "Overlay Title"}}
			}}}
		}`

		bootstrap, err := innertube.ParseWatchPage(watchPage(`var ytInitialData = `, doc), testRef())
		require.NoError(t, err)
		assert.Equal(t, "Overlay Title", bootstrap.Metadata.Title)
	})

	t.Run("detects disabled comments", func(t *testing.T) {
		t.Parallel()

		doc := `{
			"contents": {"twoColumnWatchNextResults": {"results": {"results": {"contents": [
				{"itemSectionRenderer": {"sectionIdentifier": "comment-item-section", "contents": [
					{"messageRenderer": {"text": {"runs": [
						{"text": "Comments are turned off. "}, {"text": "Learn more"}
					]}}}
				]}}
			]}}}}
		}`

		bootstrap, err := innertube.ParseWatchPage(watchPage(`var ytInitialData = `, doc), testRef())
		require.NoError(t, err)
		assert.True(t, bootstrap.CommentsDisabled)
		assert.Empty(t, bootstrap.Continuation)
	})

	t.Run("no token and not disabled is a valid bootstrap", func(t *testing.T) {
		t.Parallel()

		bootstrap, err := innertube.ParseWatchPage(watchPage(`var ytInitialData = `, `{"contents": {}}`), testRef())
		require.NoError(t, err)
		assert.Empty(t, bootstrap.Continuation)
		assert.False(t, bootstrap.CommentsDisabled)
		assert.Nil(t, bootstrap.Metadata.TotalCommentsCount)
	})

	t.Run("returns not-found when no pattern parses", func(t *testing.T) {
		t.Parallel()

		_, err := innertube.ParseWatchPage(`<html><body><script>var x = 1;</script></body></html>`, testRef())
		require.Error(t, err)
		assert.Equal(t, ytcomments.ENOTFOUND, ytcomments.ErrorCode(err))
	})

	t.Run("skips a pattern with malformed JSON and tries the next", func(t *testing.T) {
		t.Parallel()

		html := fmt.Sprintf(`<html><body>
<script>var ytInitialData = {broken;</script>
<script>window.ytInitialData = %s;</script>
</body></html>`, fullInitialData)

		bootstrap, err := innertube.ParseWatchPage(html, testRef())
		require.NoError(t, err)
		assert.Equal(t, "PANEL_TOKEN", bootstrap.Continuation)
	})
}
