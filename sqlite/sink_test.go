package sqlite_test

import (
	"context"
	"testing"

	"github.com/krysczajkowski/ytcomments"
	"github.com/krysczajkowski/ytcomments/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOpenDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func storedComment(cid string) *ytcomments.Comment {
	return &ytcomments.Comment{
		CID:          cid,
		Text:         "text " + cid,
		Author:       "@author",
		VideoID:      "dQw4w9WgXcQ",
		PageURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Title:        "Test Video",
		VoteCount:    42,
		ReplyCount:   2,
		Kind:         ytcomments.KindComment,
		RelativeDate: "2 days ago",
	}
}

func TestSink_WriteComments(t *testing.T) {
	t.Parallel()

	t.Run("persists a batch and reads it back", func(t *testing.T) {
		t.Parallel()

		db := mustOpenDB(t)
		sink := sqlite.NewSink(db)
		ctx := context.Background()

		total := int64(1400)
		comment := storedComment("c1")
		comment.TotalCommentsCount = &total
		require.NoError(t, sink.WriteComments(ctx, []*ytcomments.Comment{comment, storedComment("c2")}))

		comments, err := sink.FindCommentsByVideo(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		require.Len(t, comments, 2)

		got := comments[0]
		assert.Equal(t, "c1", got.CID)
		assert.Equal(t, "text c1", got.Text)
		assert.Equal(t, "@author", got.Author)
		assert.Equal(t, int64(42), got.VoteCount)
		assert.Equal(t, int64(2), got.ReplyCount)
		assert.Equal(t, ytcomments.KindComment, got.Kind)
		assert.Equal(t, "2 days ago", got.RelativeDate)
		require.NotNil(t, got.TotalCommentsCount)
		assert.Equal(t, int64(1400), *got.TotalCommentsCount)
	})

	t.Run("rewriting the same cid does not duplicate", func(t *testing.T) {
		t.Parallel()

		db := mustOpenDB(t)
		sink := sqlite.NewSink(db)
		ctx := context.Background()

		require.NoError(t, sink.WriteComments(ctx, []*ytcomments.Comment{storedComment("c1")}))
		require.NoError(t, sink.WriteComments(ctx, []*ytcomments.Comment{storedComment("c1")}))

		count, err := sink.CountComments(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("persists replies with their parent id", func(t *testing.T) {
		t.Parallel()

		db := mustOpenDB(t)
		sink := sqlite.NewSink(db)
		ctx := context.Background()

		parent := storedComment("c1")
		child := storedComment("c1.r1")
		child.Kind = ytcomments.KindReply
		child.ParentCID = "c1"
		require.NoError(t, sink.WriteComments(ctx, []*ytcomments.Comment{parent, child}))

		comments, err := sink.FindCommentsByVideo(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		require.Len(t, comments, 2)

		// Top-level comments sort before replies.
		assert.Equal(t, ytcomments.KindComment, comments[0].Kind)
		assert.Equal(t, ytcomments.KindReply, comments[1].Kind)
		assert.Equal(t, "c1", comments[1].ParentCID)
	})

	t.Run("rejects invalid comments", func(t *testing.T) {
		t.Parallel()

		db := mustOpenDB(t)
		sink := sqlite.NewSink(db)

		invalid := storedComment("c1")
		invalid.Author = ""
		err := sink.WriteComments(context.Background(), []*ytcomments.Comment{invalid})
		require.Error(t, err)
		assert.Equal(t, ytcomments.EINVALID, ytcomments.ErrorCode(err))

		count, countErr := sink.CountComments(context.Background(), "dQw4w9WgXcQ")
		require.NoError(t, countErr)
		assert.Zero(t, count)
	})

	t.Run("an empty batch is a no-op", func(t *testing.T) {
		t.Parallel()

		db := mustOpenDB(t)
		sink := sqlite.NewSink(db)
		require.NoError(t, sink.WriteComments(context.Background(), nil))
	})

	t.Run("tags rows with the configured run id", func(t *testing.T) {
		t.Parallel()

		db := mustOpenDB(t)
		sink := sqlite.NewSink(db, sqlite.WithRunID("run-42"))
		ctx := context.Background()

		require.NoError(t, sink.WriteComments(ctx, []*ytcomments.Comment{storedComment("c1")}))

		var runID string
		err := db.QueryRowContext(ctx, "SELECT run_id FROM comments WHERE cid = ?", "c1").Scan(&runID)
		require.NoError(t, err)
		assert.Equal(t, "run-42", runID)
	})
}
