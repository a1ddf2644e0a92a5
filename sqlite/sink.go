package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/krysczajkowski/ytcomments"
)

// Compile-time interface verification.
var _ ytcomments.Sink = (*Sink)(nil)

// Sink persists comment batches to SQLite. Writes are idempotent on the
// comment id, so re-running an extraction never duplicates rows.
type Sink struct {
	db    *DB
	runID string
	now   func() time.Time
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithRunID tags every written row with the given run id instead of a
// generated one.
func WithRunID(runID string) SinkOption {
	return func(s *Sink) {
		s.runID = runID
	}
}

// NewSink creates a new Sink writing through db.
func NewSink(db *DB, opts ...SinkOption) *Sink {
	s := &Sink{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		s.runID = uuid.New().String()
	}
	return s
}

// hashContent computes the xxHash of a comment's text as a hex string.
func hashContent(content string) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

// WriteComments appends a batch in a single transaction. Rows whose cid
// already exists are left untouched.
func (s *Sink) WriteComments(ctx context.Context, comments []*ytcomments.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO comments (
			cid, video_id, parent_cid, kind, author, text, content_hash,
			vote_count, reply_count, is_author_owner, has_creator_heart,
			relative_date, page_url, title, total_comments_count, run_id, written_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	writtenAt := s.now().UTC().Format(time.RFC3339)
	for _, comment := range comments {
		if err := comment.Validate(); err != nil {
			return err
		}

		if _, err := stmt.ExecContext(ctx,
			comment.CID, comment.VideoID, comment.ParentCID, string(comment.Kind),
			comment.Author, comment.Text, hashContent(comment.Text),
			comment.VoteCount, comment.ReplyCount, comment.IsAuthorOwner, comment.HasCreatorHeart,
			comment.RelativeDate, comment.PageURL, comment.Title, comment.TotalCommentsCount,
			s.runID, writtenAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindCommentsByVideo retrieves all stored comments for a video,
// top-level comments first, in insertion order within each kind.
func (s *Sink) FindCommentsByVideo(ctx context.Context, videoID string) ([]*ytcomments.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cid, video_id, parent_cid, kind, author, text,
			vote_count, reply_count, is_author_owner, has_creator_heart,
			relative_date, page_url, title, total_comments_count
		FROM comments
		WHERE video_id = ?
		ORDER BY kind, rowid
	`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*ytcomments.Comment
	for rows.Next() {
		var comment ytcomments.Comment
		var kind string
		var total sql.NullInt64

		if err := rows.Scan(&comment.CID, &comment.VideoID, &comment.ParentCID, &kind,
			&comment.Author, &comment.Text,
			&comment.VoteCount, &comment.ReplyCount, &comment.IsAuthorOwner, &comment.HasCreatorHeart,
			&comment.RelativeDate, &comment.PageURL, &comment.Title, &total); err != nil {
			return nil, err
		}

		comment.Kind = ytcomments.Kind(kind)
		if total.Valid {
			comment.TotalCommentsCount = &total.Int64
		}
		comments = append(comments, &comment)
	}

	return comments, rows.Err()
}

// CountComments returns the number of stored comments for a video.
func (s *Sink) CountComments(ctx context.Context, videoID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE video_id = ?", videoID,
	).Scan(&count)
	return count, err
}
