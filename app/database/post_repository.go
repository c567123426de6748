package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type postRepository struct {
	db *DB
}

func NewPostRepository(db *DB) PostRepository {
	return &postRepository{db: db}
}

const insertPostSQL = `
	INSERT OR IGNORE INTO posts (
		id, text, author_id, author_name, author_handle,
		created_at, bookmarked_at, fetched_at,
		reply_count, retweet_count, like_count,
		in_reply_to_id, conversation_id, is_thread,
		media_json, quoted_post_id, url, raw_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const updatePostSQL = `
	UPDATE posts SET
		text = ?, author_id = ?, author_name = ?, author_handle = ?,
		fetched_at = ?,
		reply_count = ?, retweet_count = ?, like_count = ?,
		in_reply_to_id = ?, conversation_id = ?, is_thread = ?,
		media_json = ?, quoted_post_id = ?, url = ?, raw_json = ?
	WHERE id = ?`

// UpsertPosts stores every post in a single transaction. For each post
// the insert runs first: it is a no-op when the id already exists, so
// bookmarked_at survives every later sync. The unconditional update then
// refreshes the mutable fields for both fresh and existing rows.
func (r *postRepository) UpsertPosts(ctx context.Context, posts []Post, bookmarkedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertStmt, err := tx.PrepareContext(ctx, insertPostSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insertStmt.Close()

	updateStmt, err := tx.PrepareContext(ctx, updatePostSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer updateStmt.Close()

	for _, post := range posts {
		_, err = insertStmt.ExecContext(ctx,
			post.ID, post.Text, post.AuthorID, post.AuthorName, post.AuthorHandle,
			formatTime(post.CreatedAt), formatTime(bookmarkedAt), formatTime(post.FetchedAt),
			post.ReplyCount, post.RetweetCount, post.LikeCount,
			nullableString(post.InReplyToID), nullableString(post.ConversationID), boolToInt(post.IsThread),
			post.MediaJSON, nullableString(post.QuotedPostID), post.URL, post.RawJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert post %s: %w", post.ID, err)
		}

		_, err = updateStmt.ExecContext(ctx,
			post.Text, post.AuthorID, post.AuthorName, post.AuthorHandle,
			formatTime(post.FetchedAt),
			post.ReplyCount, post.RetweetCount, post.LikeCount,
			nullableString(post.InReplyToID), nullableString(post.ConversationID), boolToInt(post.IsThread),
			post.MediaJSON, nullableString(post.QuotedPostID), post.URL, post.RawJSON,
			post.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update post %s: %w", post.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit posts: %w", err)
	}

	return nil
}

const postColumns = `
	id, text, author_id, author_name, author_handle,
	created_at, bookmarked_at, fetched_at,
	reply_count, retweet_count, like_count,
	COALESCE(in_reply_to_id, ''), COALESCE(conversation_id, ''), is_thread,
	media_json, COALESCE(quoted_post_id, ''), url, COALESCE(raw_json, ''),
	category_id, classified_at`

func (r *postRepository) GetPost(ctx context.Context, id string) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

func (r *postRepository) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (r *postRepository) GetUnclassified(ctx context.Context) ([]SamplePost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, author_handle, created_at
		FROM posts
		WHERE category_id IS NULL
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get unclassified posts: %w", err)
	}
	defer rows.Close()

	return scanSamplePosts(rows)
}

func (r *postRepository) GetSampleWindow(ctx context.Context, limit, offset int, newestFirst bool) ([]SamplePost, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, author_handle, created_at
		FROM posts
		ORDER BY created_at `+order+`
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get sample window: %w", err)
	}
	defer rows.Close()

	return scanSamplePosts(rows)
}

func (r *postRepository) GetThreadPosts(ctx context.Context, conversationID string) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE conversation_id = ?
		ORDER BY created_at ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get thread posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var post Post
	var createdAt, fetchedAt string
	var bookmarkedAt, classifiedAt sql.NullString
	var categoryID sql.NullInt64
	var isThread int

	err := row.Scan(
		&post.ID, &post.Text, &post.AuthorID, &post.AuthorName, &post.AuthorHandle,
		&createdAt, &bookmarkedAt, &fetchedAt,
		&post.ReplyCount, &post.RetweetCount, &post.LikeCount,
		&post.InReplyToID, &post.ConversationID, &isThread,
		&post.MediaJSON, &post.QuotedPostID, &post.URL, &post.RawJSON,
		&categoryID, &classifiedAt,
	)
	if err != nil {
		return nil, err
	}

	post.CreatedAt = parseTime(createdAt)
	post.FetchedAt = parseTime(fetchedAt)
	post.BookmarkedAt = parseNullableTime(bookmarkedAt)
	post.ClassifiedAt = parseNullableTime(classifiedAt)
	post.IsThread = isThread != 0
	if categoryID.Valid {
		post.CategoryID = &categoryID.Int64
	}

	return &post, nil
}

func scanSamplePosts(rows *sql.Rows) ([]SamplePost, error) {
	var posts []SamplePost
	for rows.Next() {
		var post SamplePost
		var createdAt string
		if err := rows.Scan(&post.ID, &post.Text, &post.AuthorHandle, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan sample post row: %w", err)
		}
		post.CreatedAt = parseTime(createdAt)
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sample post rows: %w", err)
	}

	return posts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
