package database

import (
	"context"
	"time"
)

// SamplePost is the projection used when building classification
// prompts; the full row is not needed there.
type SamplePost struct {
	ID           string
	Text         string
	AuthorHandle string
	CreatedAt    time.Time
}

type PostRepository interface {
	// UpsertPosts applies the insert-if-absent / refresh-mutable pair
	// for every post inside a single transaction. bookmarkedAt is only
	// written by the insert, so existing rows keep their original value.
	UpsertPosts(ctx context.Context, posts []Post, bookmarkedAt time.Time) error

	GetPost(ctx context.Context, id string) (*Post, error)
	GetPostCount(ctx context.Context) (int, error)
	GetUnclassified(ctx context.Context) ([]SamplePost, error)

	// GetSampleWindow returns up to limit posts ordered by creation
	// time; descending when newestFirst is set.
	GetSampleWindow(ctx context.Context, limit, offset int, newestFirst bool) ([]SamplePost, error)

	// GetThreadPosts returns locally stored posts sharing a
	// conversation, oldest first.
	GetThreadPosts(ctx context.Context, conversationID string) ([]Post, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, name, description, emoji string) (*Category, error)
	GetAll(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetAllWithCounts(ctx context.Context) ([]CategoryWithCount, error)
	GetPostCount(ctx context.Context, categoryID int64) (int, error)
	GetUnclassifiedCount(ctx context.Context) (int, error)

	// DeleteAll clears every post assignment first, then removes all
	// categories, so no post is ever left pointing at a dead id.
	DeleteAll(ctx context.Context) error
	ClearAssignments(ctx context.Context) error
	Assign(ctx context.Context, postID string, categoryID int64) error
}

type SyncStateRepository interface {
	Get(ctx context.Context) (*SyncState, error)

	// Begin atomically moves the singleton row into 'syncing' unless a
	// sync is already running; returns ErrConflict in that case.
	Begin(ctx context.Context) error
	Complete(ctx context.Context, lastSyncAt time.Time, cursor string, totalSynced int) error
	Fail(ctx context.Context, message string) error
}

type ClassificationStateRepository interface {
	Get(ctx context.Context) (*ClassificationState, error)
	Update(ctx context.Context, update ClassificationStateUpdate) error

	// Begin atomically moves the singleton row into the given status
	// unless an operation is already running; returns ErrConflict in
	// that case.
	Begin(ctx context.Context, status string, startedAt time.Time) error
}
