package database

import (
	"errors"
	"time"
)

// Post IDs are X snowflake IDs. They exceed the 53-bit float-safe
// integer range, so they are carried as opaque strings end to end.
type Post struct {
	ID             string
	Text           string
	AuthorID       string
	AuthorName     string
	AuthorHandle   string
	CreatedAt      time.Time
	BookmarkedAt   *time.Time // set on first sight, never overwritten
	FetchedAt      time.Time
	ReplyCount     int
	RetweetCount   int
	LikeCount      int
	InReplyToID    string
	ConversationID string
	IsThread       bool
	MediaJSON      string // serialized media descriptor list
	QuotedPostID   string
	URL            string
	RawJSON        string
	CategoryID     *int64
	ClassifiedAt   *time.Time
}

type Category struct {
	ID          int64
	Name        string
	Description string
	Emoji       string
	CreatedAt   time.Time
}

type CategoryWithCount struct {
	Category
	PostCount int
}

const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusError   = "error"
)

// SyncState is the singleton (id=1) sync bookkeeping row. Written only
// by the sync orchestrator, read by polling clients.
type SyncState struct {
	LastSyncAt   *time.Time
	LastCursor   string
	TotalSynced  int
	Status       string
	ErrorMessage string
}

const (
	ClassificationStatusIdle        = "idle"
	ClassificationStatusDiscovering = "discovering"
	ClassificationStatusClassifying = "classifying"
	ClassificationStatusError       = "error"
)

// ClassificationState is the singleton (id=1) classification
// bookkeeping row. Written only by the classification orchestrator.
type ClassificationState struct {
	Status          string
	Phase           string
	ProgressCurrent int
	ProgressTotal   int
	ErrorMessage    string
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// ClassificationStateUpdate carries only the fields a caller intends
// to change. Nil fields are left untouched; an update with no fields
// set is a silent no-op.
type ClassificationStateUpdate struct {
	Status          *string
	Phase           *string
	ProgressCurrent *int
	ProgressTotal   *int
	ErrorMessage    *string
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// ErrConflict is returned by the single-flight guards when an
// operation is already running.
var ErrConflict = errors.New("operation already running")
