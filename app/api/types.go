package api

import (
	"context"
	"time"

	"github.com/serrrfirat/xmarks/app/database"
	"github.com/serrrfirat/xmarks/app/syncer"
	"github.com/serrrfirat/xmarks/app/tasks"
)

type ThreadsInterface interface {
	Get(ctx context.Context, postID string) ([]database.Post, error)
}

var _ ThreadsInterface = (*syncer.Threads)(nil)

type Handler struct {
	postRepo        database.PostRepository
	categoryRepo    database.CategoryRepository
	syncState       database.SyncStateRepository
	classifyState   database.ClassificationStateRepository
	threads         ThreadsInterface
	scheduler       tasks.TaskSchedulerInterface
	newSyncTask     func() tasks.TaskInterface
	newDiscoverTask func() tasks.TaskInterface
	newClassifyTask func() tasks.TaskInterface
}

type syncStatusResponse struct {
	LastSyncAt  *time.Time `json:"lastSyncAt"`
	LastCursor  string     `json:"lastCursor,omitempty"`
	TotalSynced int        `json:"totalSynced"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
}

type classificationStatusResponse struct {
	Status          string     `json:"status"`
	Phase           string     `json:"phase,omitempty"`
	ProgressCurrent int        `json:"progressCurrent"`
	ProgressTotal   int        `json:"progressTotal"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	StartedAt       *time.Time `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt"`
}

type topicResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Emoji       string    `json:"emoji,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	PostCount   int       `json:"postCount"`
}

type threadPostResponse struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	AuthorName   string    `json:"authorName"`
	AuthorHandle string    `json:"authorHandle"`
	CreatedAt    time.Time `json:"createdAt"`
	InReplyToID  string    `json:"inReplyToId,omitempty"`
	URL          string    `json:"url"`
}
