package tasks

import (
	"context"
	"fmt"

	"github.com/serrrfirat/xmarks/app/syncer"
)

type SyncBookmarksTask struct {
	Task
	syncer *syncer.Syncer
}

func NewSyncBookmarksTask(s *syncer.Syncer) *SyncBookmarksTask {
	return &SyncBookmarksTask{
		Task:   NewTask(TaskTypeSyncBookmarks),
		syncer: s,
	}
}

func (t *SyncBookmarksTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, err := t.syncer.Run(ctx); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	return nil
}
