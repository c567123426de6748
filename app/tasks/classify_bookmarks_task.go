package tasks

import (
	"context"
	"fmt"

	"github.com/serrrfirat/xmarks/app/classify"
)

type ClassifyBookmarksTask struct {
	Task
	classifier *classify.Classifier
}

func NewClassifyBookmarksTask(classifier *classify.Classifier) *ClassifyBookmarksTask {
	return &ClassifyBookmarksTask{
		Task:       NewTask(TaskTypeClassifyBookmarks),
		classifier: classifier,
	}
}

func (t *ClassifyBookmarksTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.classifier.ClassifyBookmarks(ctx); err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	return nil
}
