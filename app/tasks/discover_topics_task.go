package tasks

import (
	"context"
	"fmt"

	"github.com/serrrfirat/xmarks/app/classify"
)

type DiscoverTopicsTask struct {
	Task
	classifier *classify.Classifier
}

func NewDiscoverTopicsTask(classifier *classify.Classifier) *DiscoverTopicsTask {
	return &DiscoverTopicsTask{
		Task:       NewTask(TaskTypeDiscoverTopics),
		classifier: classifier,
	}
}

func (t *DiscoverTopicsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.classifier.DiscoverTopics(ctx); err != nil {
		return fmt.Errorf("topic discovery failed: %w", err)
	}

	return nil
}
