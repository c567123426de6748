package tasks

// TaskSchedulerInterface defines the interface for background task
// execution. The API layer enqueues work here and acknowledges the
// caller immediately; progress is observed through the persisted
// state rows, not through the scheduler.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
