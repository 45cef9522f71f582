package domain

import "context"

// ExecutableTask is a unit of work runnable by a ParallelExecutor
type ExecutableTask interface {
	// Name returns a human-readable task name for error reporting
	Name() string

	// IsEnabled reports whether the task should run at all
	IsEnabled() bool

	// Execute runs the task and returns its result
	Execute(ctx context.Context) (interface{}, error)
}

// ParallelExecutor runs independent tasks with bounded concurrency
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
}

// TaskProgress tracks progress of a single long-running task
type TaskProgress interface {
	// Increment adds n to the current progress
	Increment(n int)

	// Describe updates the current item description
	Describe(description string)

	// Complete marks the task as finished
	Complete()
}

// ProgressManager creates progress trackers for long-running operations
type ProgressManager interface {
	// StartTask creates a new progress task with a description and total count
	StartTask(description string, total int) TaskProgress

	// IsInteractive returns true if progress output is shown
	IsInteractive() bool

	// Close cleans up all tasks
	Close()
}
