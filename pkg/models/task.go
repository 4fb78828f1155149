package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusWaiting indicates the task has not started.
	TaskStatusWaiting TaskStatus = "waiting"
	// TaskStatusRunning indicates the task is being worked on.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusDone indicates the task completed successfully.
	TaskStatusDone TaskStatus = "done"
	// TaskStatusError indicates the task failed.
	TaskStatusError TaskStatus = "error"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusWaiting, TaskStatusRunning, TaskStatusDone, TaskStatusError:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is done or error.
// Transitions only move forward: waiting -> running -> done | error.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusDone || s == TaskStatusError
}

// TaskType identifies the capability provider responsible for a task.
// Registries resolve both the named constants and their raw string form
// to the same entry.
type TaskType string

const (
	// TaskTypeText is a plain single-completion task.
	TaskTypeText TaskType = "text"
	// TaskTypeWebSearch is a fan-out research task.
	TaskTypeWebSearch TaskType = "web_search"
	// TaskTypeSummarize condenses accumulated context.
	TaskTypeSummarize TaskType = "summarize"
	// TaskTypeTranslate rewrites accumulated context in another language.
	TaskTypeTranslate TaskType = "translate"
)

// Task represents one unit of delegated work in a plan.
type Task struct {
	// Type selects the capability provider from the registry.
	Type TaskType `json:"task_type" yaml:"type"`
	// Prompt is the instruction text for the provider.
	Prompt string `json:"prompt" yaml:"prompt"`
	// Context is static context supplied at creation time. It is never
	// mutated after creation and is distinct from the accumulated plan
	// context threaded between tasks.
	Context []string `json:"context,omitempty" yaml:"context,omitempty"`
	// Status is the current lifecycle state.
	Status TaskStatus `json:"status" yaml:"-"`
	// StartTime is set exactly once, on the waiting -> running transition.
	StartTime *time.Time `json:"start_time,omitempty" yaml:"-"`
	// EndTime is set exactly once, on the transition into done or error.
	EndTime *time.Time `json:"end_time,omitempty" yaml:"-"`
	// Results holds the provider's normalized output, or a single
	// synthesized error string on failure.
	Results []string `json:"results,omitempty" yaml:"-"`
}

// NewTask creates a waiting task with the given type, prompt, and optional
// static context.
func NewTask(taskType TaskType, prompt string, context ...string) *Task {
	return &Task{
		Type:    taskType,
		Prompt:  prompt,
		Context: context,
		Status:  TaskStatusWaiting,
	}
}

// Start transitions the task from waiting to running and records the start
// timestamp.
func (t *Task) Start(now time.Time) {
	t.Status = TaskStatusRunning
	t.StartTime = &now
}

// Complete transitions the task from running to done, recording results and
// the end timestamp.
func (t *Task) Complete(results []string, now time.Time) {
	t.Status = TaskStatusDone
	t.Results = results
	t.EndTime = &now
}

// Fail transitions the task from running to error, recording the synthesized
// error string and the end timestamp.
func (t *Task) Fail(errString string, now time.Time) {
	t.Status = TaskStatusError
	t.Results = []string{errString}
	t.EndTime = &now
}

// Reset returns the task to its pre-execution state so a plan can be re-run.
// Prior status, timestamps, and results are discarded.
func (t *Task) Reset() {
	t.Status = TaskStatusWaiting
	t.StartTime = nil
	t.EndTime = nil
	t.Results = nil
}

// Duration returns the elapsed execution time, or zero if the task has not
// reached a terminal state.
func (t *Task) Duration() time.Duration {
	if t.StartTime == nil || t.EndTime == nil {
		return 0
	}
	return t.EndTime.Sub(*t.StartTime)
}
