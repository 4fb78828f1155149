// Package executor owns the plan/task state machine. It runs tasks strictly
// in plan order, threads accumulated context forward, and applies the
// halt-or-continue error policy.
package executor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/calebhart/stepline/internal/capability"
	"github.com/calebhart/stepline/pkg/models"
)

// taskErrorPrefix is the exact format callers pattern-match on. It must not
// change: ExecuteTask and downstream consumers depend on this prefix.
const taskErrorPrefix = "Task error: "

// FormatTaskError renders a provider failure in the exact error-string form
// recorded into a failed task's results.
func FormatTaskError(err error) string {
	return taskErrorPrefix + err.Error()
}

// Observer receives task lifecycle notifications. Hooks are observability
// only and never affect control flow.
type Observer interface {
	// OnTaskStart fires after the waiting -> running transition.
	OnTaskStart(index int, task *models.Task)
	// OnTaskDone fires after the task reaches a terminal state.
	OnTaskDone(index int, task *models.Task)
}

// Gate is consulted before each task starts. A non-nil error stops the plan
// before the task leaves the waiting state. Implementations that block, such
// as a pause gate, must honor ctx cancellation.
type Gate interface {
	Check(ctx context.Context) error
}

// Executor executes plans against a per-call capability registry.
type Executor struct {
	haltOnError bool
	taskTimeout time.Duration
	observers   []Observer
	gate        Gate
}

// Option configures an Executor.
type Option func(*Executor)

// WithContinueOnError folds task failures into forward context instead of
// halting the plan.
func WithContinueOnError() Option {
	return func(e *Executor) { e.haltOnError = false }
}

// WithTaskTimeout routes every provider call through the bridge with the
// given per-task deadline. Zero means no deadline: a hung provider hangs
// the whole plan.
func WithTaskTimeout(d time.Duration) Option {
	return func(e *Executor) { e.taskTimeout = d }
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observers = append(e.observers, o) }
}

// WithGate installs a pre-task gate, such as a stop-signal watcher.
func WithGate(g Gate) Option {
	return func(e *Executor) { e.gate = g }
}

// New creates an Executor. The default policy halts on the first failure.
func New(opts ...Option) *Executor {
	e := &Executor{haltOnError: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every task in plan order and returns the concatenation, in
// order, of each executed task's contribution.
//
// Per task: the provider is resolved before any state mutation (a missing
// registry entry is a configuration error and the task stays waiting), the
// task transitions waiting -> running, the provider is invoked with the
// task's prompt and the accumulated context, and the normalized result (or
// the synthesized "Task error: ..." string on failure) is appended to both
// the output and the accumulated context.
//
// When halting on error, the provider's original error is returned unchanged
// and the remaining tasks never leave the waiting state. When continuing,
// no error escapes: failures are visible only through task status, results,
// and the synthesized strings in the returned sequence.
func (e *Executor) Execute(ctx context.Context, plan *models.Plan, registry capability.Registry) ([]string, error) {
	var output []string
	var accumulated []string

	for i, task := range plan.Tasks {
		if e.gate != nil {
			if err := e.gate.Check(ctx); err != nil {
				return output, err
			}
		}
		if err := ctx.Err(); err != nil {
			return output, err
		}

		provider, err := registry.Resolve(task.Type)
		if err != nil {
			return output, err
		}
		if e.taskTimeout > 0 {
			provider = capability.WithTimeout(provider, e.taskTimeout)
		}

		task.Start(time.Now())
		e.notifyStart(i, task)

		taskContext := append(append([]string{}, task.Context...), accumulated...)
		raw, invokeErr := provider.Invoke(ctx, task.Prompt, taskContext)

		if invokeErr != nil {
			errString := FormatTaskError(invokeErr)
			task.Fail(errString, time.Now())
			e.notifyDone(i, task)
			log.Printf("[executor] task %d (%s) failed: %v", i, task.Type, invokeErr)

			output = append(output, errString)
			accumulated = append(accumulated, errString)

			if e.haltOnError {
				return output, invokeErr
			}
			continue
		}

		results := models.NormalizeResults(raw)
		task.Complete(results, time.Now())
		e.notifyDone(i, task)

		output = append(output, results...)
		accumulated = append(accumulated, results...)
	}

	return output, nil
}

// ExecuteTask runs a single task with the given provider: it builds a
// one-task plan and a one-entry registry keyed by the task's type, and
// always halts on error. If the task fails with a recorded
// "Task error: <message>" string, the provider's message is extracted and
// returned standalone; any other recorded failure is returned whole.
func (e *Executor) ExecuteTask(ctx context.Context, task *models.Task, provider capability.Provider) ([]string, error) {
	plan := models.NewPlan(task)
	registry := capability.Registry{task.Type: provider}

	single := New(
		WithTaskTimeout(e.taskTimeout),
		WithObserver(multiObserver(e.observers)),
	)
	if e.gate != nil {
		single.gate = e.gate
	}

	output, err := single.Execute(ctx, plan, registry)
	if task.Status != models.TaskStatusError {
		return output, err
	}

	recorded := "Task execution failed"
	if len(task.Results) > 0 {
		recorded = task.Results[0]
	}
	if strings.Contains(recorded, taskErrorPrefix) {
		msg := strings.Trim(strings.Replace(recorded, taskErrorPrefix, "", 1), `"`)
		return output, fmt.Errorf("%s", msg)
	}
	return output, fmt.Errorf("%s", recorded)
}

func (e *Executor) notifyStart(index int, task *models.Task) {
	for _, o := range e.observers {
		o.OnTaskStart(index, task)
	}
}

func (e *Executor) notifyDone(index int, task *models.Task) {
	for _, o := range e.observers {
		o.OnTaskDone(index, task)
	}
}

// multiObserver fans lifecycle notifications out to a set of observers.
type multiObserver []Observer

func (m multiObserver) OnTaskStart(index int, task *models.Task) {
	for _, o := range m {
		o.OnTaskStart(index, task)
	}
}

func (m multiObserver) OnTaskDone(index int, task *models.Task) {
	for _, o := range m {
		o.OnTaskDone(index, task)
	}
}
