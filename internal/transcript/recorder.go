package transcript

import (
	"log"

	"github.com/calebhart/stepline/pkg/models"
)

// Recorder adapts a Store into an executor observer for one run. Recording
// failures are logged and swallowed so persistence can never fail a plan.
type Recorder struct {
	store *Store
	runID string
}

// NewRecorder begins a run and returns an observer that records into it.
func NewRecorder(store *Store, planName string, haltOnError bool) (*Recorder, error) {
	runID, err := store.BeginRun(planName, haltOnError)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, runID: runID}, nil
}

// RunID returns the transcript run identifier.
func (r *Recorder) RunID() string {
	return r.runID
}

// OnTaskStart records the task's running state.
func (r *Recorder) OnTaskStart(index int, task *models.Task) {
	if err := r.store.RecordTask(r.runID, index, task); err != nil {
		log.Printf("[transcript] record task start: %v", err)
	}
}

// OnTaskDone records the task's terminal state and results.
func (r *Recorder) OnTaskDone(index int, task *models.Task) {
	if err := r.store.RecordTask(r.runID, index, task); err != nil {
		log.Printf("[transcript] record task done: %v", err)
	}
}

// Finish marks the run with its terminal status.
func (r *Recorder) Finish(status string) {
	if err := r.store.FinishRun(r.runID, status); err != nil {
		log.Printf("[transcript] finish run: %v", err)
	}
}
