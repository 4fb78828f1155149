// Package models defines the shared task and plan types for stepline.
package models

// Plan is an ordered sequence of tasks executed strictly in list order.
// There is no reordering and no implicit parallelism across tasks; any
// parallelism happens inside a single task's provider.
type Plan struct {
	// Name is an optional label used for logging and persistence.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Tasks are executed in slice order.
	Tasks []*Task `json:"tasks" yaml:"tasks"`
}

// NewPlan creates a plan from the given tasks, in order.
func NewPlan(tasks ...*Task) *Plan {
	return &Plan{Tasks: tasks}
}

// Append adds tasks to the end of the plan. Tasks must be appended before
// execution begins.
func (p *Plan) Append(tasks ...*Task) {
	p.Tasks = append(p.Tasks, tasks...)
}

// Len returns the number of tasks in the plan.
func (p *Plan) Len() int {
	return len(p.Tasks)
}

// Reset returns every task to the waiting state so the plan can be re-run.
func (p *Plan) Reset() {
	for _, t := range p.Tasks {
		t.Reset()
	}
}
