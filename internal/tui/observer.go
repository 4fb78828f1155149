package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/calebhart/stepline/pkg/models"
)

// Observer forwards executor lifecycle notifications into a running
// bubbletea program.
type Observer struct {
	program *tea.Program
}

// NewObserver creates an observer bound to the given program.
func NewObserver(program *tea.Program) *Observer {
	return &Observer{program: program}
}

// OnTaskStart implements the executor observer.
func (o *Observer) OnTaskStart(index int, task *models.Task) {
	o.program.Send(TaskMsg{Index: index, Status: task.Status})
}

// OnTaskDone implements the executor observer.
func (o *Observer) OnTaskDone(index int, task *models.Task) {
	o.program.Send(TaskMsg{Index: index, Status: task.Status})
}

// Finish signals the end of the run to the view.
func (o *Observer) Finish(err error) {
	o.program.Send(DoneMsg{Err: err})
}
