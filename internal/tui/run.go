// Package tui renders a live view of a plan run in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calebhart/stepline/pkg/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	waitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC857"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#96E6A1"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// TaskMsg reports a task lifecycle change.
type TaskMsg struct {
	// Index is the task's position in the plan.
	Index int
	// Status is the task's new state.
	Status models.TaskStatus
}

// DoneMsg reports the end of the run.
type DoneMsg struct {
	// Err is the run error, nil on success.
	Err error
}

// Model is the bubbletea model for a plan run.
type Model struct {
	planName string
	tasks    []taskRow
	spinner  spinner.Model
	done     bool
	err      error
}

type taskRow struct {
	taskType string
	prompt   string
	status   models.TaskStatus
}

// NewModel creates a run view for the given plan.
func NewModel(plan *models.Plan) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle

	rows := make([]taskRow, len(plan.Tasks))
	for i, t := range plan.Tasks {
		rows[i] = taskRow{
			taskType: string(t.Type),
			prompt:   truncate(t.Prompt, 60),
			status:   t.Status,
		}
	}

	name := plan.Name
	if name == "" {
		name = "plan"
	}

	return Model{
		planName: name,
		tasks:    rows,
		spinner:  s,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case TaskMsg:
		if msg.Index >= 0 && msg.Index < len(m.tasks) {
			m.tasks[msg.Index].status = msg.Status
		}
		return m, nil
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("stepline: %s", m.planName)))
	sb.WriteString("\n\n")

	for _, row := range m.tasks {
		var marker string
		switch row.status {
		case models.TaskStatusRunning:
			marker = m.spinner.View()
		case models.TaskStatusDone:
			marker = doneStyle.Render("✓")
		case models.TaskStatusError:
			marker = errorStyle.Render("✗")
		default:
			marker = waitingStyle.Render("•")
		}

		line := fmt.Sprintf("%s %s %s",
			marker,
			statusStyle(row.status).Render(fmt.Sprintf("%-12s", row.taskType)),
			promptStyle.Render(row.prompt),
		)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if m.done {
		sb.WriteString("\n")
		if m.err != nil {
			sb.WriteString(errorStyle.Render(fmt.Sprintf("run failed: %v", m.err)))
		} else {
			sb.WriteString(doneStyle.Render("run complete"))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func statusStyle(s models.TaskStatus) lipgloss.Style {
	switch s {
	case models.TaskStatusRunning:
		return runningStyle
	case models.TaskStatusDone:
		return doneStyle
	case models.TaskStatusError:
		return errorStyle
	default:
		return waitingStyle
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
