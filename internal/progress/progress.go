// Package progress is an interactive terminal view that drives a
// sequential job one step at a time.
package progress

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrAborted is returned by Run when the user quits before the last step.
var ErrAborted = errors.New("conversion aborted")

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

// StepFunc performs step i and returns a label describing it.
type StepFunc func(i int) (label string, err error)

type stepMsg struct {
	index int
	label string
	err   error
}

// Model runs total steps in order, one per message, so the view redraws
// between steps.
type Model struct {
	total int
	step  StepFunc

	done     int
	last     string
	err      error
	paused   bool
	pending  bool
	quitting bool
	width    int

	bar progress.Model
}

// New returns a Model for total steps.
func New(total int, step StepFunc) Model {
	return Model{
		total: total,
		step:  step,
		width: 80,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),

		// Init starts the first step.
		pending: total > 0,
	}
}

func (m Model) Init() tea.Cmd {
	if m.total == 0 {
		return tea.Quit
	}
	return m.stepCmd()
}

func (m Model) stepCmd() tea.Cmd {
	i, step := m.done, m.step
	return func() tea.Msg {
		label, err := step(i)
		return stepMsg{index: i, label: label, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			m.paused = !m.paused
			if !m.paused && !m.pending && m.done < m.total {
				m.pending = true
				return m, m.stepCmd()
			}
			return m, nil

		case "q", "Q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-4, 10), 60)
		return m, nil

	case stepMsg:
		m.pending = false
		if msg.err != nil {
			m.err = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		m.done = msg.index + 1
		m.last = msg.label

		if m.done >= m.total {
			m.quitting = true
			return m, tea.Quit
		}
		if m.paused {
			return m, nil
		}
		m.pending = true
		return m, m.stepCmd()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		switch {
		case m.err != nil:
			return errorStyle.Render(fmt.Sprintf("\n  Failed: %v\n", m.err))
		case m.Completed():
			return completeStyle.Render(fmt.Sprintf("\n  Converted %d chapters.\n", m.total))
		}
		return ""
	}

	pause := ""
	if m.paused {
		pause = pausedStyle.Render(" [PAUSED]")
	}

	var sb strings.Builder
	sb.WriteString(statusStyle.Render(fmt.Sprintf("Chapter %d/%d%s", m.done, m.total, pause)))
	sb.WriteString("\n\n  ")
	sb.WriteString(m.bar.ViewAs(m.Percent()))
	sb.WriteString("\n\n")
	if m.last != "" {
		sb.WriteString(statusStyle.Render(m.last))
		sb.WriteString("\n\n")
	}
	sb.WriteString(controlsStyle.Render("SPACE: pause/resume  Q: quit"))
	return sb.String()
}

// Done returns the number of finished steps.
func (m Model) Done() int { return m.done }

// Err returns the error that stopped the run, if any.
func (m Model) Err() error { return m.err }

// Completed reports whether every step finished.
func (m Model) Completed() bool { return m.err == nil && m.done >= m.total }

// Percent is the finished fraction in [0, 1].
func (m Model) Percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

// Run drives total steps through an interactive program.
func Run(total int, step StepFunc, opts ...tea.ProgramOption) error {
	final, err := tea.NewProgram(New(total, step), opts...).Run()
	if err != nil {
		return err
	}
	m, ok := final.(Model)
	if !ok {
		return fmt.Errorf("unexpected model %T", final)
	}
	if m.err != nil {
		return m.err
	}
	if !m.Completed() {
		return ErrAborted
	}
	return nil
}
