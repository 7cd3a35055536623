package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

// AppState represents the current state of the browser.
type AppState int

const (
	StateBrowse AppState = iota
	StateConfirm
	StateDone
)

// Options configures the browser.
type Options struct {
	Report *engine.Report

	// AllowApply enables queuing pending records for apply with Enter.
	AllowApply bool
}

// Result is what the user decided when the browser exited.
type Result struct {
	// Apply is true when the user confirmed applying Selected.
	Apply    bool
	Selected []trace.Record
}

// Model is the Bubble Tea model of the browser.
type Model struct {
	state   AppState
	results ResultModel
	options Options
	result  Result

	confirmFocused int // 0 = cancel, 1 = apply

	width  int
	height int
}

// NewModel creates a browser for opts.Report.
func NewModel(opts Options) Model {
	return Model{
		state:   StateBrowse,
		results: NewResultModel(opts.Report),
		options: opts,
		width:   80,
		height:  24,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetDimensions(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.state = StateDone
		return m, tea.Quit
	}

	switch m.state {
	case StateConfirm:
		switch key {
		case "left", "right", "tab", "h", "l":
			m.confirmFocused = 1 - m.confirmFocused
		case "y":
			return m.finish(true)
		case "n", "esc", "q":
			m.state = StateBrowse
			m.confirmFocused = 0
		case "enter":
			if m.confirmFocused == 1 {
				return m.finish(true)
			}
			m.state = StateBrowse
		}
		return m, nil

	case StateBrowse:
		switch key {
		case "q", "esc":
			return m.finish(false)
		case "enter":
			if m.options.AllowApply && m.results.SelectedCount() > 0 {
				m.state = StateConfirm
				m.confirmFocused = 0
			}
			return m, nil
		}
		m.results.HandleKey(key)
	}
	return m, nil
}

func (m Model) finish(apply bool) (tea.Model, tea.Cmd) {
	m.state = StateDone
	m.result = Result{Apply: apply}
	if apply {
		m.result.Selected = m.results.SelectedRecords()
	}
	return m, tea.Quit
}

// State returns the current state.
func (m Model) State() AppState {
	return m.state
}

// Result returns the user's decision. It is meaningful once State is
// StateDone.
func (m Model) Result() Result {
	return m.result
}

// View renders the model.
func (m Model) View() string {
	switch m.state {
	case StateDone:
		return ""
	case StateConfirm:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderConfirmDialog())
	default:
		return m.results.View()
	}
}

func (m Model) renderConfirmDialog() string {
	n := m.results.SelectedCount()
	noun := "file"
	if n != 1 {
		noun = "files"
	}

	cancel := inactiveButton.Render("Cancel")
	apply := inactiveButton.Render("Apply")
	if m.confirmFocused == 0 {
		cancel = activeButton.Render("Cancel")
	} else {
		apply = activeButton.Render("Apply")
	}

	content := strings.Join([]string{
		dialogTitleStyle.Render("Apply changes?"),
		"",
		fmt.Sprintf("Rename %d %s under", n, noun),
		truncatePath(m.options.Report.WebRoot, 44),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cancel, apply),
	}, "\n")
	return dialogBoxStyle.Render(content)
}

var (
	activeButton = lipgloss.NewStyle().
			Padding(0, 2).
			Margin(0, 1).
			Background(warningColor).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	inactiveButton = lipgloss.NewStyle().
			Padding(0, 2).
			Margin(0, 1).
			Background(borderColor).
			Foreground(lipgloss.Color("#CCCCCC"))
)

// Run starts the browser and blocks until the user quits.
func Run(opts Options) (Result, error) {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	if fm, ok := final.(Model); ok {
		return fm.Result(), nil
	}
	return Result{}, nil
}
