package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/vivarium/internal/health"
	"github.com/firefly-engineering/vivarium/internal/registry"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionStatus
	ActionStart
	ActionStop
	ActionTeardown
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionStatus:
		return "status"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionTeardown:
		return "teardown"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// Entry is one project shown by the picker.
type Entry struct {
	Claim *registry.Claim
	// Status is empty when the project's config could not be loaded.
	Status health.Status
}

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Entry  *Entry
}

type projectItem struct {
	entry *Entry
}

func (i projectItem) Title() string {
	return i.entry.Claim.ProjectName
}

func (i projectItem) Description() string {
	c := i.entry.Claim
	return fmt.Sprintf("%s index %d | pg %d | redis %d | s3 %d | %s",
		statusIcon(i.entry.Status),
		c.Index,
		c.Ports.Postgres,
		c.Ports.Redis,
		c.Ports.S3,
		truncatePath(c.ProjectRoot, 30),
	)
}

func (i projectItem) FilterValue() string {
	return i.entry.Claim.ProjectName
}

func statusIcon(status health.Status) string {
	switch status {
	case health.StatusHealthy:
		return "✓"
	case health.StatusUnhealthy:
		return "⚠"
	case health.StatusStopped:
		return "●"
	default:
		return "?"
	}
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the project picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new project picker
func NewPicker(entries []*Entry) Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = projectItem{entry: e}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 80, 20)
	l.Title = "vivarium - Select Project"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

var selectionKeys = map[string]Action{
	"enter": ActionStatus,
	"s":     ActionStart,
	"x":     ActionStop,
	"d":     ActionTeardown,
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		key := msg.String()
		if action, ok := selectionKeys[key]; ok {
			if item, ok := m.list.SelectedItem().(projectItem); ok {
				m.result = PickerResult{Action: action, Entry: item.entry}
				m.quitting = true
				return m, tea.Quit
			}
			break
		}
		if key == "q" || key == "esc" {
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Status  [s] Start  [x] Stop  [d] Teardown  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive project picker
func RunPicker(entries []*Entry) (PickerResult, error) {
	if len(entries) == 0 {
		return PickerResult{Action: ActionQuit}, nil
	}

	m := NewPicker(entries)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive picker that just lists projects
func SimplePicker(entries []*Entry) string {
	var sb strings.Builder

	sb.WriteString("vivarium - Projects\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(entries) == 0 {
		sb.WriteString("No projects set up.\n")
		sb.WriteString("Run `vivarium setup` in a project directory.\n")
		return sb.String()
	}

	for i, e := range entries {
		c := e.Claim
		fmt.Fprintf(&sb, "%d. %s %s (index %d)\n", i+1, statusIcon(e.Status), c.ProjectName, c.Index)
		fmt.Fprintf(&sb, "   Postgres: %d | Redis: %d | S3: %d | Root: %s\n\n",
			c.Ports.Postgres, c.Ports.Redis, c.Ports.S3, truncatePath(c.ProjectRoot, 40))
	}

	return sb.String()
}
