package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/keys"
)

// ResultMsg carries the user's answer. Action is the value passed to Ask.
type ResultMsg struct {
	Action    any
	Confirmed bool
}

// Model is a yes/no prompt used before destructive actions.
type Model struct {
	form   *huh.Form
	ok     *bool
	action any
	width  int
}

// New creates a confirm prompt.
func New(width int) Model {
	return Model{ok: new(bool), width: width}
}

// Ask shows title and remembers action until the user answers.
func (m *Model) Ask(title, description string, action any) tea.Cmd {
	*m.ok = false
	m.action = action
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.ok),
		),
	).WithWidth(min(max(m.width-4, 40), 80)).WithKeyMap(keys.FormKeyMap())
	return m.form.Init()
}

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	action := m.action
	switch m.form.State {
	case huh.StateCompleted:
		confirmed := *m.ok
		m.form = nil
		return m, func() tea.Msg { return ResultMsg{Action: action, Confirmed: confirmed} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return ResultMsg{Action: action} }
	}
	return m, cmd
}

// View renders the prompt.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
}

// SetSize updates the prompt width.
func (m *Model) SetSize(width, _ int) {
	m.width = width
}
