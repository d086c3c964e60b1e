package help

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/quiz"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	ratings := []string{titleStyle.MarginTop(1).Render("Rating Scale")}
	for _, r := range quiz.Ratings {
		ratings = append(ratings, fmt.Sprintf("%s  %s",
			theme.RatingStyle(int(r.Quality)).UnsetBorderStyle().Render(r.Key+" "+r.Label),
			theme.DimmedStyle.Render(r.Description)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, helpText, lipgloss.JoinVertical(lipgloss.Left, ratings...))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
