package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/theme"
)

// CommandMsg is emitted when the user executes a command. Name is the
// first word, Args the rest of the line.
type CommandMsg struct {
	Name string
	Args string
}

// Command describes one palette entry.
type Command struct {
	Name        string
	Description string
}

// Commands lists the commands understood by the application.
var Commands = []Command{
	{"dashboard", "show statistics"},
	{"topics", "show the topic list"},
	{"quiz", "start a quiz with due cards"},
	{"quiz-all", "start a quiz with every card"},
	{"new", "create a topic"},
	{"card", "add a card to the selected topic"},
	{"category", "filter topics by category (empty clears)"},
	{"clear", "clear topic filters"},
	{"export", "write a JSON backup to the given path"},
	{"import", "import cards from an .xlsx/.csv path"},
	{"restore", "replace all data from a JSON backup path"},
	{"reload", "reload data from the database"},
	{"settings", "edit quiz, reminder and theme settings"},
	{"quit", "exit"},
}

// Parse splits a command line into a CommandMsg.
func Parse(line string) CommandMsg {
	line = strings.TrimSpace(line)
	name, args, _ := strings.Cut(line, " ")
	return CommandMsg{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.Focus()
	ti.Width = width - 6

	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = c.Name
	}
	ti.SetSuggestions(names)

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line != "" {
				return m, func() tea.Msg {
					return Parse(line)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue).Width(12)
	var rows []string
	for _, c := range Commands {
		rows = append(rows, fmt.Sprintf("%s %s",
			nameStyle.Render(c.Name), theme.DimmedStyle.Render(c.Description)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, input, "", strings.Join(rows, "\n"))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
