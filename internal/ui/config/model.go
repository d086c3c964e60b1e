package config

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// ConfigSavedMsg is dispatched when the user submits the settings form.
// Config is a full copy; the parent persists it.
type ConfigSavedMsg struct {
	Config model.AppConfig
}

// ConfigDoneMsg is dispatched when the user leaves without saving.
type ConfigDoneMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	mode            string
	reminderEnabled bool
	reminderHour    string
	theme           string
	categories      string
}

// Model is the settings view.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	base   model.AppConfig
	width  int
	height int
}

// New creates a settings view.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start fills the form from cfg.
func (m *Model) Start(cfg model.AppConfig) tea.Cmd {
	m.base = cfg
	*m.fb = formBindings{
		mode:            cfg.Quiz.DefaultMode,
		reminderEnabled: cfg.Reminder.Enabled,
		reminderHour:    strconv.Itoa(cfg.Reminder.Hour),
		theme:           cfg.Display.Theme,
		categories:      strings.Join(cfg.Categories, ", "),
	}
	if m.fb.theme == "" {
		m.fb.theme = theme.Default
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg := m.Result()
		return m, func() tea.Msg { return ConfigSavedMsg{Config: cfg} }
	case huh.StateAborted:
		return m, func() tea.Msg { return ConfigDoneMsg{} }
	}
	return m, cmd
}

// Result merges the form values into the configuration passed to Start.
func (m Model) Result() model.AppConfig {
	cfg := m.base
	cfg.Quiz.DefaultMode = m.fb.mode
	cfg.Reminder.Enabled = m.fb.reminderEnabled
	if h, err := strconv.Atoi(strings.TrimSpace(m.fb.reminderHour)); err == nil {
		cfg.Reminder.Hour = h
	}
	cfg.Display.Theme = m.fb.theme

	cfg.Categories = nil
	for _, c := range strings.Split(m.fb.categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cfg.Categories = append(cfg.Categories, c)
		}
	}
	return cfg
}

// View renders the settings view.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	note := theme.DimmedStyle.Render(
		"Reminder and category changes apply on the next start.")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render("Settings") + "\n" + m.form.View() + "\n" + note)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	w := min(max(m.width-4, 40), 100)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Quiz starts with").
				Options(
					huh.NewOption("Cards due today", model.QuizModeDue),
					huh.NewOption("All cards", model.QuizModeAll),
				).
				Value(&m.fb.mode),
			huh.NewConfirm().
				Title("Daily reminder").
				Affirmative("On").
				Negative("Off").
				Value(&m.fb.reminderEnabled),
			huh.NewInput().
				Title("Reminder hour").
				Placeholder("0-23").
				Value(&m.fb.reminderHour).
				Validate(validateHour),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Follow terminal", theme.Default),
					huh.NewOption("Dark", theme.Dark),
					huh.NewOption("Light", theme.Light),
				).
				Value(&m.fb.theme),
			huh.NewInput().
				Title("Extra categories").
				Placeholder("comma separated, e.g. Robotics, Statistics").
				Value(&m.fb.categories),
		),
	).WithWidth(w).WithKeyMap(keys.FormKeyMap())
}

func validateHour(s string) error {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || h < 0 || h > 23 {
		return fmt.Errorf("hour must be a number from 0 to 23")
	}
	return nil
}
