package topicform

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
	"github.com/nhle/knowledge-tracker/internal/tracker"
)

// TopicCreatedMsg is dispatched when a new topic is submitted.
type TopicCreatedMsg struct {
	Input tracker.TopicInput
}

// TopicUpdatedMsg is dispatched when an existing topic is submitted.
type TopicUpdatedMsg struct {
	ID    string
	Input tracker.TopicInput
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	category    string
	mastery     string
	notes       string
}

// Model is the Bubble Tea model for the topic create/edit form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	editMode   bool
	editID     string
	categories []string
	width      int
	height     int
}

// New creates a new topic form model.
func New(categories []string, width, height int) Model {
	return Model{
		fb:         &formBindings{category: model.DefaultCategory, mastery: "0"},
		categories: categories,
		width:      width,
		height:     height,
	}
}

// StartCreate initializes the form for a new topic.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{category: model.DefaultCategory, mastery: "0"}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing topic.
func (m *Model) StartEdit(t model.Topic) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	*m.fb = formBindings{
		title:       t.Title,
		description: t.Description,
		category:    t.Category,
		mastery:     strconv.Itoa(t.Mastery),
	}
	if t.Notes != nil {
		m.fb.notes = *t.Notes
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Editing reports whether the form edits an existing topic.
func (m Model) Editing() bool { return m.editMode }

// Update handles messages for the topic form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the topic form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Topic"
	if m.editMode {
		titleText = "Edit Topic"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What did you learn?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional summary...").
				Value(&m.fb.description),
			m.categoryField(),
			huh.NewInput().
				Title("Mastery").
				Placeholder("0-100").
				Value(&m.fb.mastery).
				Validate(validateMastery),
			huh.NewText().
				Title("Notes").
				Placeholder("Optional notes...").
				Value(&m.fb.notes),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight()).WithKeyMap(keys.FormKeyMap())
}

func (m *Model) categoryField() huh.Field {
	cats := m.categories
	if m.fb.category != "" && !contains(cats, m.fb.category) {
		cats = append(append([]string{}, cats...), m.fb.category)
	}
	opts := make([]huh.Option[string], len(cats))
	for i, c := range cats {
		opts[i] = huh.NewOption(c, c)
	}
	return huh.NewSelect[string]().
		Title("Category").
		Options(opts...).
		Value(&m.fb.category)
}

func (m Model) handleSubmit() tea.Cmd {
	mastery, _ := strconv.Atoi(strings.TrimSpace(m.fb.mastery))
	in := tracker.TopicInput{
		Title:       m.fb.title,
		Description: m.fb.description,
		Category:    m.fb.category,
		Mastery:     mastery,
	}
	if notes := strings.TrimSpace(m.fb.notes); notes != "" {
		in.Notes = &notes
	}

	if m.editMode {
		id := m.editID
		return func() tea.Msg { return TopicUpdatedMsg{ID: id, Input: in} }
	}
	return func() tea.Msg { return TopicCreatedMsg{Input: in} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateMastery(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < model.MasteryMin || n > model.MasteryMax {
		return fmt.Errorf("mastery must be a number from %d to %d", model.MasteryMin, model.MasteryMax)
	}
	return nil
}
