package cardform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// CardCreatedMsg is dispatched when a new card is submitted.
type CardCreatedMsg struct {
	TopicID  string
	Question string
	Answer   string
}

// CardUpdatedMsg is dispatched when an existing card is submitted.
type CardUpdatedMsg struct {
	ID       string
	TopicID  string
	Question string
	Answer   string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

type formBindings struct {
	topicID  string
	question string
	answer   string
}

// Model is the Bubble Tea model for the flashcard create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	topics   []model.Topic
	width    int
	height   int
}

// New creates a new card form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetTopics sets the topics offered in the topic selector.
func (m *Model) SetTopics(topics []model.Topic) {
	m.topics = topics
}

// StartCreate initializes the form for a new card, preselecting topicID.
func (m *Model) StartCreate(topicID string) tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{topicID: topicID}
	if m.fb.topicID == "" && len(m.topics) > 0 {
		m.fb.topicID = m.topics[0].ID
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing card.
func (m *Model) StartEdit(c model.Flashcard) tea.Cmd {
	m.editMode = true
	m.editID = c.ID
	*m.fb = formBindings{topicID: c.TopicID, question: c.Question, answer: c.Answer}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the card form.
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

// View renders the card form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Flashcard"
	if m.editMode {
		titleText = "Edit Flashcard"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render(titleText) + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	opts := make([]huh.Option[string], len(m.topics))
	for i, t := range m.topics {
		opts[i] = huh.NewOption(t.Title, t.ID)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Topic").
				Options(opts...).
				Value(&m.fb.topicID).
				Validate(validateRequired("Topic")),
			huh.NewText().
				Title("Question").
				Placeholder("What is...?").
				Value(&m.fb.question).
				Validate(validateRequired("Question")),
			huh.NewText().
				Title("Answer").
				Value(&m.fb.answer).
				Validate(validateRequired("Answer")),
		),
	).WithWidth(m.formWidth()).WithKeyMap(keys.FormKeyMap())
}

func (m Model) handleSubmit() tea.Cmd {
	topicID := m.fb.topicID
	q := strings.TrimSpace(m.fb.question)
	a := strings.TrimSpace(m.fb.answer)

	if m.editMode {
		id := m.editID
		return func() tea.Msg {
			return CardUpdatedMsg{ID: id, TopicID: topicID, Question: q, Answer: a}
		}
	}
	return func() tea.Msg {
		return CardCreatedMsg{TopicID: topicID, Question: q, Answer: a}
	}
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
