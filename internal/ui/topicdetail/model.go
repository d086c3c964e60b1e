package topicdetail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/srs"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// BackMsg signals the parent to navigate back to the topic list.
type BackMsg struct{}

// EditTopicMsg asks the parent to open the topic form.
type EditTopicMsg struct{ TopicID string }

// DeleteTopicMsg asks the parent to confirm and delete the topic.
type DeleteTopicMsg struct{ TopicID string }

// AddCardMsg asks the parent to open the card form for a new card.
type AddCardMsg struct{ TopicID string }

// EditCardMsg asks the parent to open the card form for card.
type EditCardMsg struct{ Card model.Flashcard }

// DeleteCardMsg asks the parent to delete a card.
type DeleteCardMsg struct{ CardID string }

// Model is the topic detail view: topic metadata, notes and its cards.
type Model struct {
	topic    *model.Topic
	cards    []model.Flashcard
	cursor   int
	now      time.Time
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetTopic replaces the displayed topic and cards. The card cursor is
// kept when possible.
func (m *Model) SetTopic(topic model.Topic, cards []model.Flashcard, now time.Time) {
	same := m.topic != nil && m.topic.ID == topic.ID
	m.topic = &topic
	m.cards = cards
	m.now = now
	if !same {
		m.cursor = 0
		m.viewport.GotoTop()
	}
	if m.cursor >= len(cards) {
		m.cursor = max(len(cards)-1, 0)
	}
	m.viewport.SetContent(m.renderContent())
}

// Clear drops the displayed topic.
func (m *Model) Clear() {
	m.topic = nil
	m.cards = nil
	m.cursor = 0
}

// TopicID returns the displayed topic's ID, or "".
func (m Model) TopicID() string {
	if m.topic == nil {
		return ""
	}
	return m.topic.ID
}

// SelectedCard returns the card under the cursor.
func (m Model) SelectedCard() (model.Flashcard, bool) {
	if m.cursor < 0 || m.cursor >= len(m.cards) {
		return model.Flashcard{}, false
	}
	return m.cards[m.cursor], true
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.topic == nil {
		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
		return m, nil
	}
	id := m.topic.ID

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.cards)-1 {
				m.cursor++
				m.viewport.SetContent(m.renderContent())
				m.viewport.LineDown(1)
			}
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.viewport.SetContent(m.renderContent())
				m.viewport.LineUp(1)
			}
			return m, nil

		case key.Matches(msg, m.keys.Edit):
			return m, func() tea.Msg { return EditTopicMsg{TopicID: id} }

		case key.Matches(msg, m.keys.Delete):
			return m, func() tea.Msg { return DeleteTopicMsg{TopicID: id} }

		case key.Matches(msg, m.keys.AddCard):
			return m, func() tea.Msg { return AddCardMsg{TopicID: id} }

		case key.Matches(msg, m.keys.EditCard):
			if card, ok := m.SelectedCard(); ok {
				return m, func() tea.Msg { return EditCardMsg{Card: card} }
			}
			return m, nil

		case key.Matches(msg, m.keys.DeleteCard):
			if card, ok := m.SelectedCard(); ok {
				return m, func() tea.Msg { return DeleteCardMsg{CardID: card.ID} }
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.topic == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No topic selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.topic == nil {
		return ""
	}

	t := m.topic
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(t.Title))

	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.CategoryStyle(t.Category).Render(t.Category),
		"  ",
		theme.MasteryBar(t.Mastery, 20),
		" ",
		theme.MasteryStyle(t.Mastery).Render(fmt.Sprintf("%d%% mastery", t.Mastery)),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("Added:"),
		valStyle.Render(t.DateAdded.Local().Format("Jan 2, 2006")),
	))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)

	sections = append(sections, "", separator, "", headerStyle.Render("Description"))
	if t.Description != "" {
		sections = append(sections, t.Description)
	} else {
		sections = append(sections, emptyStyle.Render("No description"))
	}

	if t.Notes != nil {
		sections = append(sections, "", headerStyle.Render("Notes"), *t.Notes)
	}

	sections = append(sections, "", separator, "")
	sections = append(sections, headerStyle.Render(fmt.Sprintf("Flashcards (%d)", len(m.cards))))

	if len(m.cards) == 0 {
		sections = append(sections, emptyStyle.Render("No flashcards yet. Press a to add one."))
	}

	for i, c := range m.cards {
		sections = append(sections, m.renderCard(c, i == m.cursor))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderCard(c model.Flashcard, selected bool) string {
	sched := theme.DimmedStyle.Render(fmt.Sprintf(
		"EF %.2f · every %dd · %s",
		c.EaseFactor, c.Interval, dueLabel(c, m.now)))

	q := c.Question
	if srs.IsDue(c, m.now) {
		q = lipgloss.NewStyle().Foreground(theme.ColorOrange).Render("● ") + q
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		q,
		theme.DimmedStyle.Render("→ "+c.Answer),
		sched,
	)

	if selected {
		return theme.SelectedItemStyle.Render(body)
	}
	return theme.ListItemStyle.Render(body)
}

// dueLabel describes when c is next due relative to now.
func dueLabel(c model.Flashcard, now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	if srs.IsDue(c, now) {
		return "due now"
	}
	next := c.NextReview.In(now.Location())
	days := int(time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC).
		Sub(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)).Hours() / 24)
	if days == 1 {
		return "due tomorrow"
	}
	return fmt.Sprintf("due in %d days", days)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.topic != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
