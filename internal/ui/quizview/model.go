package quizview

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/quiz"
	"github.com/nhle/knowledge-tracker/internal/srs"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// RatedMsg is sent after a card is rated. The parent persists Card.
type RatedMsg struct {
	Card    model.Flashcard
	Quality srs.Quality
}

// Source supplies decks and lookups to the quiz view.
type Source interface {
	Deck(mode quiz.Mode) []model.Flashcard
	Flashcards() []model.Flashcard
	DueCount() int
	TopicTitle(id string) string
	Now() time.Time
}

// Model is the quiz view. The session lives on the heap so copies of the
// model share one run.
type Model struct {
	session *quiz.Session
	src     Source
	keys    *keys.KeyMap
	width   int
	height  int
}

// New creates a quiz view in mode. Call Start to build the first deck.
func New(k *keys.KeyMap, src Source, mode quiz.Mode, width, height int) Model {
	return Model{
		session: quiz.NewSession(mode),
		src:     src,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Start snapshots a fresh deck for the current mode.
func (m *Model) Start() {
	m.start(m.session.Mode())
}

// StartMode switches to mode and snapshots a fresh deck.
func (m *Model) StartMode(mode quiz.Mode) {
	m.start(mode)
}

func (m *Model) start(mode quiz.Mode) {
	err := m.session.SwitchMode(mode, m.src.Deck(mode))
	if err != nil && !errors.Is(err, quiz.ErrEmptyDeck) {
		log.Printf("quiz: start %s: %v", mode, err)
	}
}

// Active reports whether a card is on screen.
func (m Model) Active() bool {
	p := m.session.Phase()
	return p == quiz.PhasePresenting || p == quiz.PhaseFlipped
}

// Session exposes the underlying session.
func (m Model) Session() *quiz.Session { return m.session }

// Update handles messages for the quiz view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Flip):
		m.session.Flip()
		return m, nil

	case key.Matches(km, m.keys.ToggleMode):
		next := quiz.ModeAll
		if m.session.Mode() == quiz.ModeAll {
			next = quiz.ModeDue
		}
		m.start(next)
		return m, nil

	case key.Matches(km, m.keys.Restart):
		if !m.Active() {
			m.start(m.session.Mode())
		}
		return m, nil
	}

	if r, ok := quiz.RatingForKey(km.String()); ok && m.session.Flipped() {
		updated, err := m.session.Rate(r.Quality, m.src.Now())
		if err != nil {
			log.Printf("quiz: rate: %v", err)
			return m, nil
		}
		q := r.Quality
		return m, func() tea.Msg { return RatedMsg{Card: updated, Quality: q} }
	}

	return m, nil
}

// View renders the quiz view.
func (m Model) View() string {
	sections := []string{m.renderModeBar(), ""}

	switch m.session.Phase() {
	case quiz.PhaseIdle:
		sections = append(sections, m.renderEmpty())
	case quiz.PhaseCompleted:
		sections = append(sections, m.renderCompleted())
	default:
		sections = append(sections, m.renderCard()...)
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderModeBar() string {
	due := fmt.Sprintf("Due (%d)", m.src.DueCount())
	all := fmt.Sprintf("All (%d)", len(m.src.Flashcards()))
	if m.session.Mode() == quiz.ModeDue {
		return theme.ActiveTabStyle.Render(due) + theme.TabStyle.Render(all)
	}
	return theme.TabStyle.Render(due) + theme.ActiveTabStyle.Render(all)
}

func (m Model) renderEmpty() string {
	total := len(m.src.Flashcards())
	if total == 0 {
		return theme.HelpStyle.Render(
			"No flashcards yet.\n\nOpen a topic and press a to add cards to review.")
	}
	if m.session.Mode() == quiz.ModeDue {
		title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).
			Render("All caught up!")
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			theme.HelpStyle.Render(fmt.Sprintf(
				"No cards are due today. Press m to practice all %d cards.", total)),
		)
	}
	return theme.HelpStyle.Render("Nothing to review.")
}

func (m Model) renderCompleted() string {
	n := m.session.ReviewedCount()
	noun := "cards"
	if n == 1 {
		noun = "card"
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).
		Render("Session complete!")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		fmt.Sprintf("You reviewed %d %s.", n, noun),
		"",
		theme.HelpStyle.Render("Press r to review again or m to switch decks."),
	)
}

func (m Model) renderCard() []string {
	card, ok := m.session.Current()
	if !ok {
		return nil
	}

	progress := theme.DimmedStyle.Render(fmt.Sprintf(
		"Card %d of %d · %d reviewed", m.session.Index()+1, m.session.Len(), m.session.ReviewedCount()))
	topic := theme.CategoryStyle("").Render(m.src.TopicTitle(card.TopicID))

	width := min(max(m.width-8, 30), 90)
	questionStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	body := questionStyle.Render(card.Question)
	if m.session.Flipped() {
		sep := theme.DimmedStyle.Render("─────")
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", sep, "", card.Answer)
	}

	out := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, topic, "  ", progress),
		"",
		theme.CardStyle.Width(width).Render(body),
		"",
	}

	if !m.session.Flipped() {
		return append(out, theme.HelpStyle.Render("Press space to show the answer."))
	}
	return append(out, renderRatings(), "",
		theme.HelpStyle.Render("How well did you remember? Press 1-4."))
}

func renderRatings() string {
	buttons := make([]string, 0, len(quiz.Ratings))
	for _, r := range quiz.Ratings {
		label := fmt.Sprintf("%s %s", r.Key, r.Label)
		b := lipgloss.JoinVertical(lipgloss.Center,
			theme.RatingStyle(int(r.Quality)).Render(label),
			theme.DimmedStyle.Render(r.Description),
		)
		buttons = append(buttons, lipgloss.NewStyle().MarginRight(1).Render(b))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
