package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/srs"
)

// cardSavedResultMsg is sent after a card is created or updated.
type cardSavedResultMsg struct {
	card    model.Flashcard
	created bool
	err     error
}

// cardDeletedResultMsg is sent after a card is removed.
type cardDeletedResultMsg struct{ err error }

// reviewRecordedResultMsg is sent after a rated card is persisted.
type reviewRecordedResultMsg struct {
	quality srs.Quality
	err     error
}

// deleteCardAction is the pending action behind a delete confirmation.
type deleteCardAction struct{ id string }

// createCard persists a new card under topicID.
func (m *Model) createCard(topicID, question, answer string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		card, err := t.AddFlashcard(context.Background(), topicID, question, answer)
		return cardSavedResultMsg{card: card, created: true, err: err}
	}
}

// updateCard edits a card's content, keeping its schedule.
func (m *Model) updateCard(id, topicID, question, answer string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		card, err := t.EditFlashcard(context.Background(), id, topicID, question, answer)
		return cardSavedResultMsg{card: card, err: err}
	}
}

// deleteCard removes a card.
func (m *Model) deleteCard(id string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		return cardDeletedResultMsg{err: t.DeleteFlashcard(context.Background(), id)}
	}
}

// recordReview persists a card rated in the quiz.
func (m *Model) recordReview(card model.Flashcard, q srs.Quality) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		err := t.RecordReview(context.Background(), card, q)
		return reviewRecordedResultMsg{quality: q, err: err}
	}
}

// startCreateCard opens the card form for topicID, or for the first topic
// when topicID is empty.
func (m *Model) startCreateCard(topicID string) tea.Cmd {
	if len(m.tracker.Topics()) == 0 {
		m.errMessage = "create a topic before adding flashcards"
		return nil
	}
	m.cardForm.SetTopics(m.tracker.Topics())
	m.openView(ViewCardForm)
	return m.cardForm.StartCreate(topicID)
}

// startEditCard opens the card form for card.
func (m *Model) startEditCard(card model.Flashcard) tea.Cmd {
	m.cardForm.SetTopics(m.tracker.Topics())
	m.openView(ViewCardForm)
	return m.cardForm.StartEdit(card)
}

// confirmDeleteCard opens the confirm prompt for card id.
func (m *Model) confirmDeleteCard(id string) tea.Cmd {
	m.openView(ViewConfirm)
	return m.confirmView.Ask(
		"Delete this flashcard?",
		"Its review schedule is lost.",
		deleteCardAction{id: id},
	)
}
