package topicdetail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/model"
)

var now = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func detail() Model {
	m := New(keys.DefaultKeyMap(), 100, 40)
	later := model.NewFlashcard("c2", "t1", "What is a Jacobian?", "Matrix of partials", now)
	later.NextReview = now.AddDate(0, 0, 1)
	later.Interval = 1
	m.SetTopic(
		model.Topic{ID: "t1", Title: "Backprop", Category: "Deep Learning", Mastery: 60, DateAdded: now},
		[]model.Flashcard{
			model.NewFlashcard("c1", "t1", "What is a gradient?", "Vector of partials", now),
			later,
		},
		now,
	)
	return m
}

func TestCardCursor(t *testing.T) {
	m := detail()

	card, ok := m.SelectedCard()
	require.True(t, ok)
	assert.Equal(t, "c1", card.ID)

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j"))
	card, _ = m.SelectedCard()
	assert.Equal(t, "c2", card.ID)

	_, cmd := m.Update(runes("E"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(EditCardMsg)
	require.True(t, ok)
	assert.Equal(t, "c2", msg.Card.ID)

	_, cmd = m.Update(runes("x"))
	assert.Equal(t, DeleteCardMsg{CardID: "c2"}, cmd())
}

func TestTopicActions(t *testing.T) {
	m := detail()

	_, cmd := m.Update(runes("a"))
	assert.Equal(t, AddCardMsg{TopicID: "t1"}, cmd())
	_, cmd = m.Update(runes("d"))
	assert.Equal(t, DeleteTopicMsg{TopicID: "t1"}, cmd())
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, BackMsg{}, cmd())
}

func TestCursorClampedOnShrink(t *testing.T) {
	m := detail()
	m, _ = m.Update(runes("j"))

	m.SetTopic(model.Topic{ID: "t1", Title: "Backprop"}, nil, now)
	_, ok := m.SelectedCard()
	assert.False(t, ok)
	assert.Equal(t, "t1", m.TopicID())
}

func TestDueLabel(t *testing.T) {
	c := model.NewFlashcard("c1", "t1", "Q", "A", now)
	assert.Equal(t, "due now", dueLabel(c, now))

	c.NextReview = now.AddDate(0, 0, 1)
	assert.Equal(t, "due tomorrow", dueLabel(c, now))

	c.NextReview = now.AddDate(0, 0, 6)
	assert.Equal(t, "due in 6 days", dueLabel(c, now))
}
