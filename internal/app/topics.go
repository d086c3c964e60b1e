package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/tracker"
)

// topicSavedResultMsg is sent after a topic is created or updated.
type topicSavedResultMsg struct {
	topic   model.Topic
	created bool
	err     error
}

// topicDeletedResultMsg is sent after a topic and its cards are removed.
type topicDeletedResultMsg struct {
	title string
	cards int
	err   error
}

// deleteTopicAction is the pending action behind a delete confirmation.
type deleteTopicAction struct{ id string }

// createTopic persists a new topic.
func (m *Model) createTopic(in tracker.TopicInput) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		topic, err := t.AddTopic(context.Background(), in)
		return topicSavedResultMsg{topic: topic, created: true, err: err}
	}
}

// updateTopic persists changes to an existing topic.
func (m *Model) updateTopic(id string, in tracker.TopicInput) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		topic, err := t.UpdateTopic(context.Background(), id, in)
		return topicSavedResultMsg{topic: topic, err: err}
	}
}

// deleteTopic removes a topic and every card referencing it.
func (m *Model) deleteTopic(id string) tea.Cmd {
	t := m.tracker
	title := t.TopicTitle(id)
	return func() tea.Msg {
		n, err := t.DeleteTopic(context.Background(), id)
		return topicDeletedResultMsg{title: title, cards: n, err: err}
	}
}

// confirmDeleteTopic opens the confirm prompt for topic id.
func (m *Model) confirmDeleteTopic(id string) tea.Cmd {
	topic, ok := m.tracker.Topic(id)
	if !ok {
		m.errMessage = tracker.ErrTopicNotFound.Error()
		return nil
	}
	n := len(m.tracker.CardsForTopic(id))
	m.openView(ViewConfirm)
	return m.confirmView.Ask(
		fmt.Sprintf("Delete %q?", topic.Title),
		fmt.Sprintf("This also deletes its %d flashcards.", n),
		deleteTopicAction{id: id},
	)
}

// startCreateTopic opens the topic form in create mode.
func (m *Model) startCreateTopic() tea.Cmd {
	m.openView(ViewTopicForm)
	return m.topicForm.StartCreate()
}

// startEditTopic opens the topic form for topic id.
func (m *Model) startEditTopic(id string) tea.Cmd {
	topic, ok := m.tracker.Topic(id)
	if !ok {
		m.errMessage = tracker.ErrTopicNotFound.Error()
		return nil
	}
	m.openView(ViewTopicForm)
	return m.topicForm.StartEdit(topic)
}

// openTopic shows the detail view for topic id.
func (m *Model) openTopic(id string) {
	topic, ok := m.tracker.Topic(id)
	if !ok {
		m.errMessage = tracker.ErrTopicNotFound.Error()
		return
	}
	m.topicDetail.SetTopic(topic, m.tracker.CardsForTopic(id), m.tracker.Now())
	m.previousView = m.currentView
	m.currentView = ViewTopicDetail
}

// selectedTopicID returns the topic the user is looking at: the detail
// view's topic, or the highlighted row of the list.
func (m Model) selectedTopicID() string {
	if m.currentView == ViewTopicDetail {
		return m.topicDetail.TopicID()
	}
	if item, ok := m.topicList.SelectedTopic(); ok {
		return item.Topic.ID
	}
	return ""
}
