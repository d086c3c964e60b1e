package topiclist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/model"
)

func items() []TopicItem {
	return []TopicItem{
		{Topic: model.Topic{ID: "1", Title: "Backprop", Description: "chain rule", Category: "Deep Learning"}},
		{Topic: model.Topic{ID: "2", Title: "Eigenvectors", Category: "Math"}},
		{Topic: model.Topic{ID: "3", Title: "Attention", Description: "transformers", Category: "NLP"}},
	}
}

func newList() Model {
	m := New(keys.DefaultKeyMap(), []string{"Deep Learning", "Math", "NLP"}, 80, 24)
	m.SetTopics(items())
	return m
}

func TestFilterMatches(t *testing.T) {
	it := items()[0]

	assert.True(t, Filter{}.Matches(it))
	assert.True(t, Filter{Category: "Deep Learning"}.Matches(it))
	assert.False(t, Filter{Category: "Math"}.Matches(it))
	assert.True(t, Filter{Query: "CHAIN"}.Matches(it))
	assert.False(t, Filter{Query: "chain", Category: "Math"}.Matches(it))
}

func TestCategoryCycle(t *testing.T) {
	m := newList()
	c := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}

	var seen []string
	for i := 0; i < 4; i++ {
		m, _ = m.Update(c)
		seen = append(seen, m.filter.Category)
	}
	assert.Equal(t, []string{"Deep Learning", "Math", "NLP", ""}, seen)
}

func TestVisibleAndSelection(t *testing.T) {
	m := newList()

	m.SetCategory("Math")
	vis := m.Visible()
	require.Len(t, vis, 1)
	assert.Equal(t, "Eigenvectors", vis[0].Topic.Title)

	sel, ok := m.SelectedTopic()
	require.True(t, ok)
	assert.Equal(t, "2", sel.Topic.ID)
	assert.Equal(t, "category: Math", m.FilterSummary())

	m.ClearFilters()
	assert.Len(t, m.Visible(), 3)
	assert.Empty(t, m.FilterSummary())
}

func TestSelectEmitsMessage(t *testing.T) {
	m := newList()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(SelectedTopicMsg)
	require.True(t, ok)
	assert.Equal(t, "1", msg.TopicID)
}

func TestSearch(t *testing.T) {
	m := newList()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.True(t, m.searchMode)
	for _, r := range "transf" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.searchMode)
	vis := m.Visible()
	require.Len(t, vis, 1)
	assert.Equal(t, "Attention", vis[0].Topic.Title)
}
