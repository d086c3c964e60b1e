package topiclist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// SelectedTopicMsg is sent when a user opens a topic.
type SelectedTopicMsg struct {
	TopicID string
}

// Filter narrows the visible topics.
type Filter struct {
	Category string
	Query    string
}

// Active reports whether any filter is set.
func (f Filter) Active() bool {
	return f.Category != "" || f.Query != ""
}

// Matches reports whether item passes the filter. Query matches title or
// description, case-insensitively.
func (f Filter) Matches(item TopicItem) bool {
	if f.Category != "" && item.Topic.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(item.Topic.Title), q) ||
		strings.Contains(strings.ToLower(item.Topic.Description), q)
}

// Model is the topic list view component.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	all         []TopicItem
	categories  []string
	filter      Filter
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new topic list model.
func New(k *keys.KeyMap, categories []string, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Topics"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle
	l.SetStatusBarItemName("topic", "topics")

	si := textinput.New()
	si.Placeholder = "search topics..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		categories:  categories,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetTopics replaces the full topic set and reapplies the filter.
func (m *Model) SetTopics(items []TopicItem) tea.Cmd {
	m.all = items
	return m.apply()
}

// Update handles messages for the topic list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Query = strings.TrimSpace(m.searchInput.Value())
		return m, m.apply()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = ""
		return m, m.apply()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.SelectedTopic()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTopicMsg{TopicID: item.Topic.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterCategory):
		m.filter.Category = m.nextCategory()
		return m, m.apply()

	case key.Matches(msg, m.keys.ClearFilter):
		return m, m.ClearFilters()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// nextCategory cycles "" -> categories[0] -> ... -> "".
func (m Model) nextCategory() string {
	if m.filter.Category == "" {
		if len(m.categories) == 0 {
			return ""
		}
		return m.categories[0]
	}
	for i, c := range m.categories {
		if c == m.filter.Category && i+1 < len(m.categories) {
			return m.categories[i+1]
		}
	}
	return ""
}

// SetCategory filters by category; "" shows every category.
func (m *Model) SetCategory(category string) tea.Cmd {
	m.filter.Category = category
	return m.apply()
}

// ClearFilters removes the category and search filters.
func (m *Model) ClearFilters() tea.Cmd {
	m.filter = Filter{}
	m.searchInput.Reset()
	return m.apply()
}

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	var parts []string
	if m.filter.Category != "" {
		parts = append(parts, "category: "+m.filter.Category)
	}
	if m.filter.Query != "" {
		parts = append(parts, "search: "+m.filter.Query)
	}
	return strings.Join(parts, " | ")
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// SelectedTopic returns the highlighted topic.
func (m Model) SelectedTopic() (TopicItem, bool) {
	item, ok := m.list.SelectedItem().(TopicItem)
	return item, ok
}

// Visible returns the topics that pass the current filter.
func (m Model) Visible() []TopicItem {
	var out []TopicItem
	for _, it := range m.all {
		if m.filter.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}

func (m *Model) apply() tea.Cmd {
	visible := m.Visible()
	items := make([]list.Item, len(visible))
	for i, it := range visible {
		items[i] = it
	}

	title := "Topics"
	if m.filter.Category != "" {
		title = "Topics · " + m.filter.Category
	}
	m.list.Title = title
	return m.list.SetItems(items)
}

// View renders the topic list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no topics are visible.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.filter.Active() && len(m.all) > 0 {
		return style.Render("No matching topics.\nPress C to clear filters.")
	}

	return style.Render(
		"No topics yet.\n\n" +
			"Press n to add what you have learned.",
	)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
