package topiclist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// TopicItem wraps a model.Topic with its card counts so it can be used in
// a bubbles/list.
type TopicItem struct {
	Topic model.Topic
	Cards int
	Due   int
}

// FilterValue returns the string used for filtering.
func (i TopicItem) FilterValue() string { return i.Topic.Title }

// Title returns the topic title for the list.
func (i TopicItem) Title() string { return i.Topic.Title }

// Description returns a short summary line for the list.
func (i TopicItem) Description() string {
	parts := []string{
		i.Topic.Category,
		fmt.Sprintf("%d%%", i.Topic.Mastery),
		fmt.Sprintf("%d cards", i.Cards),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering topic rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single topic line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TopicItem)
	if !ok {
		return
	}
	isSelected := index == m.Index()

	bar := theme.MasteryBar(ti.Topic.Mastery, 10)
	pct := theme.MasteryStyle(ti.Topic.Mastery).Render(fmt.Sprintf("%3d%%", ti.Topic.Mastery))
	category := theme.CategoryStyle(ti.Topic.Category).Render(shortCategory(ti.Topic.Category))

	cards := theme.DimmedStyle.Render(fmt.Sprintf(" %d cards", ti.Cards))
	due := ""
	if ti.Due > 0 {
		due = lipgloss.NewStyle().
			Foreground(theme.ColorOrange).
			Render(fmt.Sprintf(" %d due", ti.Due))
	}

	notes := ""
	if ti.Topic.Notes != nil {
		notes = theme.DimmedStyle.Render(" ✎")
	}

	line := fmt.Sprintf("%s %s %s %s%s%s%s",
		bar, pct, category, ti.Topic.Title, notes, cards, due)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// shortCategory abbreviates long category names for the list column.
func shortCategory(c string) string {
	switch c {
	case "Machine Learning":
		return "ML"
	case "Deep Learning":
		return "DL"
	case "Computer Vision":
		return "CV"
	case "Data Science":
		return "DS"
	case "Prompt Engineering":
		return "Prompting"
	case "Tools & Libraries":
		return "Tools"
	default:
		return c
	}
}
