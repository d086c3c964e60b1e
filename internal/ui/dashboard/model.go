package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/stats"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// Data is everything the dashboard renders.
type Data struct {
	Summary    stats.Summary
	Categories []stats.CategoryCount
	Recent     []model.Topic
	LastVisit  time.Time
	Now        time.Time
}

// Model is the statistics overview shown at startup.
type Model struct {
	data   Data
	width  int
	height int
}

// New creates a new dashboard model.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetData replaces the rendered data.
func (m *Model) SetData(d Data) {
	m.data = d
}

// View renders the dashboard.
func (m Model) View() string {
	s := m.data.Summary

	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Topics", fmt.Sprint(s.TotalTopics), theme.ColorBlue),
		tile("Flashcards", fmt.Sprint(s.TotalCards), theme.ColorMagenta),
		tile("Due Today", fmt.Sprint(s.CardsToReview), dueColor(s.CardsToReview)),
		tile("Avg Mastery", fmt.Sprintf("%d%%", s.AverageMastery), theme.ColorGreen),
		tile("Streak", fmt.Sprintf("%d days", s.StreakDays), theme.ColorYellow),
	)

	sections := []string{m.renderGreeting(), "", tiles, ""}

	if s.TotalTopics == 0 {
		sections = append(sections, theme.HelpStyle.Render(
			"No topics yet. Press n to add your first topic."))
	} else {
		sections = append(sections, m.renderCategories(), "", m.renderRecent())
	}

	if s.CardsToReview > 0 {
		sections = append(sections, "", theme.HelpStyle.Render(
			fmt.Sprintf("%d cards are waiting. Open the Quiz tab or type :quiz to review.", s.CardsToReview)))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderGreeting() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render("Your Learning Journey")
	if m.data.LastVisit.IsZero() {
		return title + "  " + theme.DimmedStyle.Render("welcome!")
	}
	return title + "  " + theme.DimmedStyle.Render(
		"last visit "+relativeDay(m.data.LastVisit, m.data.Now))
}

func (m Model) renderCategories() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render("By Category")
	if len(m.data.Categories) == 0 {
		return header
	}

	most := 0
	for _, c := range m.data.Categories {
		if c.Topics > most {
			most = c.Topics
		}
	}

	barWidth := m.width - 40
	if barWidth > 30 {
		barWidth = 30
	}
	if barWidth < 5 {
		barWidth = 5
	}

	rows := []string{header}
	for _, c := range m.data.Categories {
		n := c.Topics * barWidth / most
		rows = append(rows, fmt.Sprintf("%s %s %d",
			theme.CategoryStyle(c.Category).Width(22).Render(c.Category),
			lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(strings.Repeat("■", n)),
			c.Topics))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderRecent() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render("Recently Added")
	rows := []string{header}
	for _, t := range m.data.Recent {
		rows = append(rows, fmt.Sprintf("%s %s  %s",
			theme.MasteryBar(t.Mastery, 10),
			t.Title,
			theme.DimmedStyle.Render(relativeDay(t.DateAdded, m.data.Now))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func tile(label, value string, color lipgloss.AdaptiveColor) string {
	v := lipgloss.NewStyle().Bold(true).Foreground(color).Render(value)
	l := theme.DimmedStyle.Render(label)
	return theme.BorderStyle.
		Padding(0, 2).
		MarginRight(1).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, v, l))
}

func dueColor(n int) lipgloss.AdaptiveColor {
	if n > 0 {
		return theme.ColorOrange
	}
	return theme.ColorGreen
}

// relativeDay describes t relative to now in whole calendar days.
func relativeDay(t, now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	days := int(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC).
		Sub(time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)).Hours() / 24)

	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}
