package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Theme names accepted by Apply.
const (
	Default = "default"
	Dark    = "dark"
	Light   = "light"
)

// Apply selects which side of the adaptive colors is used. "default"
// keeps lipgloss's terminal background detection.
func Apply(name string) error {
	switch name {
	case "", Default:
	case Dark:
		lipgloss.SetHasDarkBackground(true)
	case Light:
		lipgloss.SetHasDarkBackground(false)
	default:
		return fmt.Errorf("unknown theme %q", name)
	}
	return nil
}

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// TabStyle renders an inactive tab label in the header.
var TabStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// ActiveTabStyle renders the selected tab label.
var ActiveTabStyle = TabStyle.
	Bold(true).
	Underline(true)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ErrorStyle is used for error messages in the status bar.
var ErrorStyle = StatusBarStyle.
	Foreground(ColorRed).
	Bold(true)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CardStyle frames a flashcard face in the quiz view.
var CardStyle = lipgloss.NewStyle().
	Padding(1, 3).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue).
	Align(lipgloss.Center)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle is used for secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// MasteryStyle returns a color-coded style for a 0-100 mastery value.
func MasteryStyle(mastery int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch {
	case mastery >= 80:
		return base.Foreground(ColorGreen)
	case mastery >= 50:
		return base.Foreground(ColorBlue)
	case mastery >= 25:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorOrange)
	}
}

// CategoryStyle returns the badge style for a topic category.
func CategoryStyle(category string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch category {
	case "Machine Learning", "Deep Learning":
		return base.Foreground(ColorMagenta)
	case "NLP", "Computer Vision":
		return base.Foreground(ColorBlue)
	case "Math", "Data Science":
		return base.Foreground(ColorYellow)
	case "Python", "Tools & Libraries":
		return base.Foreground(ColorGreen)
	case "Prompt Engineering":
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}

// RatingStyle returns the style for a quiz rating button by quality.
func RatingStyle(quality int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	switch {
	case quality < 2:
		return base.Foreground(ColorRed).BorderForeground(ColorRed)
	case quality < 4:
		return base.Foreground(ColorOrange).BorderForeground(ColorOrange)
	case quality < 5:
		return base.Foreground(ColorBlue).BorderForeground(ColorBlue)
	default:
		return base.Foreground(ColorGreen).BorderForeground(ColorGreen)
	}
}

// MasteryBar renders mastery as a fixed-width bar, e.g. "██████░░░░".
func MasteryBar(mastery, width int) string {
	if width <= 0 {
		return ""
	}
	filled := mastery * width / 100
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return MasteryStyle(mastery).Render(bar)
}
