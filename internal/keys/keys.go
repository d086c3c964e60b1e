package keys

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
)

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down    key.Binding
	Up      key.Binding
	NextTab key.Binding
	PrevTab key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Topic list
	FilterCategory key.Binding
	ClearFilter    key.Binding

	// Topics and cards
	New        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	AddCard    key.Binding
	EditCard   key.Binding
	DeleteCard key.Binding

	// Quiz
	Flip       key.Binding
	Again      key.Binding
	Hard       key.Binding
	Good       key.Binding
	Easy       key.Binding
	ToggleMode key.Binding
	Restart    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open topic"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		FilterCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle category"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear filters"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new topic"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit topic"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete topic"),
		),
		AddCard: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add card"),
		),
		EditCard: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "edit card"),
		),
		DeleteCard: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete card"),
		),
		Flip: key.NewBinding(
			key.WithKeys(" ", "f"),
			key.WithHelp("space", "show answer"),
		),
		Again: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "again"),
		),
		Hard: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "hard"),
		),
		Good: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "good"),
		),
		Easy: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "easy"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "due/all cards"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "review again"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.NextTab, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.NextTab, k.PrevTab, k.Quit},
		{k.Search, k.Command, k.Help, k.FilterCategory, k.ClearFilter},
		{k.New, k.Edit, k.Delete, k.AddCard, k.EditCard, k.DeleteCard},
		{k.Flip, k.Again, k.Hard, k.Good, k.Easy, k.ToggleMode, k.Restart},
	}
}

// FormKeyMap returns huh's default bindings with esc also aborting the
// form.
func FormKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "cancel"),
	)
	return km
}
