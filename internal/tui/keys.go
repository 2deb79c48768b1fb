package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the root-level keyboard bindings. List navigation and
// filter keys are handled by the challenge list itself.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Enter        key.Binding
	Escape       key.Binding
	Quit         key.Binding
	Achievements key.Binding
	Chat         key.Binding
	Filter       key.Binding
	Category     key.Binding
	Difficulty   key.Binding
	HideSolved   key.Binding
	Refresh      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Achievements: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "achievements"),
		),
		Chat: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "assistant"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category"),
		),
		Difficulty: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "difficulty"),
		),
		HideSolved: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hide solved"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Enter, k.Filter, k.Category, k.Difficulty, k.HideSolved, k.Achievements, k.Chat, k.Quit}
}
