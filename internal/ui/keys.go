package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Grow         key.Binding
	Shrink       key.Binding
	Delete       key.Binding
	ToggleLayout key.Binding
	Rescan       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Grow: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "grow selected"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "shrink selected"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "backspace", "x"),
			key.WithHelp("del/x", "delete selected"),
		),
		ToggleLayout: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle layout"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns a brief help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grow, k.Shrink, k.Delete, k.Quit}
}

// FullHelp returns all help bindings
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Grow, k.Shrink, k.Delete},
		{k.ToggleLayout, k.Rescan},
		{k.Help, k.Quit},
	}
}
