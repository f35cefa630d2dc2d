package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the browser.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Focus moves between enabled selectors only.
	NextLevel key.Binding
	PrevLevel key.Binding

	Choose  key.Binding
	Clear   key.Binding // Deselect the focused level.
	Refresh key.Binding // Re-query the focused level.

	Quit key.Binding
}

// DefaultKeyMap uses arrows or j/k inside a selector and tab between them.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextLevel: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next list"),
	),
	PrevLevel: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "previous list"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("Esc", "clear"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextLevel, k.Choose, k.Clear, k.Refresh, k.Quit}
}
