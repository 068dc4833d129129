package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Primary  key.Binding
	Advance  key.Binding
	Close    key.Binding
	Search   key.Binding
	History  key.Binding
	Mode     key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Primary:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Advance:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "advance")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		History:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Mode:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
		Reset:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// footerBindings are the keys listed in the help line of the tree view.
func (k keyMap) footerBindings() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Primary, k.Advance, k.Close, k.Search, k.History, k.Mode, k.Reset, k.Quit}
}
