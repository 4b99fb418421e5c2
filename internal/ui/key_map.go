package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next    key.Binding
	prev    key.Binding
	enter   key.Binding
	back    key.Binding
	open    key.Binding
	mail    key.Binding
	wsp     key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open video")),
		mail:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "send email")),
		wsp:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "whatsapp")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new video")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.enter},
		{k.open, k.mail, k.wsp},
		{k.restart, k.quit},
	}
}
