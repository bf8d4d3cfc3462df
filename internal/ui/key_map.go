package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	nextTab   key.Binding
	prevTab   key.Binding
	profile   key.Binding
	tracks    key.Binding
	artists   key.Binding
	recs      key.Binding
	timeRange key.Binding
	refresh   key.Binding
	logout    key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		nextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
		profile:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "profile")),
		tracks:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "top tracks")),
		artists:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "top artists")),
		recs:      key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "recommendations")),
		timeRange: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		logout:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "log out")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextTab, k.timeRange, k.logout, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextTab, k.prevTab},
		{k.profile, k.tracks, k.artists, k.recs},
		{k.timeRange, k.refresh},
		{k.logout, k.help, k.quit},
	}
}
