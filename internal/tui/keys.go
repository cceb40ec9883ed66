package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play      key.Binding
	AllOff    key.Binding
	EDOUp     key.Binding
	EDODown   key.Binding
	Waveform  key.Binding
	Reference key.Binding
	NextSlot  key.Binding
	Modes     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Play: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-0", "toggle EDO step"),
		),
		AllOff:    key.NewBinding(key.WithKeys("esc", " "), key.WithHelp("esc", "all off")),
		EDOUp:     key.NewBinding(key.WithKeys("up", "+", "="), key.WithHelp("↑/+", "edo up")),
		EDODown:   key.NewBinding(key.WithKeys("down", "-", "_"), key.WithHelp("↓/-", "edo down")),
		Waveform:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "waveform")),
		Reference: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "drone on/off")),
		NextSlot:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next ratios")),
		Modes:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "ratio modes")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.AllOff, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.AllOff, k.EDOUp, k.EDODown},
		{k.Waveform, k.Reference, k.NextSlot, k.Modes},
		{k.Help, k.Quit},
	}
}
