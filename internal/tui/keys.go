package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle  key.Binding
	Skip    key.Binding
	End     key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "start/pause")),
		Skip:    key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next step")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end")),
		Confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Skip, k.End, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// confirmHelp is shown while the end-of-session prompt is open.
type confirmHelp struct{ keyMap }

func (k confirmHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// doneHelp is shown once the run has finished.
type doneHelp struct{ keyMap }

func (k doneHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}
