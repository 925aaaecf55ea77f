package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Left     key.Binding
	Right    key.Binding
	Pick     key.Binding
	Direct   key.Binding
	Submit   key.Binding
	Back     key.Binding
	Copy     key.Binding
	Explorer key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
	Left:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "move")),
	Right:    key.NewBinding(key.WithKeys("right")),
	Pick:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pick chain")),
	Direct:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-5", "pick")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "check")),
	Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
	Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy address")),
	Explorer: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open explorer")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// ShortHelp is shown under the selection form.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Left, k.Direct, k.Pick, k.Submit, k.Quit}
}

// FullHelp is shown under a report.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Back, k.Copy, k.Explorer, k.Quit},
	}
}
