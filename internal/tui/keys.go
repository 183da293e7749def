package tui

import "github.com/charmbracelet/bubbles/key"

// gridKeyMap defines key bindings for the wall grid
type gridKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Sync   key.Binding
	Clear  key.Binding
	Random key.Binding
	Menu   key.Binding
	Props  key.Binding
	Copy   key.Binding
	Export key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k gridKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Sync, k.Clear, k.Menu, k.Props, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k gridKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Toggle},
		{k.Sync, k.Clear, k.Random},
		{k.Menu, k.Props, k.Copy, k.Export},
		{k.Help, k.Quit},
	}
}

func newGridKeyMap() gridKeyMap {
	return gridKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space/click", "toggle")),
		Sync:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync")),
		Clear:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Random: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "random route")),
		Menu:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Props:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "properties")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy grid")),
		Export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export png")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// dialogKeyMap defines key bindings shared by menus and dialogs
type dialogKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Delete key.Binding
	Next   key.Binding
	Close  key.Binding
	// showDelete and showNext pick the bindings relevant to a dialog
	showDelete bool
	showNext   bool
}

func (k dialogKeyMap) ShortHelp() []key.Binding {
	bindings := []key.Binding{k.Up, k.Down, k.Select}
	if k.showDelete {
		bindings = append(bindings, k.Delete)
	}
	if k.showNext {
		bindings = []key.Binding{k.Next, k.Select}
	}
	return append(bindings, k.Close)
}

func (k dialogKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newDialogKeyMap() dialogKeyMap {
	return dialogKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Next:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}
