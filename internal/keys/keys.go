// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// EditorKeyMap defines the keybindings of the mention editor.
type EditorKeyMap struct {
	// Suggestion list
	Up      key.Binding
	Down    key.Binding
	Accept  key.Binding
	Dismiss key.Binding

	// Editing
	Newline   key.Binding
	WordLeft  key.Binding
	WordRight key.Binding

	// General
	ToggleRaw key.Binding
	Save      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultEditorKeyMap returns the default editor keybindings.
func DefaultEditorKeyMap() EditorKeyMap {
	return EditorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑/ctrl+p", "previous suggestion"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓/ctrl+n", "next suggestion"),
		),
		Accept: key.NewBinding(
			key.WithKeys("tab", "enter"),
			key.WithHelp("tab/enter", "insert suggestion"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "hide suggestions"),
		),

		Newline: key.NewBinding(
			key.WithKeys("enter", "ctrl+j"),
			key.WithHelp("enter", "new line"),
		),
		WordLeft: key.NewBinding(
			key.WithKeys("alt+left", "alt+b", "ctrl+b"),
			key.WithHelp("alt+←", "word left"),
		),
		WordRight: key.NewBinding(
			key.WithKeys("alt+right", "alt+f", "ctrl+f"),
			key.WithHelp("alt+→", "word right"),
		),

		ToggleRaw: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "toggle raw value"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the mini help view.
func (k EditorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.ToggleRaw, k.Save, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k EditorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Accept, k.Dismiss},
		{k.Newline, k.WordLeft, k.WordRight},
		{k.ToggleRaw, k.Save, k.Help, k.Quit},
	}
}
