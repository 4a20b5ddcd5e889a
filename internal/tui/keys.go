package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"

	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/session"
)

// keyMap defines the table's key bindings
type keyMap struct {
	Deal     key.Binding
	Check    key.Binding
	Call     key.Binding
	Raise    key.Binding
	Fold     key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Deal: key.NewBinding(
			key.WithKeys("d", "enter"),
			key.WithHelp("d", "deal"),
		),
		Check: key.NewBinding(
			key.WithKeys("k", "x"),
			key.WithHelp("k", "check"),
		),
		Call: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "call"),
		),
		Raise: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "raise"),
		),
		Fold: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fold"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "pgup"),
			key.WithHelp("↑/pgup", "scroll log"),
		),
		ScrollDn: key.NewBinding(
			key.WithKeys("down", "pgdown"),
			key.WithHelp("↓/pgdn", "scroll log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// sync enables only the bindings that make sense for the current state
func (k *keyMap) sync(snap session.Snapshot) {
	k.Deal.SetEnabled(snap.CanDeal)

	acting := snap.HumanToAct()
	k.Check.SetEnabled(acting)
	k.Call.SetEnabled(acting)
	k.Raise.SetEnabled(acting && slices.Contains(snap.ValidActions, game.Raise))
	k.Fold.SetEnabled(acting)
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Deal, k.Check, k.Call, k.Raise, k.Fold, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Deal, k.Check, k.Call, k.Raise, k.Fold},
		{k.ScrollUp, k.ScrollDn, k.Help, k.Quit},
	}
}
