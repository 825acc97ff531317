package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Close      key.Binding
	Open       key.Binding
	Toggle     key.Binding
	Confirm    key.Binding
	More       key.Binding
	Less       key.Binding
	Mode       key.Binding
	Size       key.Binding
	DragClose  key.Binding
	BlockBg    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	Toggle:     key.NewBinding(key.WithKeys("t", " "), key.WithHelp("t", "toggle")),
	Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "primary")),
	More:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "progress")),
	Less:       key.NewBinding(key.WithKeys("-", "_")),
	Mode:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
	Size:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "size")),
	DragClose:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drag")),
	BlockBg:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "backdrop")),
	ScrollUp:   key.NewBinding(key.WithKeys("up", "k", "pgup")),
	ScrollDown: key.NewBinding(key.WithKeys("down", "j", "pgdown")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Open, k.Toggle, k.Close, k.More, k.Mode, k.Size, k.DragClose, k.BlockBg, k.Quit}
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, StatusKeyStyle.Render(h.Key)+" "+HelpStyle.Render(h.Desc))
	}
	return strings.Join(parts, HelpStyle.Render(" · "))
}
