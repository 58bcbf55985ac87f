package ui

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/duet/protocol"
)

var modifierPrefixes = []string{"ctrl+", "alt+", "shift+"}

// keyEvent converts a terminal key into a KeyPress. bubbletea names keys
// like "ctrl+x" or "shift+tab"; the modifiers are split off. Terminals do
// not report shift for letters, so an upper-case rune implies it.
func keyEvent(msg tea.KeyMsg) protocol.KeyPress {
	var mods protocol.Modifiers

	switch msg.Type {
	case tea.KeyRunes:
		mods.Alt = msg.Alt
		if len(msg.Runes) == 1 && unicode.IsUpper(msg.Runes[0]) {
			mods.Shift = true
		}
		return protocol.KeyPress{Key: string(msg.Runes), Modifiers: mods}
	case tea.KeySpace:
		mods.Alt = msg.Alt
		return protocol.KeyPress{Key: "space", Modifiers: mods}
	}

	name := msg.String()
	for stripped := true; stripped; {
		stripped = false
		for _, p := range modifierPrefixes {
			if rest, ok := strings.CutPrefix(name, p); ok && rest != "" {
				name, stripped = rest, true
				switch p {
				case "ctrl+":
					mods.Ctrl = true
				case "alt+":
					mods.Alt = true
				case "shift+":
					mods.Shift = true
				}
			}
		}
	}
	return protocol.KeyPress{Key: name, Modifiers: mods}
}

// textOf returns the text a key types, if any.
func textOf(msg tea.KeyMsg) (string, bool) {
	if msg.Alt {
		return "", false
	}
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes), len(msg.Runes) > 0
	case tea.KeySpace:
		return " ", true
	}
	return "", false
}
