package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the non-typing bindings. Toggles use ctrl chords so every
// printable key reaches the engine.
type keyMap struct {
	Quit         key.Binding
	Restart      key.Binding
	Finish       key.Binding
	Practice     key.Binding
	StopOnError  key.Binding
	Forgive      key.Binding
	Numbers      key.Binding
	Punctuation  key.Binding
	Symbols      key.Binding
	Caps         key.Binding
	Category     key.Binding
	Mode         key.Binding
	Focus        key.Binding
	LiveWPM      key.Binding
	Theme        key.Binding
	Caret        key.Binding
	CustomText   key.Binding
	SubmitCustom key.Binding
	Help         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Restart:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "restart")),
		Finish:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "finish")),
		Practice:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "practice problem keys")),
		StopOnError:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^s", "stop on error")),
		Forgive:      key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("^f", "forgive errors")),
		Numbers:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("^n", "numbers")),
		Punctuation:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("^p", "punctuation")),
		Symbols:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("^y", "symbols")),
		Caps:         key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("^k", "capitalization")),
		Category:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("^g", "category")),
		Mode:         key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("^a", "ai text")),
		Focus:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^o", "focus mode")),
		LiveWPM:      key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("^w", "live wpm")),
		Theme:        key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^t", "theme")),
		Caret:        key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^r", "caret")),
		CustomText:   key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("^e", "custom text")),
		SubmitCustom: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("^d", "use text")),
		Help:         key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Restart, k.Finish, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Restart, k.Finish, k.Practice, k.CustomText, k.Quit},
		{k.StopOnError, k.Forgive, k.Numbers, k.Punctuation, k.Symbols},
		{k.Caps, k.Category, k.Mode, k.Focus, k.LiveWPM},
		{k.Theme, k.Caret, k.Help},
	}
}
