package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	addTask    key.Binding
	toggleTask key.Binding
	deleteTask key.Binding
	yankTask   key.Binding

	commitEdit key.Binding
	cancelEdit key.Binding
	backspace  key.Binding
	forceQuit  key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		addTask:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		toggleTask: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		deleteTask: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		yankTask:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy title")),

		commitEdit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		cancelEdit: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		backspace:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "delete char")),
		forceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.addTask, k.moveUp, k.moveDown, k.toggleTask, k.deleteTask, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown},
		{k.addTask, k.toggleTask, k.deleteTask, k.yankTask},
		{k.toggleHelp, k.quit},
	}
}

// editingKeys exposes the editing-mode bindings to the help bubble.
type editingKeys struct {
	keys keyMap
}

// ShortHelp handles short help.
func (e editingKeys) ShortHelp() []key.Binding {
	return []key.Binding{e.keys.commitEdit, e.keys.cancelEdit, e.keys.backspace, e.keys.forceQuit}
}

// FullHelp handles full help.
func (e editingKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{e.ShortHelp()}
}

// KeyConfig holds user overrides for normal-mode bindings. Blank values keep defaults.
type KeyConfig struct {
	Quit   string
	Add    string
	Delete string
	Toggle string
	Yank   string
	Help   string
}

// applyKeyConfig rebinds normal-mode keys from cfg.
func (k *keyMap) applyKeyConfig(cfg KeyConfig) {
	configureBinding(&k.addTask, cfg.Add, "a", "add")
	configureBinding(&k.deleteTask, cfg.Delete, "d", "delete")
	configureBinding(&k.toggleTask, cfg.Toggle, "space", "toggle")
	configureBinding(&k.yankTask, cfg.Yank, "y", "copy title")
	configureBinding(&k.toggleHelp, cfg.Help, "?", "help")
	configureBinding(&k.quit, cfg.Quit, "q", "quit")
	// ctrl+c always quits.
	k.quit.SetKeys(append(k.quit.Keys(), "ctrl+c")...)
}

// configureBinding replaces a binding's keys and help from one configured value.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns one configured key string into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if raw == " " {
		value = "space"
	}
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}
