package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// helpPanel renders the key reference as terminal markdown, caching by wrap width.
type helpPanel struct {
	width    int
	source   string
	rendered string
}

// minHelpPanelWidth keeps glamour word wrapping readable on narrow terminals.
const minHelpPanelWidth = 32

// helpMarkdown builds the key reference from the active bindings.
func helpMarkdown(k keyMap) string {
	var b strings.Builder
	b.WriteString("# Keys\n\n")
	b.WriteString("## List\n\n")
	b.WriteString("| key | action |\n|---|---|\n")
	for _, binding := range []struct {
		keys string
		desc string
	}{
		{k.moveUp.Help().Key, "move selection up"},
		{k.moveDown.Help().Key, "move selection down"},
		{k.addTask.Help().Key, "start a new todo"},
		{k.toggleTask.Help().Key, "toggle done"},
		{k.deleteTask.Help().Key, "delete selected todo"},
		{k.yankTask.Help().Key, "copy selected title"},
		{k.toggleHelp.Help().Key, "show or hide this panel"},
		{k.quit.Help().Key, "save and quit"},
	} {
		fmt.Fprintf(&b, "| `%s` | %s |\n", binding.keys, binding.desc)
	}
	b.WriteString("\n## New todo\n\n")
	b.WriteString("Type the title, then `enter` to save or `esc` to discard. ")
	b.WriteString("Blank titles are dropped.\n")
	return b.String()
}

// render returns the panel for width, falling back to raw markdown if glamour fails.
func (p *helpPanel) render(markdown string, width int) string {
	width = max(width, minHelpPanelWidth)
	if p.rendered != "" && p.width == width && p.source == markdown {
		return p.rendered
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	p.width = width
	p.source = markdown
	p.rendered = strings.TrimRight(out, "\n")
	return p.rendered
}
