package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/todo/internal/app"
)

// normalHint mirrors the one-line usage shown under the list in normal mode.
const normalHint = "Press 'a' to add, ⬆⬇ to navigate, [space] to toggle, [d] to delete, [q] to quit."

// frameMargin is the blank border kept around the whole frame.
const frameMargin = 2

// Model is the bubbletea host for an app.Controller.
type Model struct {
	ctl *app.Controller
	ctx context.Context

	ready  bool
	width  int
	height int

	status string

	help      help.Model
	keys      keyMap
	showHelp  bool
	showPanel bool
	panel     *helpPanel

	copyText ClipboardWriter
}

// NewModel constructs a model around ctl.
func NewModel(ctl *app.Controller, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		ctl:      ctl,
		ctx:      context.Background(),
		help:     h,
		keys:     newKeyMap(),
		showHelp: true,
		panel:    &helpPanel{},
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if m.ctl.Mode() == app.ModeEditing {
			return m.handleEditingKey(msg)
		}
		return m.handleNormalKey(msg)

	default:
		return m, nil
	}
}

// handleNormalKey maps one normal-mode key to one controller operation.
func (m Model) handleNormalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.toggleHelp):
		m.showPanel = !m.showPanel
		return m, nil
	case msg.String() == "esc":
		m.showPanel = false
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.ctl.NavigateUp()
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.ctl.NavigateDown()
		return m, nil
	case key.Matches(msg, m.keys.toggleTask):
		m.ctl.ToggleSelected()
		if task, ok := m.ctl.SelectedTask(); ok {
			if task.Completed {
				m.status = fmt.Sprintf("done: %s", truncate(task.Title, 40))
			} else {
				m.status = fmt.Sprintf("reopened: %s", truncate(task.Title, 40))
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.ctl.SelectedTask()
		m.ctl.RemoveSelected()
		if ok {
			m.status = fmt.Sprintf("deleted: %s", truncate(task.Title, 40))
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		m.showPanel = false
		m.status = ""
		m.ctl.BeginEdit()
		return m, nil
	case key.Matches(msg, m.keys.yankTask):
		task, ok := m.ctl.SelectedTask()
		if !ok {
			m.status = "nothing to copy"
			return m, nil
		}
		if err := m.copyText(task.Title); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("copied: %s", truncate(task.Title, 40))
		return m, nil
	default:
		return m, nil
	}
}

// handleEditingKey maps one editing-mode key to one controller operation.
func (m Model) handleEditingKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m.quit()
	case key.Matches(msg, m.keys.commitEdit):
		before := m.ctl.Len()
		m.ctl.CommitEdit()
		if m.ctl.Len() > before {
			m.status = "added"
		} else {
			m.status = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.cancelEdit):
		m.ctl.CancelEdit()
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.backspace):
		m.ctl.EditBackspace()
		return m, nil
	case msg.Text != "" && (msg.Mod&(tea.ModCtrl|tea.ModAlt)) == 0:
		m.ctl.EditPushText(msg.Text)
		return m, nil
	default:
		return m, nil
	}
}

// quit ends the run loop after the controller has saved.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.ctl.Quit(m.ctx)
	return m, tea.Quit
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render builds one frame from controller state.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	accent := lipgloss.Color("62")
	innerWidth := max(10, m.width-2*frameMargin)

	statusStyle := lipgloss.NewStyle().Foreground(dim)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(muted).
		Width(innerWidth)

	inputBox := m.renderInput(boxStyle, accent)
	footer := ""
	if m.showHelp {
		helpBubble := m.help
		helpBubble.SetWidth(innerWidth)
		if m.ctl.Mode() == app.ModeEditing {
			footer = helpBubble.View(editingKeys{keys: m.keys})
		} else {
			footer = helpBubble.View(m.keys)
		}
		footer = lipgloss.NewStyle().Foreground(muted).Render(footer)
	}
	statusLine := statusStyle.Render(m.statusLine())

	reserved := lipgloss.Height(inputBox) + lipgloss.Height(statusLine)
	if footer != "" {
		reserved += lipgloss.Height(footer)
	}
	listHeight := max(3, m.height-2*frameMargin-reserved)
	list := m.renderList(boxStyle, accent, listHeight)
	if m.showPanel {
		list = boxStyle.Render(fitLines(m.panel.render(helpMarkdown(m.keys), innerWidth-4), max(1, listHeight-2)))
	}

	sections := []string{list, inputBox, statusLine}
	if footer != "" {
		sections = append(sections, footer)
	}
	return lipgloss.NewStyle().
		Margin(frameMargin).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderList draws the bordered task list with the selected row reversed.
func (m Model) renderList(boxStyle lipgloss.Style, accent color.Color, height int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedStyle := lipgloss.NewStyle().Reverse(true)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	tasks := m.ctl.Tasks()
	rowsHeight := max(1, height-3)
	lines := []string{titleStyle.Render("Todos")}
	if len(tasks) == 0 {
		lines = append(lines, emptyStyle.Render("(empty)"))
	}
	start, end := windowBounds(len(tasks), m.ctl.Selected(), rowsHeight)
	for idx := start; idx < end; idx++ {
		row := taskRow(tasks[idx].Title, tasks[idx].Completed)
		row = truncate(row, max(1, m.width-2*frameMargin-4))
		if idx == m.ctl.Selected() {
			row = selectedStyle.Render(row)
		}
		lines = append(lines, row)
	}
	return boxStyle.Render(fitLines(strings.Join(lines, "\n"), rowsHeight+1))
}

// renderInput draws the edit box while editing and the usage hint otherwise.
func (m Model) renderInput(boxStyle lipgloss.Style, accent color.Color) string {
	if m.ctl.Mode() != app.ModeEditing {
		return boxStyle.Render(truncate(normalHint, max(1, m.width-2*frameMargin-4)))
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("New Todo")
	return boxStyle.Render(title + "\n" + m.ctl.Buffer() + "█")
}

// statusLine summarizes counts, persistence, and the last action.
func (m Model) statusLine() string {
	open, done := m.ctl.Summary()
	parts := []string{fmt.Sprintf("%d open • %d done", open, done), "[" + m.ctl.Mode().String() + "]"}
	if !m.ctl.Persistent() {
		parts = append(parts, "not saved on exit")
	}
	if strings.TrimSpace(m.status) != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, "  ")
}

// taskRow formats one list entry with its completion marker.
func taskRow(title string, completed bool) string {
	symbol := " □"
	if completed {
		symbol = " ✅"
	}
	return symbol + " " + title
}

// windowBounds returns an inclusive-exclusive list window that keeps selected visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	half := windowSize / 2
	start := selected - half
	if start < 0 {
		start = 0
	}
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

// clamp bounds v to [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to max runes with a trailing ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
