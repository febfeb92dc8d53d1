// Package console provides a line-oriented menu host over the task-list controller.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hylla/todo/internal/app"
)

// menu lists the numbered console actions.
const menu = `
1) Add todo
2) View todos
3) Toggle todo
4) Remove todo
5) Quit`

// Host drives an app.Controller from line input.
type Host struct {
	ctl    *app.Controller
	in     *bufio.Reader
	out    io.Writer
	logger app.Logger
}

// New constructs a console host.
func New(ctl *app.Controller, in io.Reader, out io.Writer, logger app.Logger) *Host {
	if out == nil {
		out = io.Discard
	}
	if in == nil {
		in = strings.NewReader("")
	}
	if logger == nil {
		logger = app.NopLogger()
	}
	return &Host{
		ctl:    ctl,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
}

// Run loops over the menu until the user quits or input ends.
// End of input quits the controller the same way the quit option does.
func (h *Host) Run(ctx context.Context) error {
	if h.ctl == nil {
		return errors.New("console host requires a controller")
	}
	if !h.ctl.Persistent() {
		h.println("(changes are not saved on exit)")
	}
	for !h.ctl.Quitting() {
		if err := ctx.Err(); err != nil {
			h.ctl.Quit(context.WithoutCancel(ctx))
			return err
		}
		h.println(menu)
		choice, err := h.readLine("Choose an option: ")
		if errors.Is(err, io.EOF) {
			h.logger.Debug("console input closed")
			h.quit(ctx)
			return nil
		}
		if err != nil {
			h.quit(ctx)
			return err
		}
		if err := h.dispatch(ctx, choice); err != nil {
			if errors.Is(err, io.EOF) {
				h.quit(ctx)
				return nil
			}
			h.quit(ctx)
			return err
		}
	}
	return nil
}

// dispatch runs one menu action.
func (h *Host) dispatch(ctx context.Context, choice string) error {
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "1", "a", "add":
		return h.add()
	case "2", "v", "view":
		h.println(h.renderTable())
	case "3", "t", "toggle":
		return h.withSelection("Todo number to toggle: ", func() {
			h.ctl.ToggleSelected()
			if task, ok := h.ctl.SelectedTask(); ok {
				h.printf("%s: %s\n", stateLabel(task.Completed), task.Title)
			}
		})
	case "4", "r", "remove":
		return h.withSelection("Todo number to remove: ", func() {
			task, _ := h.ctl.SelectedTask()
			h.ctl.RemoveSelected()
			h.printf("removed: %s\n", task.Title)
		})
	case "5", "q", "quit":
		h.quit(ctx)
	case "":
	default:
		h.printf("unknown option %q\n", choice)
	}
	return nil
}

// add reads one title and commits it through the controller edit cycle.
func (h *Host) add() error {
	title, err := h.readLine("Title: ")
	if err != nil {
		return err
	}
	before := h.ctl.Len()
	h.ctl.BeginEdit()
	h.ctl.EditPushText(title)
	h.ctl.CommitEdit()
	if h.ctl.Len() == before {
		h.println("title is required")
		return nil
	}
	h.println("added")
	return nil
}

// withSelection reads a 1-based task number, selects it, and runs fn.
func (h *Host) withSelection(prompt string, fn func()) error {
	if h.ctl.Len() == 0 {
		h.println("no todos yet")
		return nil
	}
	raw, err := h.readLine(prompt)
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil || n < 1 || n > h.ctl.Len() {
		h.printf("invalid todo number %q (1-%d)\n", raw, h.ctl.Len())
		return nil
	}
	h.ctl.Select(n - 1)
	fn()
	return nil
}

// quit ends the session and reports whether changes were kept.
func (h *Host) quit(ctx context.Context) {
	if h.ctl.Quitting() {
		return
	}
	h.ctl.Quit(ctx)
	if h.ctl.Persistent() {
		h.println("saved. bye!")
		return
	}
	h.println("bye!")
}

// renderTable renders the task list as a bordered table.
func (h *Host) renderTable() string {
	tasks := h.ctl.Tasks()
	if len(tasks) == 0 {
		return "No todos yet."
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("#", "Done", "Title").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for i, task := range tasks {
		t.Row(strconv.Itoa(i+1), marker(task.Completed), task.Title)
	}
	open, done := h.ctl.Summary()
	return fmt.Sprintf("%s\n%d open, %d done", t.Render(), open, done)
}

// readLine renders one prompt and returns the response without its line ending.
func (h *Host) readLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(h.out, prompt); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := h.in.ReadString('\n')
	switch {
	case err == nil:
		return strings.TrimRight(line, "\r\n"), nil
	case errors.Is(err, io.EOF):
		if line == "" {
			return "", io.EOF
		}
		return strings.TrimRight(line, "\r\n"), nil
	default:
		return "", fmt.Errorf("read input: %w", err)
	}
}

func (h *Host) println(s string) {
	_, _ = fmt.Fprintln(h.out, s)
}

func (h *Host) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(h.out, format, args...)
}

func marker(done bool) string {
	if done {
		return "✅"
	}
	return "□"
}

func stateLabel(done bool) string {
	if done {
		return "done"
	}
	return "reopened"
}
