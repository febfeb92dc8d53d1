package app

import (
	"context"

	"github.com/hylla/todo/internal/domain"
)

// Mode represents the controller interaction state.
type Mode int

// ModeNormal and related constants define the controller states.
const (
	ModeNormal Mode = iota
	ModeEditing
)

// String returns the display label for a mode.
func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	default:
		return "normal"
	}
}

// editSession holds the in-progress title while the controller is editing.
type editSession struct {
	buffer []rune
}

// Controller owns the task list, selection cursor, and modal edit state.
// Calls that do not apply to the current mode or selection are ignored.
type Controller struct {
	store  Store
	logger Logger

	tasks    []domain.Task
	selected int
	// edit is nil in normal mode.
	edit     *editSession
	quitting bool
}

// NewController constructs an empty controller. A nil store disables persistence.
func NewController(store Store, logger Logger) *Controller {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Controller{
		store:  store,
		logger: logger,
		tasks:  []domain.Task{},
	}
}

// Open constructs a controller seeded from store.
func Open(ctx context.Context, store Store, logger Logger) *Controller {
	c := NewController(store, logger)
	c.Load(ctx)
	return c
}

// Load replaces the task list with the stored one. Load failures leave an empty list.
func (c *Controller) Load(ctx context.Context) {
	c.tasks = []domain.Task{}
	c.selected = 0
	if c.store == nil {
		c.logger.Debug("task store disabled; starting empty")
		return
	}
	tasks, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("task load failed; starting empty", "err", err)
		return
	}
	c.tasks = domain.CloneTasks(tasks)
	c.logger.Info("tasks loaded", "count", len(c.tasks))
}

// Persistent reports whether Quit writes to a store.
func (c *Controller) Persistent() bool {
	return c.store != nil
}

// Tasks returns a copy of the ordered task list.
func (c *Controller) Tasks() []domain.Task {
	return domain.CloneTasks(c.tasks)
}

// Len returns the number of tasks.
func (c *Controller) Len() int {
	return len(c.tasks)
}

// Selected returns the selection cursor.
func (c *Controller) Selected() int {
	return c.selected
}

// SelectedTask returns the task under the cursor.
func (c *Controller) SelectedTask() (domain.Task, bool) {
	if c.selected < 0 || c.selected >= len(c.tasks) {
		return domain.Task{}, false
	}
	return c.tasks[c.selected], true
}

// Mode returns the current interaction state.
func (c *Controller) Mode() Mode {
	if c.edit != nil {
		return ModeEditing
	}
	return ModeNormal
}

// Buffer returns the in-progress title, or "" in normal mode.
func (c *Controller) Buffer() string {
	if c.edit == nil {
		return ""
	}
	return string(c.edit.buffer)
}

// Quitting reports whether Quit has been called.
func (c *Controller) Quitting() bool {
	return c.quitting
}

// NavigateUp moves the cursor one entry up.
func (c *Controller) NavigateUp() {
	if c.edit != nil {
		return
	}
	if c.selected > 0 {
		c.selected--
	}
}

// NavigateDown moves the cursor one entry down.
func (c *Controller) NavigateDown() {
	if c.edit != nil {
		return
	}
	if c.selected+1 < len(c.tasks) {
		c.selected++
	}
}

// Select moves the cursor to index when it addresses an existing task.
func (c *Controller) Select(index int) {
	if c.edit != nil {
		return
	}
	if index < 0 || index >= len(c.tasks) {
		return
	}
	c.selected = index
}

// ToggleSelected flips the completion flag of the selected task.
func (c *Controller) ToggleSelected() {
	if c.edit != nil {
		return
	}
	if c.selected < 0 || c.selected >= len(c.tasks) {
		return
	}
	c.tasks[c.selected].Toggle()
}

// RemoveSelected deletes the selected task and re-clamps the cursor.
func (c *Controller) RemoveSelected() {
	if c.edit != nil {
		return
	}
	if c.selected < 0 || c.selected >= len(c.tasks) {
		return
	}
	c.tasks = append(c.tasks[:c.selected], c.tasks[c.selected+1:]...)
	if c.selected >= len(c.tasks) && len(c.tasks) > 0 {
		c.selected = len(c.tasks) - 1
	}
	if len(c.tasks) == 0 {
		c.selected = 0
	}
}

// BeginEdit enters editing mode with an empty buffer.
func (c *Controller) BeginEdit() {
	if c.edit != nil {
		return
	}
	c.edit = &editSession{}
}

// EditPushChar appends one rune to the buffer.
func (c *Controller) EditPushChar(r rune) {
	if c.edit == nil {
		return
	}
	c.edit.buffer = append(c.edit.buffer, r)
}

// EditPushText appends every rune of text to the buffer.
func (c *Controller) EditPushText(text string) {
	for _, r := range text {
		c.EditPushChar(r)
	}
}

// EditBackspace removes the last rune of the buffer.
func (c *Controller) EditBackspace() {
	if c.edit == nil || len(c.edit.buffer) == 0 {
		return
	}
	c.edit.buffer = c.edit.buffer[:len(c.edit.buffer)-1]
}

// CommitEdit appends the trimmed buffer as a new task and returns to normal mode.
// A blank buffer returns to normal mode without creating a task.
func (c *Controller) CommitEdit() {
	if c.edit == nil {
		return
	}
	raw := string(c.edit.buffer)
	c.edit = nil
	task, err := domain.NewTask(raw)
	if err != nil {
		c.logger.Debug("blank task discarded", "raw_len", len(raw))
		return
	}
	c.tasks = append(c.tasks, task)
}

// CancelEdit leaves editing mode and drops the buffer.
func (c *Controller) CancelEdit() {
	if c.edit == nil {
		return
	}
	c.edit = nil
}

// Quit ends the session. Any in-progress edit is discarded and, when a store is
// configured, the task list is saved before Quit returns. Save failures are logged only.
func (c *Controller) Quit(ctx context.Context) {
	if c.quitting {
		return
	}
	if c.edit != nil {
		c.logger.Debug("discarding in-progress edit on quit", "buffer_len", len(c.edit.buffer))
		c.edit = nil
	}
	c.quitting = true
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, domain.CloneTasks(c.tasks)); err != nil {
		c.logger.Warn("task save failed", "count", len(c.tasks), "err", err)
		return
	}
	c.logger.Info("tasks saved", "count", len(c.tasks))
}

// Summary reports open and completed counts.
func (c *Controller) Summary() (open, done int) {
	for _, task := range c.tasks {
		if task.Completed {
			done++
			continue
		}
		open++
	}
	return open, done
}
