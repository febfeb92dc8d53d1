package domain

import "strings"

// Task is one todo entry.
type Task struct {
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// NewTask builds an open task from a raw title, trimming surrounding whitespace.
func NewTask(title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrInvalidTitle
	}
	return Task{Title: title}, nil
}

// Toggle flips the completion flag.
func (t *Task) Toggle() {
	t.Completed = !t.Completed
}

// CloneTasks returns a copy of tasks that shares no backing array with the input.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
