package app

import (
	"context"

	"github.com/hylla/todo/internal/domain"
)

// Store loads and saves the full ordered task list.
type Store interface {
	Load(context.Context) ([]domain.Task, error)
	Save(context.Context, []domain.Task) error
}

// Logger receives controller lifecycle events as key-value pairs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// nopLogger discards every event.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards every event.
func NopLogger() Logger {
	return nopLogger{}
}
