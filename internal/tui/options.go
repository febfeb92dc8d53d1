package tui

import "context"

type Option func(*Model)

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter func(string) error

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyKeyConfig(cfg)
	}
}

func WithShowHelp(show bool) Option {
	return func(m *Model) {
		m.showHelp = show
	}
}

func WithClipboard(write ClipboardWriter) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithContext sets the context passed to the controller when quitting.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}
