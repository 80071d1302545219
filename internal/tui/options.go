package tui

import (
	"time"

	"github.com/hylla/taskboard/internal/app"
)

// Option configures a Model at construction.
type Option func(*Model)

// BoardConfig mirrors the [board] and [confirm] config sections.
type BoardConfig struct {
	Filters            app.Filters
	ConfirmDelete      bool
	ShowCompletionRate bool
	ShowLabels         bool
}

// DefaultBoardConfig returns the settings used when no config is supplied.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		ConfirmDelete:      true,
		ShowCompletionRate: true,
		ShowLabels:         true,
	}
}

func WithBoardConfig(cfg BoardConfig) Option {
	return func(m *Model) {
		m.board = cfg
		m.state.Filters = cfg.Filters
	}
}

// WithLocation sets the zone due dates are entered and rendered in.
func WithLocation(loc *time.Location) Option {
	return func(m *Model) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}
