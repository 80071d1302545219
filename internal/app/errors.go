package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound           = errors.New("not found")
	ErrBackendUnavailable = errors.New("record backend unavailable")
	ErrAmbiguousResult    = errors.New("ambiguous backend result")
	ErrDeleteNotConfirmed = errors.New("delete requires confirmation")
	ErrDragInProgress     = errors.New("another task is already being dragged")
	ErrNoActiveDrag       = errors.New("no task is being dragged")
	ErrUnknownProject     = errors.New("unknown project")
)
