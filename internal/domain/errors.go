package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidTitle     = errors.New("invalid title")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidDueDate   = errors.New("invalid due date")
	ErrInvalidDateRange = errors.New("invalid date range")
)
