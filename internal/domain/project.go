package domain

import (
	"strings"
	"time"
)

// Project groups tasks on one board. TaskCount and CompletedCount are cached
// aggregates of the project's tasks and are never authoritative.
type Project struct {
	ID             string
	Name           string
	Color          string
	TaskCount      int
	CompletedCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProject constructs a new value for this package.
func NewProject(id, name, color string, now time.Time) (Project, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Project{}, ErrInvalidID
	}
	if name == "" {
		return Project{}, ErrInvalidName
	}
	normalized, err := NormalizeColor(color, DefaultProjectColor)
	if err != nil {
		return Project{}, err
	}

	return Project{
		ID:        id,
		Name:      name,
		Color:     normalized,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// UpdateDetails updates state for the requested operation.
func (p *Project) UpdateDetails(name, color string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	normalized, err := NormalizeColor(color, p.Color)
	if err != nil {
		return err
	}
	p.Name = name
	p.Color = normalized
	p.UpdatedAt = now.UTC()
	return nil
}

// SetCounters replaces the cached counters, clamping at zero.
func (p *Project) SetCounters(taskCount, completedCount int) {
	p.TaskCount = max(0, taskCount)
	p.CompletedCount = min(max(0, completedCount), p.TaskCount)
}

// CompletionRate returns the completed share of tasks as a percentage.
func (p Project) CompletionRate() float64 {
	if p.TaskCount <= 0 {
		return 0
	}
	return float64(p.CompletedCount) / float64(p.TaskCount) * 100
}

// Validate checks the invariants a stored project must satisfy.
func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if !hexColorPattern.MatchString(p.Color) {
		return ErrInvalidColor
	}
	return nil
}
