package domain

import (
	"slices"
	"strings"
	"time"
)

// Status identifies the board column a task belongs to.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validStatuses = []Status{StatusTodo, StatusInProgress, StatusDone}

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Statuses returns every status in board order.
func Statuses() []Status {
	return append([]Status(nil), validStatuses...)
}

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return append([]Priority(nil), validPriorities...)
}

// ParseStatus normalizes raw user input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "in-progress", "inprogress", "progress", "doing":
		s = StatusInProgress
	}
	if !slices.Contains(validStatuses, s) {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ParsePriority normalizes raw user input into a Priority.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(validPriorities, p) {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Label returns the human-readable column title for s.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Task is a card on a project board. CompletedAt is set only while Status is done.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueAt       *time.Time
	LabelIDs    []string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// TaskInput holds the fields accepted when creating a task.
type TaskInput struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueAt       *time.Time
	LabelIDs    []string
	Position    int
}

// NewTask validates in and builds a task, defaulting status to todo and priority to medium.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.ProjectID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Position < 0 {
		return Task{}, ErrInvalidPosition
	}

	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return Task{}, ErrInvalidPriority
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !slices.Contains(validStatuses, in.Status) {
		return Task{}, ErrInvalidStatus
	}

	t := Task{
		ID:          in.ID,
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueAt:       normalizeDueAt(in.DueAt),
		LabelIDs:    normalizeLabelIDs(in.LabelIDs),
		Position:    in.Position,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := t.SetStatus(in.Status, now); err != nil {
		return Task{}, err
	}
	return t, nil
}

// SetStatus moves the task to status and keeps CompletedAt in step with it.
func (t *Task) SetStatus(status Status, now time.Time) error {
	if !slices.Contains(validStatuses, status) {
		return ErrInvalidStatus
	}
	ts := now.UTC()
	t.Status = status
	if status == StatusDone {
		if t.CompletedAt == nil {
			t.CompletedAt = &ts
		}
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = ts
	return nil
}

// UpdateDetails replaces the editable fields of the task.
func (t *Task) UpdateDetails(title, description string, priority Priority, dueAt *time.Time, labelIDs []string, now time.Time) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return ErrInvalidTitle
	}
	if !slices.Contains(validPriorities, priority) {
		return ErrInvalidPriority
	}
	t.Title = title
	t.Description = description
	t.Priority = priority
	t.DueAt = normalizeDueAt(dueAt)
	t.LabelIDs = normalizeLabelIDs(labelIDs)
	t.UpdatedAt = now.UTC()
	return nil
}

// Reassign moves the task to another project.
func (t *Task) Reassign(projectID string, now time.Time) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ErrInvalidID
	}
	t.ProjectID = projectID
	t.UpdatedAt = now.UTC()
	return nil
}

// SetPosition sets the sort order within the task's column.
func (t *Task) SetPosition(position int, now time.Time) error {
	if position < 0 {
		return ErrInvalidPosition
	}
	t.Position = position
	t.UpdatedAt = now.UTC()
	return nil
}

// Validate checks the invariants a stored task must satisfy.
func (t Task) Validate() error {
	switch {
	case strings.TrimSpace(t.ID) == "", strings.TrimSpace(t.ProjectID) == "":
		return ErrInvalidID
	case strings.TrimSpace(t.Title) == "":
		return ErrInvalidTitle
	case !slices.Contains(validStatuses, t.Status):
		return ErrInvalidStatus
	case !slices.Contains(validPriorities, t.Priority):
		return ErrInvalidPriority
	case t.Position < 0:
		return ErrInvalidPosition
	case (t.Status == StatusDone) != (t.CompletedAt != nil):
		return ErrInvalidStatus
	}
	return nil
}

// IsOverdue reports whether the task is past due and still open.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueAt != nil && t.DueAt.Before(now) && t.Status != StatusDone
}

// HasLabel reports whether labelID is attached to the task.
func (t Task) HasLabel(labelID string) bool {
	return slices.Contains(t.LabelIDs, labelID)
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	out := t
	out.LabelIDs = append([]string(nil), t.LabelIDs...)
	if t.DueAt != nil {
		due := *t.DueAt
		out.DueAt = &due
	}
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		out.CompletedAt = &done
	}
	return out
}

func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC().Truncate(time.Second)
	return &ts
}

// normalizeLabelIDs trims and dedupes ids while keeping their first-seen order.
func normalizeLabelIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]struct{}{}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
