package app

import (
	"slices"
	"strings"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

// Column is one fixed status partition of the board.
type Column struct {
	Status domain.Status
	Title  string
	Tasks  []domain.Task
}

// Board holds exactly one column per status, in board order.
type Board struct {
	Columns []Column
}

// BuildBoard partitions tasks by exact status match. Within a column tasks keep
// input order, stably sorted by position. Tasks with an unknown status are dropped.
func BuildBoard(tasks []domain.Task) Board {
	statuses := domain.Statuses()
	board := Board{Columns: make([]Column, len(statuses))}
	index := make(map[domain.Status]int, len(statuses))
	for i, status := range statuses {
		board.Columns[i] = Column{Status: status, Title: status.Label(), Tasks: []domain.Task{}}
		index[status] = i
	}
	for _, task := range tasks {
		i, ok := index[task.Status]
		if !ok {
			continue
		}
		board.Columns[i].Tasks = append(board.Columns[i].Tasks, task)
	}
	for i := range board.Columns {
		slices.SortStableFunc(board.Columns[i].Tasks, func(a, b domain.Task) int {
			return a.Position - b.Position
		})
	}
	return board
}

// Column returns the column for status.
func (b Board) Column(status domain.Status) (Column, bool) {
	for _, col := range b.Columns {
		if col.Status == status {
			return col, true
		}
	}
	return Column{}, false
}

// Len returns the number of tasks across all columns.
func (b Board) Len() int {
	total := 0
	for _, col := range b.Columns {
		total += len(col.Tasks)
	}
	return total
}

// TransitionTask moves task to target. It reports false and leaves the task
// untouched when target is already the task's status.
func TransitionTask(task domain.Task, target domain.Status, now time.Time) (domain.Task, bool, error) {
	if task.Status == target {
		return task, false, nil
	}
	next := task.Clone()
	if err := next.SetStatus(target, now); err != nil {
		return task, false, err
	}
	return next, true, nil
}

// DragSession tracks the single in-flight task of a board drag and its hover target.
type DragSession struct {
	task   *domain.Task
	over   domain.Status
	active bool
}

// Start captures task as the in-flight task.
func (d *DragSession) Start(task domain.Task) error {
	if d.active {
		return ErrDragInProgress
	}
	if strings.TrimSpace(task.ID) == "" {
		return domain.ErrInvalidID
	}
	captured := task.Clone()
	d.task = &captured
	d.over = ""
	d.active = true
	return nil
}

// Over marks status as the hover target. It never mutates the in-flight task.
func (d *DragSession) Over(status domain.Status) {
	if !d.active {
		return
	}
	d.over = status
}

// Drop resolves the drag onto target. The returned task is the update to
// persist; emitted is false when target matches the task's current status.
func (d *DragSession) Drop(target domain.Status, now time.Time) (domain.Task, bool, error) {
	if !d.active || d.task == nil {
		return domain.Task{}, false, ErrNoActiveDrag
	}
	return TransitionTask(*d.task, target, now)
}

// End clears in-flight and hover state unconditionally.
func (d *DragSession) End() {
	d.task = nil
	d.over = ""
	d.active = false
}

// Active reports whether a task is in flight.
func (d DragSession) Active() bool {
	return d.active
}

// TaskID returns the in-flight task id, if any.
func (d DragSession) TaskID() string {
	if d.task == nil {
		return ""
	}
	return d.task.ID
}

// Task returns a copy of the in-flight task.
func (d DragSession) Task() (domain.Task, bool) {
	if d.task == nil {
		return domain.Task{}, false
	}
	return d.task.Clone(), true
}

// OverStatus returns the current hover target, empty when none.
func (d DragSession) OverStatus() domain.Status {
	return d.over
}
