// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed or semantically invalid input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrConfirmationRequired reports a delete that was not explicitly confirmed.
var ErrConfirmationRequired = errors.New("confirmation required")

// ErrBackendUnavailable reports a record backend that cannot serve requests.
var ErrBackendUnavailable = errors.New("backend unavailable")

// ErrConflict reports a write the backend could not confirm.
var ErrConflict = errors.New("conflict")

// Project is the transport shape of one project.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	TaskCount      int       `json:"task_count"`
	CompletedCount int       `json:"completed_count"`
	CompletionRate float64   `json:"completion_rate"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Label is the transport shape of one label.
type Label struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is the transport shape of one task.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Overdue     bool       `json:"overdue"`
	LabelIDs    []string   `json:"label_ids"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Column is one board column.
type Column struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Tasks  []Task `json:"tasks"`
}

// Filters echoes the filters a board or task list was computed under.
type Filters struct {
	ProjectID string `json:"project_id,omitempty"`
	Priority  string `json:"priority,omitempty"`
	DateRange string `json:"date_range,omitempty"`
	Query     string `json:"q,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Board is the three-column view of one project.
type Board struct {
	Project *Project `json:"project,omitempty"`
	Filters Filters  `json:"filters"`
	Columns []Column `json:"columns"`
	Total   int      `json:"total"`
}

// CreateProjectRequest captures input for a new project.
type CreateProjectRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UpdateProjectRequest captures input for renaming or recoloring a project.
type UpdateProjectRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CreateLabelRequest captures input for a new label.
type CreateLabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UpdateLabelRequest captures input for renaming or recoloring a label.
type UpdateLabelRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// ListTasksRequest captures task list filters. Empty fields do not filter.
type ListTasksRequest = Filters

// CreateTaskRequest captures input for a new task. DueDate accepts
// YYYY-MM-DD or RFC3339.
type CreateTaskRequest struct {
	ProjectID   string   `json:"project_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	LabelIDs    []string `json:"label_ids,omitempty"`
	Position    int      `json:"position,omitempty"`
}

// UpdateTaskRequest captures a full task edit. Empty project, status, and
// priority keep the stored values; an absent position keeps the sort order.
type UpdateTaskRequest struct {
	ID          string   `json:"id,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	LabelIDs    []string `json:"label_ids,omitempty"`
	Position    *int     `json:"position,omitempty"`
}

// MoveTaskRequest captures one column transition.
type MoveTaskRequest struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
}

// MoveTaskResult reports the task after a move and whether anything changed.
type MoveTaskResult struct {
	Task  Task `json:"task"`
	Moved bool `json:"moved"`
}

// DeleteRequest captures one confirmed delete.
type DeleteRequest struct {
	ID      string
	Confirm bool
}

// ProjectService exposes project operations to transports.
type ProjectService interface {
	ListProjects(context.Context) ([]Project, error)
	GetProject(context.Context, string) (Project, error)
	CreateProject(context.Context, CreateProjectRequest) (Project, error)
	UpdateProject(context.Context, UpdateProjectRequest) (Project, error)
	DeleteProject(context.Context, DeleteRequest) error
}

// LabelService exposes label operations to transports.
type LabelService interface {
	ListLabels(context.Context) ([]Label, error)
	CreateLabel(context.Context, CreateLabelRequest) (Label, error)
	UpdateLabel(context.Context, UpdateLabelRequest) (Label, error)
	DeleteLabel(context.Context, DeleteRequest) error
}

// TaskService exposes task and board operations to transports.
type TaskService interface {
	ListTasks(context.Context, ListTasksRequest) ([]Task, error)
	GetTask(context.Context, string) (Task, error)
	CreateTask(context.Context, CreateTaskRequest) (Task, error)
	UpdateTask(context.Context, UpdateTaskRequest) (Task, error)
	MoveTask(context.Context, MoveTaskRequest) (MoveTaskResult, error)
	DeleteTask(context.Context, DeleteRequest) error
	Board(context.Context, ListTasksRequest) (Board, error)
}

// BoardService is everything the HTTP and MCP adapters serve.
type BoardService interface {
	ProjectService
	LabelService
	TaskService
}
