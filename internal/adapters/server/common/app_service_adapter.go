package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service.
type AppServiceAdapter struct {
	service  *app.Service
	location *time.Location
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
// Date-only due dates are read as midnight in loc; nil means time.Local.
func NewAppServiceAdapter(service *app.Service, loc *time.Location) *AppServiceAdapter {
	if loc == nil {
		loc = time.Local
	}
	return &AppServiceAdapter{service: service, location: loc}
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrBackendUnavailable)
	}
	return nil
}

// ListProjects lists every project.
func (a *AppServiceAdapter) ListProjects(ctx context.Context) ([]Project, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	projects, err := a.service.ListProjects(ctx)
	if err != nil {
		return nil, mapAppError("list projects", err)
	}
	out := make([]Project, 0, len(projects))
	for _, project := range projects {
		out = append(out, mapProject(project))
	}
	return out, nil
}

// GetProject returns one project.
func (a *AppServiceAdapter) GetProject(ctx context.Context, id string) (Project, error) {
	if err := a.ready(); err != nil {
		return Project{}, err
	}
	project, err := a.service.GetProject(ctx, id)
	if err != nil {
		return Project{}, mapAppError("get project", err)
	}
	return mapProject(project), nil
}

// CreateProject creates one project.
func (a *AppServiceAdapter) CreateProject(ctx context.Context, in CreateProjectRequest) (Project, error) {
	if err := a.ready(); err != nil {
		return Project{}, err
	}
	project, err := a.service.CreateProject(ctx, app.CreateProjectInput{Name: in.Name, Color: in.Color})
	if err != nil {
		return Project{}, mapAppError("create project", err)
	}
	return mapProject(project), nil
}

// UpdateProject renames or recolors one project.
func (a *AppServiceAdapter) UpdateProject(ctx context.Context, in UpdateProjectRequest) (Project, error) {
	if err := a.ready(); err != nil {
		return Project{}, err
	}
	project, err := a.service.UpdateProject(ctx, app.UpdateProjectInput{ProjectID: in.ID, Name: in.Name, Color: in.Color})
	if err != nil {
		return Project{}, mapAppError("update project", err)
	}
	return mapProject(project), nil
}

// DeleteProject deletes one project and its tasks.
func (a *AppServiceAdapter) DeleteProject(ctx context.Context, in DeleteRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("delete project", a.service.DeleteProject(ctx, in.ID, in.Confirm))
}

// ListLabels lists every label.
func (a *AppServiceAdapter) ListLabels(ctx context.Context) ([]Label, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	labels, err := a.service.ListLabels(ctx)
	if err != nil {
		return nil, mapAppError("list labels", err)
	}
	out := make([]Label, 0, len(labels))
	for _, label := range labels {
		out = append(out, mapLabel(label))
	}
	return out, nil
}

// CreateLabel creates one label.
func (a *AppServiceAdapter) CreateLabel(ctx context.Context, in CreateLabelRequest) (Label, error) {
	if err := a.ready(); err != nil {
		return Label{}, err
	}
	label, err := a.service.CreateLabel(ctx, app.CreateLabelInput{Name: in.Name, Color: in.Color})
	if err != nil {
		return Label{}, mapAppError("create label", err)
	}
	return mapLabel(label), nil
}

// UpdateLabel renames or recolors one label.
func (a *AppServiceAdapter) UpdateLabel(ctx context.Context, in UpdateLabelRequest) (Label, error) {
	if err := a.ready(); err != nil {
		return Label{}, err
	}
	label, err := a.service.UpdateLabel(ctx, app.UpdateLabelInput{LabelID: in.ID, Name: in.Name, Color: in.Color})
	if err != nil {
		return Label{}, mapAppError("update label", err)
	}
	return mapLabel(label), nil
}

// DeleteLabel deletes one label.
func (a *AppServiceAdapter) DeleteLabel(ctx context.Context, in DeleteRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("delete label", a.service.DeleteLabel(ctx, in.ID, in.Confirm))
}

// ListTasks lists tasks matching the request filters.
func (a *AppServiceAdapter) ListTasks(ctx context.Context, in ListTasksRequest) ([]Task, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	filters, status, err := parseFilters(in)
	if err != nil {
		return nil, err
	}
	tasks, err := a.service.ListTasks(ctx, in.ProjectID, filters)
	if err != nil {
		return nil, mapAppError("list tasks", err)
	}
	now := a.service.Now()
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if status != "" && task.Status != status {
			continue
		}
		out = append(out, mapTask(task, now))
	}
	return out, nil
}

// GetTask returns one task.
func (a *AppServiceAdapter) GetTask(ctx context.Context, id string) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	task, err := a.service.GetTask(ctx, id)
	if err != nil {
		return Task{}, mapAppError("get task", err)
	}
	return mapTask(task, a.service.Now()), nil
}

// CreateTask creates one task.
func (a *AppServiceAdapter) CreateTask(ctx context.Context, in CreateTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	status, priority, err := parseStatusPriority(in.Status, in.Priority)
	if err != nil {
		return Task{}, err
	}
	dueAt, err := a.parseDueDate(in.DueDate)
	if err != nil {
		return Task{}, err
	}
	task, err := a.service.CreateTask(ctx, app.CreateTaskInput{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueAt:       dueAt,
		LabelIDs:    in.LabelIDs,
		Position:    in.Position,
	})
	if err != nil {
		return Task{}, mapAppError("create task", err)
	}
	return mapTask(task, a.service.Now()), nil
}

// UpdateTask applies one full task edit.
func (a *AppServiceAdapter) UpdateTask(ctx context.Context, in UpdateTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	status, priority, err := parseStatusPriority(in.Status, in.Priority)
	if err != nil {
		return Task{}, err
	}
	dueAt, err := a.parseDueDate(in.DueDate)
	if err != nil {
		return Task{}, err
	}
	task, err := a.service.UpdateTask(ctx, app.UpdateTaskInput{
		TaskID:      in.ID,
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueAt:       dueAt,
		LabelIDs:    in.LabelIDs,
		Position:    in.Position,
	})
	if err != nil {
		return Task{}, mapAppError("update task", err)
	}
	return mapTask(task, a.service.Now()), nil
}

// MoveTask moves one task to another column.
func (a *AppServiceAdapter) MoveTask(ctx context.Context, in MoveTaskRequest) (MoveTaskResult, error) {
	if err := a.ready(); err != nil {
		return MoveTaskResult{}, err
	}
	if strings.TrimSpace(in.Status) == "" {
		return MoveTaskResult{}, fmt.Errorf("move task: status is required: %w", ErrInvalidRequest)
	}
	task, moved, err := a.service.MoveTask(ctx, in.ID, domain.Status(in.Status))
	if err != nil {
		return MoveTaskResult{}, mapAppError("move task", err)
	}
	return MoveTaskResult{Task: mapTask(task, a.service.Now()), Moved: moved}, nil
}

// DeleteTask deletes one task.
func (a *AppServiceAdapter) DeleteTask(ctx context.Context, in DeleteRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("delete task", a.service.DeleteTask(ctx, in.ID, in.Confirm))
}

// Board builds the three-column board for one project.
func (a *AppServiceAdapter) Board(ctx context.Context, in ListTasksRequest) (Board, error) {
	if err := a.ready(); err != nil {
		return Board{}, err
	}
	filters, _, err := parseFilters(in)
	if err != nil {
		return Board{}, err
	}
	out := Board{Filters: Filters{
		ProjectID: strings.TrimSpace(in.ProjectID),
		Priority:  string(filters.Priority),
		DateRange: string(filters.DateRange),
		Query:     filters.Query,
	}}
	if out.Filters.ProjectID != "" {
		project, err := a.service.GetProject(ctx, out.Filters.ProjectID)
		if err != nil {
			return Board{}, mapAppError("board", err)
		}
		mapped := mapProject(project)
		out.Project = &mapped
	}
	board, err := a.service.Board(ctx, out.Filters.ProjectID, filters)
	if err != nil {
		return Board{}, mapAppError("board", err)
	}
	now := a.service.Now()
	out.Columns = make([]Column, 0, len(board.Columns))
	for _, col := range board.Columns {
		tasks := make([]Task, 0, len(col.Tasks))
		for _, task := range col.Tasks {
			tasks = append(tasks, mapTask(task, now))
		}
		out.Columns = append(out.Columns, Column{Status: string(col.Status), Title: col.Title, Tasks: tasks})
	}
	out.Total = board.Len()
	return out, nil
}

// parseDueDate accepts RFC3339 timestamps or YYYY-MM-DD dates.
func (a *AppServiceAdapter) parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	due, err := app.ParseDueDate(raw, a.location)
	if err != nil {
		return nil, fmt.Errorf("due_date %q: %w", raw, errors.Join(ErrInvalidRequest, err))
	}
	return due, nil
}

func parseFilters(in ListTasksRequest) (app.Filters, domain.Status, error) {
	var filters app.Filters
	if raw := strings.TrimSpace(in.Priority); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return app.Filters{}, "", fmt.Errorf("priority %q: %w", raw, errors.Join(ErrInvalidRequest, err))
		}
		filters.Priority = priority
	}
	dateRange, err := app.ParseDateRange(in.DateRange)
	if err != nil {
		return app.Filters{}, "", fmt.Errorf("date_range %q: %w", in.DateRange, errors.Join(ErrInvalidRequest, err))
	}
	filters.DateRange = dateRange
	filters.Query = strings.TrimSpace(in.Query)

	var status domain.Status
	if raw := strings.TrimSpace(in.Status); raw != "" {
		status, err = domain.ParseStatus(raw)
		if err != nil {
			return app.Filters{}, "", fmt.Errorf("status %q: %w", raw, errors.Join(ErrInvalidRequest, err))
		}
	}
	return filters, status, nil
}

func parseStatusPriority(rawStatus, rawPriority string) (domain.Status, domain.Priority, error) {
	var (
		status   domain.Status
		priority domain.Priority
		err      error
	)
	if strings.TrimSpace(rawStatus) != "" {
		if status, err = domain.ParseStatus(rawStatus); err != nil {
			return "", "", fmt.Errorf("status %q: %w", rawStatus, errors.Join(ErrInvalidRequest, err))
		}
	}
	if strings.TrimSpace(rawPriority) != "" {
		if priority, err = domain.ParsePriority(rawPriority); err != nil {
			return "", "", fmt.Errorf("priority %q: %w", rawPriority, errors.Join(ErrInvalidRequest, err))
		}
	}
	return status, priority, nil
}

func mapProject(p domain.Project) Project {
	return Project{
		ID:             p.ID,
		Name:           p.Name,
		Color:          p.Color,
		TaskCount:      p.TaskCount,
		CompletedCount: p.CompletedCount,
		CompletionRate: p.CompletionRate(),
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
	}
}

func mapLabel(l domain.Label) Label {
	return Label{ID: l.ID, Name: l.Name, Color: l.Color, CreatedAt: l.CreatedAt.UTC()}
}

func mapTask(t domain.Task, now time.Time) Task {
	labelIDs := append([]string{}, t.LabelIDs...)
	return Task{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueAt:       t.DueAt,
		Overdue:     t.IsOverdue(now),
		LabelIDs:    labelIDs,
		Position:    t.Position,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		CompletedAt: t.CompletedAt,
	}
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrUnknownProject):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, app.ErrDeleteNotConfirmed):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConfirmationRequired, err))
	case errors.Is(err, app.ErrBackendUnavailable):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrBackendUnavailable, err))
	case errors.Is(err, app.ErrAmbiguousResult):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidColor),
		errors.Is(err, domain.ErrInvalidDueDate),
		errors.Is(err, domain.ErrInvalidDateRange):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
